package cloudflare

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
)

// ResolveUnique returns the single candidate satisfying match. Zero or
// several matches yield a *MatchError describing want and carrying every
// candidate.
func ResolveUnique(candidates []Record, want string, match func(Record) bool) (Record, error) {
	var (
		found   Record
		matches int
	)
	for _, candidate := range candidates {
		if match(candidate) {
			found = candidate
			matches++
		}
	}

	if matches != 1 {
		return nil, &MatchError{
			Want:       want,
			Matches:    matches,
			Candidates: candidates,
		}
	}

	return found, nil
}

// ResolveRecord returns the ID of the first DNS record named recordName in
// the zone. Further matches are ignored.
func (c *Client) ResolveRecord(ctx context.Context, zoneID, recordName string) (string, error) {
	params := url.Values{}
	params.Set("name", recordName)

	resp, err := c.Get(ctx, dnsRecordsPath(zoneID)+"?"+params.Encode())
	if err != nil {
		return "", fmt.Errorf("looking up record %q: %w", recordName, err)
	}

	recordID, err := resp.Records[0].ID()
	if err != nil {
		return "", fmt.Errorf("record %q: %w", recordName, err)
	}

	c.logger.Debug("resolved record",
		slog.String("zone_id", zoneID),
		slog.String("record", recordName),
		slog.String("record_id", recordID),
		slog.Int("matches", len(resp.Records)),
	)

	return recordID, nil
}

// ResolveZoneAndRecord looks up the zone by name (first match), then the
// record inside it.
func (c *Client) ResolveZoneAndRecord(ctx context.Context, zoneName, recordName string) (zoneID, recordID string, err error) {
	params := url.Values{}
	params.Set("name", zoneName)

	resp, err := c.Get(ctx, "/zones?"+params.Encode())
	if err != nil {
		return "", "", fmt.Errorf("looking up zone %q: %w", zoneName, err)
	}

	zoneID, err = resp.Records[0].ID()
	if err != nil {
		return "", "", fmt.Errorf("zone %q: %w", zoneName, err)
	}

	c.logger.Debug("resolved zone",
		slog.String("zone", zoneName),
		slog.String("zone_id", zoneID),
	)

	recordID, err = c.ResolveRecord(ctx, zoneID, recordName)
	if err != nil {
		return "", "", err
	}

	return zoneID, recordID, nil
}

// ResolveGroup lists the account's Access groups and returns the ID of the
// one whose name equals groupName exactly. Zero or several matches fail with
// a *MatchError, including when the account has no groups at all.
func (c *Client) ResolveGroup(ctx context.Context, accountID, groupName string) (string, error) {
	var candidates []Record
	resp, err := c.Get(ctx, accessGroupsPath(accountID))
	switch {
	case err == nil:
		candidates = resp.Records
	case IsEmptyResponse(err):
		// An account without groups lists as an empty result: zero candidates.
	default:
		return "", fmt.Errorf("listing access groups: %w", err)
	}

	group, err := ResolveUnique(candidates, fmt.Sprintf("access group %q", groupName), func(r Record) bool {
		name, ok := r.String("name")
		return ok && name == groupName
	})
	if err != nil {
		return "", err
	}

	groupID, err := group.ID()
	if err != nil {
		return "", fmt.Errorf("access group %q: %w", groupName, err)
	}

	c.logger.Debug("resolved access group",
		slog.String("account_id", accountID),
		slog.String("group", groupName),
		slog.String("group_id", groupID),
	)

	return groupID, nil
}

func dnsRecordsPath(zoneID string) string {
	return fmt.Sprintf("/zones/%s/dns_records", url.PathEscape(zoneID))
}

func dnsRecordPath(zoneID, recordID string) string {
	return fmt.Sprintf("%s/%s", dnsRecordsPath(zoneID), url.PathEscape(recordID))
}

func accessGroupsPath(accountID string) string {
	return fmt.Sprintf("/accounts/%s/access/groups", url.PathEscape(accountID))
}

func accessGroupPath(accountID, groupID string) string {
	return fmt.Sprintf("%s/%s", accessGroupsPath(accountID), url.PathEscape(groupID))
}
