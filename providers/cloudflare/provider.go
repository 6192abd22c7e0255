package cloudflare

import (
	"context"
	"fmt"
	"log/slog"
)

// RecordTypeA is the only record type this client writes.
const RecordTypeA = "A"

// dnsRecordUpdate is the request body for overwriting a DNS record.
type dnsRecordUpdate struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Name    string `json:"name"`
	Content string `json:"content"`
}

// UpdateDNSRecord overwrites the A record recordID in zoneID so that name
// points at ip.
func (c *Client) UpdateDNSRecord(ctx context.Context, zoneID, recordID, name, ip string) error {
	body := dnsRecordUpdate{
		ID:      zoneID,
		Type:    RecordTypeA,
		Name:    name,
		Content: ip,
	}

	if _, err := c.Put(ctx, dnsRecordPath(zoneID, recordID), body); err != nil {
		return fmt.Errorf("updating record %s: %w", name, err)
	}

	c.logger.Info("updated DNS record",
		slog.String("zone_id", zoneID),
		slog.String("record_id", recordID),
		slog.String("name", name),
		slog.String("content", ip),
	)

	return nil
}

// GetAccessGroup fetches one Access group document.
func (c *Client) GetAccessGroup(ctx context.Context, accountID, groupID string) (AccessGroup, error) {
	resp, err := c.Get(ctx, accessGroupPath(accountID, groupID))
	if err != nil {
		return nil, fmt.Errorf("fetching access group %s: %w", groupID, err)
	}

	return AccessGroup(resp.Records[0]), nil
}

// UpdateAccessGroup replaces an Access group document.
func (c *Client) UpdateAccessGroup(ctx context.Context, accountID, groupID string, doc AccessGroup) error {
	if _, err := c.Put(ctx, accessGroupPath(accountID, groupID), doc); err != nil {
		return fmt.Errorf("updating access group %s: %w", groupID, err)
	}

	name, _ := doc.Name()
	c.logger.Info("updated access group",
		slog.String("account_id", accountID),
		slog.String("group_id", groupID),
		slog.String("name", name),
	)

	return nil
}
