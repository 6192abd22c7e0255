// Package syncer runs one dynamic-DNS pass: observe the public address,
// point the A record at it and, optionally, move an Access group's IP rules
// along with it.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hdert/cf-wagdns/internal/ipcheck"
	"github.com/hdert/cf-wagdns/internal/metrics"
	"github.com/hdert/cf-wagdns/internal/state"
	"github.com/hdert/cf-wagdns/providers/cloudflare"
)

// ErrConfig is returned when the run cannot proceed with the given settings.
var ErrConfig = errors.New("sync configuration error")

// DNSAPI is the subset of the provider client used for the A record.
type DNSAPI interface {
	ResolveRecord(ctx context.Context, zoneID, recordName string) (string, error)
	ResolveZoneAndRecord(ctx context.Context, zoneName, recordName string) (zoneID, recordID string, err error)
	UpdateDNSRecord(ctx context.Context, zoneID, recordID, name, ip string) error
}

// AccessAPI is the subset of the provider client used for Access groups.
type AccessAPI interface {
	ResolveGroup(ctx context.Context, accountID, groupName string) (string, error)
	GetAccessGroup(ctx context.Context, accountID, groupID string) (cloudflare.AccessGroup, error)
	UpdateAccessGroup(ctx context.Context, accountID, groupID string, doc cloudflare.AccessGroup) error
}

// Config holds syncer configuration options.
type Config struct {
	// RecordName is the A record kept pointed at the current address.
	RecordName string

	// ZoneName is used to look up the zone when no zone id is cached.
	ZoneName string

	// GroupName is used to look up the Access group when no group id is
	// cached.
	GroupName string

	// UpdateAccess enables the Access group step.
	UpdateAccess bool

	// ForceUpdate pushes the address even when it matches the cache.
	ForceUpdate bool

	// DryRun resolves identifiers but sends no PUT and writes no cache.
	DryRun bool
}

// Syncer sequences one run against its collaborators.
type Syncer struct {
	observer ipcheck.Observer
	dns      DNSAPI
	access   AccessAPI
	store    state.Store
	config   Config
	logger   *slog.Logger
}

// Option is a functional option for configuring the Syncer.
type Option func(*Syncer)

// WithLogger sets a custom logger for the syncer.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Syncer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithConfig sets the syncer configuration.
func WithConfig(cfg Config) Option {
	return func(s *Syncer) {
		s.config = cfg
	}
}

// WithAccessAPI sets the client used for Access group calls. It is
// required when Config.UpdateAccess is set.
func WithAccessAPI(access AccessAPI) Option {
	return func(s *Syncer) {
		s.access = access
	}
}

// New creates a Syncer.
func New(observer ipcheck.Observer, dns DNSAPI, store state.Store, opts ...Option) *Syncer {
	s := &Syncer{
		observer: observer,
		dns:      dns,
		store:    store,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Run performs one sync pass.
//
// The cached state is loaded once. When the observed address equals the
// cached one the run ends without any provider call, unless ForceUpdate is
// set. Otherwise the new address is cached, the A record is updated and, if
// enabled, the Access group's IP rules are rewritten. Newly resolved
// identifiers are saved at the end; that final save is best-effort.
func (s *Syncer) Run(ctx context.Context) (result *Result, err error) {
	result = NewResult(s.config.DryRun)
	defer func() {
		if err != nil {
			result.Outcome = OutcomeFailed
		}
		result.Complete()
		s.recordMetrics(result)
	}()

	st, err := s.store.Load()
	if err != nil {
		return result, fmt.Errorf("loading state: %w", err)
	}

	ip, err := s.observer.Observe(ctx)
	if err != nil {
		return result, fmt.Errorf("observing public address: %w", err)
	}
	result.ObservedIP = ip
	result.PreviousIP = st.IPAddress

	if st.IPAddress == ip {
		if !s.config.ForceUpdate {
			s.logger.Info("public address unchanged, nothing to do", slog.String("ip", ip))
			result.Outcome = OutcomeUnchanged
			return result, nil
		}
		s.logger.Warn("public address unchanged, updating anyway", slog.String("ip", ip))
		result.Forced = true
	} else {
		s.logger.Info("public address changed",
			slog.String("previous", st.IPAddress),
			slog.String("current", ip),
		)
	}

	st.IPAddress = ip
	if err := s.save(st); err != nil {
		return result, fmt.Errorf("saving state: %w", err)
	}

	zoneID, recordID, err := s.resolveRecord(ctx, st)
	if err != nil {
		return result, fmt.Errorf("resolving zone and record: %w", err)
	}
	st.ZoneID, st.RecordID = zoneID, recordID

	if err := s.updateRecord(ctx, result, zoneID, recordID, ip); err != nil {
		return result, fmt.Errorf("updating DNS record: %w", err)
	}

	if s.config.UpdateAccess {
		if err := s.syncAccess(ctx, result, st, ip); err != nil {
			return result, err
		}
	} else {
		s.logger.Debug("access group sync disabled")
	}

	if err := s.save(st); err != nil {
		s.logger.Warn("failed to save resolved identifiers", slog.String("error", err.Error()))
	}

	result.Outcome = OutcomeUpdated
	return result, nil
}

// resolveRecord returns the cached zone and record ids, looking up whatever
// is missing. A cached record id is only trusted together with a cached
// zone id.
func (s *Syncer) resolveRecord(ctx context.Context, st *state.State) (zoneID, recordID string, err error) {
	switch {
	case st.ZoneID != "" && st.RecordID != "":
		s.logger.Debug("using cached zone and record ids",
			slog.String("zone_id", st.ZoneID),
			slog.String("record_id", st.RecordID),
		)
		return st.ZoneID, st.RecordID, nil

	case st.ZoneID != "":
		recordID, err := s.dns.ResolveRecord(ctx, st.ZoneID, s.config.RecordName)
		if err != nil {
			return "", "", err
		}
		return st.ZoneID, recordID, nil

	default:
		if s.config.ZoneName == "" {
			return "", "", fmt.Errorf("%w: ZONE_NAME is required when no zone id is cached", ErrConfig)
		}
		return s.dns.ResolveZoneAndRecord(ctx, s.config.ZoneName, s.config.RecordName)
	}
}

func (s *Syncer) updateRecord(ctx context.Context, result *Result, zoneID, recordID, ip string) error {
	action := Action{
		Target:  TargetDNSRecord,
		Name:    s.config.RecordName,
		ID:      recordID,
		Content: ip,
	}

	if s.config.DryRun {
		s.logger.Info("[dry-run] would update DNS record",
			slog.String("zone_id", zoneID),
			slog.String("record_id", recordID),
			slog.String("name", s.config.RecordName),
			slog.String("content", ip),
		)
		action.Status = StatusSkipped
		result.AddAction(action)
		return nil
	}

	start := time.Now()
	err := s.dns.UpdateDNSRecord(ctx, zoneID, recordID, s.config.RecordName, ip)
	action.Duration = time.Since(start)
	if err != nil {
		action.Status = StatusFailed
		action.Error = err.Error()
		result.AddAction(action)
		return err
	}

	action.Status = StatusSuccess
	result.AddAction(action)
	return nil
}

// syncAccess points the Access group's IP rules at ip.
func (s *Syncer) syncAccess(ctx context.Context, result *Result, st *state.State, ip string) error {
	if s.access == nil {
		return fmt.Errorf("%w: access group sync enabled without an access client", ErrConfig)
	}
	if st.AccountID == "" {
		return fmt.Errorf("%w: ACCOUNT_ID is required when access group sync is enabled", ErrConfig)
	}

	groupID := st.GroupID
	if groupID == "" {
		if s.config.GroupName == "" {
			return fmt.Errorf("%w: GROUP_NAME is required when no group id is cached", ErrConfig)
		}
		resolved, err := s.access.ResolveGroup(ctx, st.AccountID, s.config.GroupName)
		if err != nil {
			return fmt.Errorf("resolving access group: %w", err)
		}
		groupID = resolved
	} else {
		s.logger.Debug("using cached group id", slog.String("group_id", groupID))
	}
	st.GroupID = groupID

	doc, err := s.access.GetAccessGroup(ctx, st.AccountID, groupID)
	if err != nil {
		return fmt.Errorf("fetching access group: %w", err)
	}

	updated, err := cloudflare.SubstituteIP(doc, ip)
	if err != nil {
		return fmt.Errorf("rewriting access group rules: %w", err)
	}

	name, _ := updated.Name()
	action := Action{
		Target:  TargetAccessGroup,
		Name:    name,
		ID:      groupID,
		Content: ip,
	}

	if s.config.DryRun {
		s.logger.Info("[dry-run] would update access group",
			slog.String("account_id", st.AccountID),
			slog.String("group_id", groupID),
			slog.String("name", name),
			slog.Any("document", updated),
		)
		action.Status = StatusSkipped
		result.AddAction(action)
		return nil
	}

	start := time.Now()
	err = s.access.UpdateAccessGroup(ctx, st.AccountID, groupID, updated)
	action.Duration = time.Since(start)
	if err != nil {
		action.Status = StatusFailed
		action.Error = err.Error()
		result.AddAction(action)
		return fmt.Errorf("updating access group: %w", err)
	}

	action.Status = StatusSuccess
	result.AddAction(action)
	return nil
}

// save persists st unless this is a dry run.
func (s *Syncer) save(st *state.State) error {
	if s.config.DryRun {
		s.logger.Debug("[dry-run] not writing state")
		return nil
	}
	return s.store.Save(st)
}

// recordMetrics records Prometheus metrics from a run result.
func (s *Syncer) recordMetrics(result *Result) {
	metrics.RunsTotal.WithLabelValues(string(result.Outcome)).Inc()
	metrics.RunDuration.Observe(result.Duration().Seconds())
	metrics.LastRunTimestamp.Set(float64(result.EndTime.Unix()))

	if result.IPChanged() {
		metrics.IPChangedTimestamp.Set(float64(result.EndTime.Unix()))
	}

	for _, action := range result.Updated() {
		metrics.UpdatesTotal.WithLabelValues(string(action.Target)).Inc()
	}
}
