// wagdns keeps a Cloudflare A record pointed at this host's public IPv4
// address and, optionally, rewrites the IP rules of a Cloudflare Access
// group to match. Each invocation performs one sync pass and exits; run it
// from cron or a systemd timer.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/hdert/cf-wagdns/internal/config"
	"github.com/hdert/cf-wagdns/internal/ipcheck"
	"github.com/hdert/cf-wagdns/internal/logging"
	"github.com/hdert/cf-wagdns/internal/metrics"
	"github.com/hdert/cf-wagdns/internal/state"
	"github.com/hdert/cf-wagdns/internal/syncer"
	"github.com/hdert/cf-wagdns/pkg/httputil"
	"github.com/hdert/cf-wagdns/providers/cloudflare"
)

// Version and BuildDate are set via ldflags during build.
// Example: -ldflags="-X main.Version=v1.0.0 -X main.BuildDate=2026-01-03"
var (
	Version   = "dev"
	BuildDate = "unknown"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

// run performs one sync pass. Any error it returns has already been logged,
// to LOG_FILE as well once that is open.
func run() (err error) {
	cfg, err := config.Load()
	if err != nil {
		err = fmt.Errorf("loading configuration: %w", err)
		slog.Error("fatal error", slog.String("error", err.Error()))
		return err
	}

	logger, closeLog, err := logging.Setup(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		slog.Error("fatal error", slog.String("error", err.Error()))
		return err
	}
	defer closeLog()
	slog.SetDefault(logger)

	// Runs before closeLog so the failure reaches the log file.
	defer func() {
		if err != nil {
			logger.Error("fatal error", slog.String("error", err.Error()))
		}
	}()

	metrics.SetBuildInfo(Version, runtime.Version())

	logger.Info("wagdns starting",
		slog.String("version", Version),
		slog.String("build_date", BuildDate),
		slog.String("go_version", runtime.Version()),
		slog.String("config", cfg.ConfigPath),
		slog.String("config_format", config.DetectFormat(cfg.ConfigPath)),
		slog.String("state", cfg.StatePath),
		slog.Bool("update_access", cfg.UpdateAccess),
		slog.Bool("dry_run", cfg.DryRun),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := state.NewFileStore(cfg.StatePath)
	token, bypassToken, err := credentials(cfg, store)
	if err != nil {
		return err
	}

	httpClient := httputil.NewClient(&httputil.ClientConfig{
		Timeout:   cfg.HTTPTimeout,
		UserAgent: "cf-wagdns/" + Version,
		Logger:    logger,
		Observe:   metrics.ObserveAPIRequest,
	})

	observer, err := ipcheck.New(ipcheck.Options{
		Source:     cfg.IPSource,
		EchoURL:    cfg.IPEchoURL,
		DNSName:    cfg.IPDNSName,
		DNSServer:  cfg.IPDNSServer,
		Timeout:    cfg.HTTPTimeout,
		HTTPClient: httpClient,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("creating ip observer: %w", err)
	}

	dnsClient := newCloudflareClient(cfg, token, httpClient, logger)
	opts := []syncer.Option{
		syncer.WithLogger(logger),
		syncer.WithConfig(syncer.Config{
			RecordName:   cfg.RecordName,
			ZoneName:     cfg.ZoneName,
			GroupName:    cfg.GroupName,
			UpdateAccess: cfg.UpdateAccess,
			ForceUpdate:  cfg.ForceUpdate,
			DryRun:       cfg.DryRun,
		}),
	}
	if cfg.UpdateAccess {
		opts = append(opts, syncer.WithAccessAPI(newCloudflareClient(cfg, bypassToken, httpClient, logger)))
	}

	result, runErr := syncer.New(observer, dnsClient, store, opts...).Run(ctx)

	logger.Info("sync complete",
		slog.String("outcome", string(result.Outcome)),
		slog.String("ip", result.ObservedIP),
		slog.Int("updated", len(result.Updated())),
		slog.Int("skipped", len(result.Skipped())),
		slog.Int("errors", len(result.Failed())),
		slog.Duration("duration", result.Duration()),
	)
	if cfg.DryRun {
		fmt.Fprint(os.Stdout, result.Summary())
	}

	if cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.Warn("failed to write metrics", slog.String("error", err.Error()))
		}
	}

	if runErr != nil {
		return fmt.Errorf("sync failed: %w", runErr)
	}
	return nil
}

// credentials returns the DNS and Access tokens, preferring environment
// overrides to the state file, and checks that the configured run has what
// it needs.
func credentials(cfg *config.Config, store *state.FileStore) (token, bypassToken string, err error) {
	st, err := store.Load()
	if err != nil {
		return "", "", fmt.Errorf("loading state: %w", err)
	}

	token, bypassToken = st.Token, st.BypassToken
	if cfg.Token != "" {
		token = cfg.Token
	}
	if cfg.BypassToken != "" {
		bypassToken = cfg.BypassToken
	}

	err = cfg.CheckCredentials(config.Credentials{
		Token:       token,
		BypassToken: bypassToken,
		AccountID:   st.AccountID,
	})
	if err != nil {
		return "", "", fmt.Errorf("state file %s: %w", store.Path(), err)
	}

	return token, bypassToken, nil
}

func newCloudflareClient(cfg *config.Config, token string, httpClient *http.Client, logger *slog.Logger) *cloudflare.Client {
	return cloudflare.NewClient(token,
		cloudflare.WithHTTPClient(httpClient),
		cloudflare.WithLogger(logger),
		cloudflare.WithAPIEndpoint(cfg.APIEndpoint),
	)
}
