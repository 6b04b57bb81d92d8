package main

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cuemby/burrow/pkg/cloudflare"
	"github.com/cuemby/burrow/pkg/config"
	"github.com/cuemby/burrow/pkg/inventory"
	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/metrics"
	"github.com/cuemby/burrow/pkg/proxmox"
	"github.com/cuemby/burrow/pkg/reconciler"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one synchronization pass",
	Long: `Run one synchronization pass: list the cluster's guests, resolve an
address for each, and converge the zone's A records.

Examples:
  # Sync using the default configuration path
  burrow sync

  # Sync with an explicit configuration file
  burrow sync --config ./burrow.yaml`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringP("config", "c", config.DefaultPath, "Configuration file")
	syncCmd.Flags().String("log-level", "", "Override the configured log level")
	syncCmd.Flags().Bool("log-json", false, "Write logs as JSON")

	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")
	levelOverride, _ := cmd.Flags().GetString("log-level")
	logJSON, _ := cmd.Flags().GetBool("log-json")

	cfg, err := config.Load(path)
	if err != nil {
		// Logging is not configured yet; bring up a default logger so
		// the failure still comes out structured
		log.Init(log.Config{Level: log.InfoLevel, JSONOutput: logJSON})
		log.Logger.WithLevel(zerolog.FatalLevel).
			Err(err).
			Str("path", path).
			Msg("configuration failed to load")
		return err
	}

	level := cfg.LogLevel
	if levelOverride != "" {
		level = levelOverride
	}
	log.Init(log.Config{Level: log.Level(level), JSONOutput: logJSON})

	// Every line of a run carries the same run_id so scheduled
	// invocations can be told apart in aggregated logs
	log.Logger = log.WithRunID(uuid.NewString())

	pve, err := proxmox.NewClient(proxmox.ClientConfig{
		BaseURL:       cfg.Proxmox.URL,
		TokenID:       cfg.Proxmox.TokenID,
		TokenSecret:   cfg.Proxmox.TokenSecret,
		SkipTLSVerify: cfg.Proxmox.SkipTLSVerify,
		Timeout:       time.Duration(cfg.Proxmox.Timeout),
	}, log.WithComponent("proxmox"))
	if err != nil {
		log.Logger.WithLevel(zerolog.FatalLevel).Err(err).Msg("hypervisor client setup failed")
		return err
	}

	cf, err := cloudflare.NewClient(cloudflare.ClientConfig{
		Token:   cfg.Cloudflare.Token,
		Timeout: time.Duration(cfg.Cloudflare.Timeout),
	}, log.WithComponent("cloudflare"))
	if err != nil {
		log.Logger.WithLevel(zerolog.FatalLevel).Err(err).Msg("DNS client setup failed")
		return err
	}

	ctx := cmd.Context()
	start := time.Now()

	resolver := inventory.New(pve, inventory.Config{
		Prefix:      cfg.Network.Prefix,
		Nodes:       cfg.Proxmox.Nodes,
		Concurrency: cfg.Concurrency,
	}, log.WithComponent("inventory"))

	hosts, err := resolver.Resolve(ctx)
	if err != nil {
		log.Logger.WithLevel(zerolog.FatalLevel).Err(err).Msg("inventory resolution failed")
		return err
	}
	if len(hosts) == 0 {
		err := errors.New("inventory resolution yielded no usable hosts")
		log.Logger.WithLevel(zerolog.FatalLevel).Msg(err.Error())
		return err
	}

	// Ascending guest id, so when two guests share a name the record
	// deterministically follows the higher id
	sort.Slice(hosts, func(i, j int) bool { return hosts[i].ID < hosts[j].ID })

	entries := make([]reconciler.Entry, 0, len(hosts))
	for _, h := range hosts {
		entries = append(entries, reconciler.Entry{
			Name: reconciler.FQDN(h.Name, cfg.Cloudflare.Subdomain, cfg.Cloudflare.Zone),
			Addr: h.Addr,
		})
	}

	rec := reconciler.New(cf, cfg.Concurrency, log.WithComponent("reconciler"))
	res, err := rec.Sync(ctx, cfg.Cloudflare.Zone, entries)
	if err != nil {
		log.Logger.WithLevel(zerolog.FatalLevel).Err(err).Msg("zone reconciliation failed")
		return err
	}

	metrics.ObserveRun(time.Since(start))
	if cfg.MetricsFile != "" {
		if err := metrics.WriteFile(cfg.MetricsFile); err != nil {
			log.Logger.Warn().Err(err).Str("path", cfg.MetricsFile).Msg("metrics export failed")
		}
	}

	// Individual write failures are already logged and counted; they
	// do not change the exit code
	log.Logger.Info().
		Int("hosts", len(hosts)).
		Int("created", res.Created).
		Int("updated", res.Updated).
		Int("skipped", res.Skipped).
		Int("failed", res.Failed).
		Dur("duration", time.Since(start)).
		Msg("synchronization complete")
	return nil
}
