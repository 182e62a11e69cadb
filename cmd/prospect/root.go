package main

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/entrhq/prospect/pkg/activity"
	"github.com/entrhq/prospect/pkg/browser"
	"github.com/entrhq/prospect/pkg/config"
	"github.com/entrhq/prospect/pkg/credentials"
	"github.com/entrhq/prospect/pkg/logging"
	"github.com/entrhq/prospect/pkg/platform"
	"github.com/entrhq/prospect/pkg/platform/gmaps"
	"github.com/entrhq/prospect/pkg/platform/linkedin"
	"github.com/entrhq/prospect/pkg/platform/medium"
	"github.com/entrhq/prospect/pkg/platform/meta"
	"github.com/entrhq/prospect/pkg/platform/twitter"
)

const version = "0.1.0"

var (
	cfgFile string
	envFile string
	debug   bool
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "prospect",
		Short:         "prospect — lead discovery and content fan-out engine",
		Long:          "prospect drives real browser sessions and platform APIs to discover leads, score them against keywords, and publish content across platforms.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "path to .env file with credentials")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable verbose logging")

	rootCmd.AddCommand(newScrapeCmd())
	rootCmd.AddCommand(newPostCmd())
	rootCmd.AddCommand(newHistoryCmd())

	return rootCmd
}

// app bundles the shared runtime pieces every subcommand needs.
type app struct {
	cfg     config.Config
	creds   *credentials.Set
	log     *zap.SugaredLogger
	journal *activity.Log
}

func setup() (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if debug {
		cfg.Debug = true
	}
	if envFile != "" {
		cfg.EnvFile = envFile
	}

	log, err := logging.New(cfg.Debug)
	if err != nil {
		return nil, err
	}

	creds, err := credentials.Load(cfg.EnvFile)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:     cfg,
		creds:   creds,
		log:     log,
		journal: activity.NewLog(filepath.Join(cfg.OutputDir, "activity_log.json")),
	}, nil
}

// registerAdapters builds the adapters for the requested platforms. A
// platform whose adapter cannot be constructed (typically missing
// credentials) is logged and skipped so the rest of the run proceeds.
func (a *app) registerAdapters(session *browser.Session, wanted []platform.Platform) *platform.Registry {
	reg := platform.NewRegistry()
	settle := time.Duration(a.cfg.SettleDelay)

	register := func(p platform.Platform, adapter platform.Adapter, err error) {
		if err != nil {
			a.log.Warnw("skipping platform", "platform", p, "error", err)
			return
		}
		if err := reg.Register(adapter); err != nil {
			a.log.Warnw("skipping platform", "platform", p, "error", err)
		}
	}

	for _, p := range wanted {
		switch p {
		case platform.LinkedIn:
			adapter, err := linkedin.New(session, a.creds, a.log)
			if err == nil {
				adapter.SettleDelay = settle
			}
			register(p, adapter, err)
		case platform.Twitter:
			adapter, err := twitter.New(session, a.creds, a.log)
			if err == nil {
				adapter.SettleDelay = settle
			}
			register(p, adapter, err)
		case platform.GoogleMaps:
			adapter := gmaps.New(session, a.log)
			adapter.SettleDelay = settle
			register(p, adapter, nil)
		case platform.Medium:
			register(p, medium.New(session, a.log), nil)
		case platform.Facebook:
			adapter, err := meta.NewFacebook(session, a.creds, a.cfg.GraphURL, a.log)
			if err == nil {
				adapter.SettleDelay = settle
			}
			register(p, adapter, err)
		case platform.Instagram:
			adapter, err := meta.NewInstagram(a.creds, a.cfg.GraphURL, a.log)
			register(p, adapter, err)
		default:
			a.log.Warnw("unknown platform requested", "platform", p)
		}
	}
	return reg
}

// parsePlatforms maps flag values onto platform identifiers, rejecting
// unknown names early.
func parsePlatforms(names []string) ([]platform.Platform, error) {
	out := make([]platform.Platform, 0, len(names))
	for _, name := range names {
		p := platform.Platform(strings.TrimSpace(name))
		if !p.Valid() {
			return nil, errors.Newf("unknown platform %q (choose from %v)", name, platform.All())
		}
		out = append(out, p)
	}
	return out, nil
}
