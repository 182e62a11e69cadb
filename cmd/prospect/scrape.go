package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/entrhq/prospect/pkg/browser"
	"github.com/entrhq/prospect/pkg/leads"
	"github.com/entrhq/prospect/pkg/outreach"
	"github.com/entrhq/prospect/pkg/platform"
)

func newScrapeCmd() *cobra.Command {
	var (
		platformNames []string
		terms         string
		location      string
		maxResults    int
		keywords      []string
		bundle        bool
	)

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Discover leads across the requested platforms",
		Long:  "Runs extraction on each requested platform, scores leads against keywords, removes cross-platform duplicates and writes a CSV table (plus an optional outreach bundle).",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.log.Sync()

			wanted, err := parsePlatforms(platformNames)
			if err != nil {
				return err
			}
			if maxResults > 0 {
				a.cfg.MaxResults = maxResults
			}
			if len(keywords) == 0 {
				keywords = a.cfg.Keywords
			}

			ctx := cmd.Context()

			var session *browser.Session
			if needsBrowser(wanted, false) {
				manager := browser.NewManager(a.log)
				if err := manager.Start(); err != nil {
					return err
				}
				defer manager.Stop()

				session, err = manager.NewSession(browser.SessionOptions{Headless: a.cfg.Headless})
				if err != nil {
					return err
				}
			}

			reg := a.registerAdapters(session, wanted)
			query := platform.Query{Terms: terms, Location: location}

			var batches [][]platform.Lead
			for _, p := range wanted {
				ext, ok := reg.Extractor(p)
				if !ok {
					a.log.Warnw("no extraction support", "platform", p)
					continue
				}
				batch, err := ext.ExtractLeads(ctx, query, a.cfg.MaxResults)
				if err != nil {
					a.log.Warnw("extraction failed", "platform", p, "error", err)
					continue
				}
				a.log.Infow("extracted", "platform", p, "leads", len(batch))
				batches = append(batches, batch)
			}

			all := leads.Merge(batches...)
			if len(keywords) > 0 {
				all = leads.FilterByKeywords(all, keywords)
			}
			all = leads.Deduplicate(all)

			if err := os.MkdirAll(a.cfg.OutputDir, 0o755); err != nil {
				return err
			}
			stamp := time.Now().UTC().Format("20060102_150405")

			csvPath := filepath.Join(a.cfg.OutputDir, "leads_"+stamp+".csv")
			if err := writeLeadsCSV(csvPath, all); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d leads -> %s\n", len(all), csvPath)

			if bundle {
				bundlePath := filepath.Join(a.cfg.OutputDir, "outreach_"+stamp+".txt")
				if err := writeOutreachBundle(bundlePath, a.cfg.Sender, all, a.cfg.OutreachLimit); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "outreach bundle -> %s\n", bundlePath)
			}

			_, err = a.journal.Append("scrape", map[string]string{
				"terms":     terms,
				"platforms": strings.Join(platformNames, ","),
				"leads":     strconv.Itoa(len(all)),
			})
			return err
		},
	}

	cmd.Flags().StringSliceVar(&platformNames, "platforms", []string{"linkedin", "twitter", "google_maps"}, "platforms to extract from")
	cmd.Flags().StringVar(&terms, "terms", "", "search terms (or a group URL for facebook)")
	cmd.Flags().StringVar(&location, "location", "", "location qualifier for local-business searches")
	cmd.Flags().IntVar(&maxResults, "max", 0, "max leads per platform (overrides config)")
	cmd.Flags().StringSliceVar(&keywords, "keywords", nil, "keywords to score and filter leads (overrides config)")
	cmd.Flags().BoolVar(&bundle, "outreach", false, "also write a ready-to-send outreach bundle")
	cmd.MarkFlagRequired("terms")

	return cmd
}

// needsBrowser reports whether any requested platform drives a real browser
// session rather than an HTTP API. Extraction reaches every platform but
// Instagram through a browser; publishing to Facebook and Instagram goes
// through the Graph API.
func needsBrowser(wanted []platform.Platform, publishing bool) bool {
	for _, p := range wanted {
		switch p {
		case platform.Instagram:
		case platform.Facebook:
			if !publishing {
				return true
			}
		default:
			return true
		}
	}
	return false
}

func writeLeadsCSV(path string, all []platform.Lead) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return leads.WriteCSV(f, all)
}

func writeOutreachBundle(path, sender string, all []platform.Lead, limit int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return outreach.WriteBundle(f, outreach.NewEngine(sender), all, limit)
}
