package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/entrhq/prospect/pkg/browser"
	"github.com/entrhq/prospect/pkg/orchestrator"
	"github.com/entrhq/prospect/pkg/platform"
)

// postFile is the on-disk shape of a posting batch.
type postFile struct {
	Posts []postEntry `yaml:"posts"`
}

type postEntry struct {
	Platform string            `yaml:"platform"`
	Payload  map[string]string `yaml:"payload"`
	Media    string            `yaml:"media"`
}

func newPostCmd() *cobra.Command {
	var payloadFile string

	cmd := &cobra.Command{
		Use:   "post",
		Short: "Publish a content batch across platforms",
		Long:  "Reads a YAML batch of per-platform payloads and publishes each through its platform adapter. Platforms are independent: one failure never stops the others.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.log.Sync()

			requests, wanted, err := loadPostBatch(payloadFile)
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			var session *browser.Session
			if needsBrowser(wanted, true) {
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
			results := orchestrator.New(reg, a.log).PublishAll(ctx, requests)

			var failed []platform.Platform
			for _, p := range wanted {
				r := results[p]
				if r.Success {
					fmt.Fprintf(cmd.OutOrStdout(), "%-12s ok   %s\n", p, r.RemoteID)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "%-12s FAIL %s\n", p, r.Error)
					failed = append(failed, p)
				}
			}

			if _, err := a.journal.Append("post", map[string]string{
				"requested": strconv.Itoa(len(requests)),
				"failed":    strconv.Itoa(len(failed)),
			}); err != nil {
				return err
			}

			if len(failed) > 0 {
				return errors.Newf("publish failed on %v", failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&payloadFile, "payload", "", "YAML file with the posting batch")
	cmd.MarkFlagRequired("payload")

	return cmd
}

// loadPostBatch parses the batch file into posting requests, preserving file
// order. Each platform may appear at most once.
func loadPostBatch(path string) ([]platform.PostRequest, []platform.Platform, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "reading payload %s", path)
	}

	var file postFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, nil, errors.Wrapf(err, "parsing payload %s", path)
	}
	if len(file.Posts) == 0 {
		return nil, nil, errors.New("payload file contains no posts")
	}

	requests := make([]platform.PostRequest, 0, len(file.Posts))
	wanted := make([]platform.Platform, 0, len(file.Posts))
	seen := make(map[platform.Platform]bool)
	for _, entry := range file.Posts {
		p := platform.Platform(entry.Platform)
		if !p.Valid() {
			return nil, nil, errors.Newf("unknown platform %q (choose from %v)", entry.Platform, platform.All())
		}
		if seen[p] {
			return nil, nil, errors.Newf("platform %s listed twice", p)
		}
		seen[p] = true

		requests = append(requests, platform.PostRequest{Platform: p, Payload: entry.Payload, MediaRef: entry.Media})
		wanted = append(wanted, p)
	}
	return requests, wanted, nil
}
