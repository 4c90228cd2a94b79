package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/bnema/skiff/internal/common"
)

const (
	releaseOwner = "bnema"
	releaseRepo  = "skiff"
)

type githubRelease struct {
	Tag string `json:"tag_name"`
	URL string `json:"html_url"`
}

// NewVersionCommand prints build info; with --check it compares against
// the latest GitHub release.
func NewVersionCommand(buildInfo *common.BuildConfig) *cobra.Command {
	var check bool

	command := &cobra.Command{
		Use:   "version",
		Short: "Print the skiff version",
		RunE: func(cmd *cobra.Command, args []string) error {
			version := buildInfo.BuildVersion
			if version == "" {
				version = "dev"
			}
			fmt.Printf("skiff %s (commit %s, built %s)\n", version, buildInfo.BuildCommit, buildInfo.BuildDate)

			if !check {
				return nil
			}

			latest, err := fetchLatestRelease(cmd.Context())
			if err != nil {
				return fmt.Errorf("could not check for updates: %w", err)
			}

			newer, err := isNewerRelease(version, latest.Tag)
			if err != nil {
				return err
			}
			if newer {
				color.Yellow("A new version is available: %s", latest.Tag)
				fmt.Println(latest.URL)
			} else {
				color.Green("You are on the latest version.")
			}
			return nil
		},
	}

	command.Flags().BoolVar(&check, "check", false, "check GitHub for a newer release")
	return command
}

func fetchLatestRelease(ctx context.Context) (*githubRelease, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	url := fmt.Sprintf("https://api.github.com/repos/%s/%s/releases/latest", releaseOwner, releaseRepo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from GitHub", resp.StatusCode)
	}

	var release githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, err
	}
	return &release, nil
}

// isNewerRelease reports whether the release tag is a newer semver than
// the current build. A dev build never claims to be newer than a release.
func isNewerRelease(current, tag string) (bool, error) {
	if current == "dev" {
		return true, nil
	}
	currentVersion, err := semver.NewVersion(current)
	if err != nil {
		return false, fmt.Errorf("could not parse current version %q: %w", current, err)
	}
	latestVersion, err := semver.NewVersion(tag)
	if err != nil {
		return false, fmt.Errorf("could not parse release tag %q: %w", tag, err)
	}
	return latestVersion.GreaterThan(currentVersion), nil
}
