package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/bnema/skiff/internal/share"
)

// NewShareCommand creates a share link against a running skiff server.
// The PAT is taken from GITHUB_TOKEN or prompted for.
func NewShareCommand() *cobra.Command {
	var serverURL string

	command := &cobra.Command{
		Use:           "share",
		Short:         "Create a share link for a file in one of your repositories",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			token := os.Getenv("GITHUB_TOKEN")
			if token == "" {
				prompt := &survey.Password{Message: "GitHub personal access token:"}
				if err := survey.AskOne(prompt, &token, survey.WithValidator(survey.Required)); err != nil {
					return err
				}
			}

			var req share.CreateRequest
			questions := []*survey.Question{
				{
					Name:     "owner",
					Prompt:   &survey.Input{Message: "Repository owner:"},
					Validate: survey.Required,
				},
				{
					Name:     "repo",
					Prompt:   &survey.Input{Message: "Repository name:"},
					Validate: survey.Required,
				},
				{
					Name:   "branch",
					Prompt: &survey.Input{Message: "Branch (empty for default):"},
				},
				{
					Name:     "path",
					Prompt:   &survey.Input{Message: "File path:"},
					Validate: survey.Required,
				},
				{
					Name:   "expirationHours",
					Prompt: &survey.Input{Message: "Expiration (hours):", Default: "24"},
				},
			}
			if err := survey.Ask(questions, &req); err != nil {
				return err
			}

			resp, err := createShareLink(serverURL, token, req)
			if err != nil {
				color.Red("Could not create share link: %v", err)
				return err
			}

			color.Green("Share link created for %s", req.Path)
			fmt.Println(resp.URL)
			color.Yellow("Expires %s", resp.ExpiresAt.Format(time.RFC1123))
			return nil
		},
	}

	command.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "base URL of the skiff server")
	return command
}

func createShareLink(serverURL, token string, req share.CreateRequest) (*share.CreateResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequest(http.MethodPost, serverURL+"/share/create", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)

	httpResp, err := http.DefaultClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusCreated {
		var apiErr struct {
			Error string `json:"error"`
		}
		data, _ := io.ReadAll(httpResp.Body)
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("server returned %d: %s", httpResp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("server returned %d", httpResp.StatusCode)
	}

	var resp share.CreateResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
