// Package github is a minimal client for the parts of the GitHub REST API
// skiff needs: identity resolution, repository listing and raw file content.
package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bnema/skiff/pkg/logger"
)

var (
	// ErrUnauthorized means the token was rejected by the API.
	ErrUnauthorized = errors.New("github: bad credentials")
	// ErrNotFound means the requested object does not exist or the token
	// cannot see it.
	ErrNotFound = errors.New("github: not found")
)

// Upstream calls never hang a request forever; 30s covers the two round
// trips of a large-object fetch.
const requestTimeout = 30 * time.Second

// Client talks to the GitHub REST API with a per-request token.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client against apiURL (normally https://api.github.com).
func NewClient(apiURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimSuffix(apiURL, "/"),
		HTTPClient: &http.Client{Timeout: requestTimeout},
	}
}

// User is the authenticated GitHub user.
type User struct {
	Login     string `json:"login"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

// Repo is one repository of the authenticated user.
type Repo struct {
	Name          string `json:"name"`
	FullName      string `json:"full_name"`
	Private       bool   `json:"private"`
	DefaultBranch string `json:"default_branch"`
}

// Entry is one item of a directory listing from the contents API.
type Entry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"` // "file" or "dir"
	Size int64  `json:"size"`
}

// contentResponse is the contents API payload for a single file.
type contentResponse struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Path        string `json:"path"`
	Size        int64  `json:"size"`
	Content     string `json:"content"`
	Encoding    string `json:"encoding"`
	DownloadURL string `json:"download_url"`
}

// GetUser resolves the identity behind a token.
func (c *Client) GetUser(ctx context.Context, token string) (*User, error) {
	var user User
	if err := c.getJSON(ctx, token, "/user", &user); err != nil {
		return nil, err
	}
	if user.Login == "" {
		return nil, ErrUnauthorized
	}
	return &user, nil
}

// ResolveLogin implements share.IdentityResolver.
func (c *Client) ResolveLogin(ctx context.Context, token string) (string, error) {
	user, err := c.GetUser(ctx, token)
	if err != nil {
		return "", err
	}
	return user.Login, nil
}

// ListRepos lists the repositories the token can see.
func (c *Client) ListRepos(ctx context.Context, token string) ([]Repo, error) {
	var repos []Repo
	if err := c.getJSON(ctx, token, "/user/repos?per_page=100&sort=updated", &repos); err != nil {
		return nil, err
	}
	return repos, nil
}

// ListContents lists one directory of a repository.
func (c *Client) ListContents(ctx context.Context, token, owner, repo, branch, dir string) ([]Entry, error) {
	var entries []Entry
	if err := c.getJSON(ctx, token, contentsPath(owner, repo, branch, dir), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// GetFileContent fetches the raw bytes of one file.
//
// Small files arrive inline as base64 in the contents API response. Above
// the API's inline limit (1MB) the content field is empty and the bytes
// have to be fetched from download_url in a second round trip with the
// same token. Both paths return the same bytes as a direct view.
func (c *Client) GetFileContent(ctx context.Context, token, owner, repo, branch, path string) ([]byte, error) {
	var content contentResponse
	if err := c.getJSON(ctx, token, contentsPath(owner, repo, branch, path), &content); err != nil {
		return nil, err
	}
	if content.Type != "" && content.Type != "file" {
		return nil, fmt.Errorf("github: %s is not a file", path)
	}

	if content.Content != "" {
		// The API inserts newlines into the base64 payload
		raw := strings.ReplaceAll(content.Content, "\n", "")
		data, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return nil, fmt.Errorf("github: failed to decode content of %s: %w", path, err)
		}
		return data, nil
	}

	if content.DownloadURL == "" {
		return nil, fmt.Errorf("github: no content available for %s", path)
	}

	logger.Debug("Fetching large object via download URL", "path", path, "size", content.Size)
	return c.download(ctx, token, content.DownloadURL)
}

func contentsPath(owner, repo, branch, path string) string {
	p := fmt.Sprintf("/repos/%s/%s/contents/%s",
		url.PathEscape(owner), url.PathEscape(repo), escapePath(strings.TrimPrefix(path, "/")))
	if branch != "" {
		p += "?ref=" + url.QueryEscape(branch)
	}
	return p
}

// escapePath escapes each segment of a repository path, keeping the slashes.
func escapePath(path string) string {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

func (c *Client) getJSON(ctx context.Context, token, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("github: request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) download(ctx context.Context, token, downloadURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github: download failed: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	return io.ReadAll(resp.Body)
}

func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= 300:
		// Keep upstream bodies out of errors that may reach a client
		return fmt.Errorf("github: unexpected status %d", resp.StatusCode)
	}
	return nil
}
