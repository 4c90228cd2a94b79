package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "ghp_testtoken"

func authorized(r *http.Request) bool {
	return r.Header.Get("Authorization") == "Bearer "+testToken
}

func newFakeGithub(t *testing.T, largeContent []byte) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"login": "alice", "name": "Alice"})
	})

	mux.HandleFunc("/repos/alice/docs/contents/", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/repos/alice/docs/contents/hello.txt":
			// Inline content: GitHub wraps base64 at 60 chars with newlines
			encoded := base64.StdEncoding.EncodeToString([]byte("hello world\n"))
			json.NewEncoder(w).Encode(map[string]interface{}{
				"type":     "file",
				"name":     "hello.txt",
				"content":  encoded[:8] + "\n" + encoded[8:],
				"encoding": "base64",
			})
		case "/repos/alice/docs/contents/big.bin":
			// Large object: no inline content, only a download URL
			json.NewEncoder(w).Encode(map[string]interface{}{
				"type":         "file",
				"name":         "big.bin",
				"size":         len(largeContent),
				"content":      "",
				"encoding":     "none",
				"download_url": "http://" + r.Host + "/raw/big.bin",
			})
		case "/repos/alice/docs/contents/subdir":
			json.NewEncoder(w).Encode([]map[string]interface{}{
				{"name": "a.txt", "path": "subdir/a.txt", "type": "file", "size": 3},
				{"name": "nested", "path": "subdir/nested", "type": "dir"},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	mux.HandleFunc("/raw/big.bin", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write(largeContent)
	})

	mux.HandleFunc("/user/repos", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode([]map[string]interface{}{
			{"name": "docs", "full_name": "alice/docs", "private": true, "default_branch": "main"},
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestGetUser(t *testing.T) {
	srv := newFakeGithub(t, nil)
	c := NewClient(srv.URL)

	user, err := c.GetUser(context.Background(), testToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Login)
}

func TestGetUser_BadToken(t *testing.T) {
	srv := newFakeGithub(t, nil)
	c := NewClient(srv.URL)

	_, err := c.GetUser(context.Background(), "wrong")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestResolveLogin(t *testing.T) {
	srv := newFakeGithub(t, nil)
	c := NewClient(srv.URL)

	login, err := c.ResolveLogin(context.Background(), testToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", login)
}

func TestGetFileContent_Inline(t *testing.T) {
	srv := newFakeGithub(t, nil)
	c := NewClient(srv.URL)

	data, err := c.GetFileContent(context.Background(), testToken, "alice", "docs", "main", "hello.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello world\n"), data)
}

func TestGetFileContent_LargeObject(t *testing.T) {
	large := make([]byte, 4096)
	for i := range large {
		large[i] = byte(i % 251)
	}
	srv := newFakeGithub(t, large)
	c := NewClient(srv.URL)

	data, err := c.GetFileContent(context.Background(), testToken, "alice", "docs", "main", "big.bin")
	require.NoError(t, err)
	assert.Equal(t, large, data)
}

func TestGetFileContent_NotFound(t *testing.T) {
	srv := newFakeGithub(t, nil)
	c := NewClient(srv.URL)

	_, err := c.GetFileContent(context.Background(), testToken, "alice", "docs", "main", "missing.txt")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListContents(t *testing.T) {
	srv := newFakeGithub(t, nil)
	c := NewClient(srv.URL)

	entries, err := c.ListContents(context.Background(), testToken, "alice", "docs", "", "subdir")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a.txt", entries[0].Name)
	assert.Equal(t, "dir", entries[1].Type)
}

func TestListRepos(t *testing.T) {
	srv := newFakeGithub(t, nil)
	c := NewClient(srv.URL)

	repos, err := c.ListRepos(context.Background(), testToken)
	require.NoError(t, err)
	require.Len(t, repos, 1)
	assert.Equal(t, "alice/docs", repos[0].FullName)
	assert.True(t, repos[0].Private)
}
