package share

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewToken_Format(t *testing.T) {
	token, err := NewToken()
	require.NoError(t, err)
	assert.Len(t, token, 64)
	assert.Regexp(t, "^[0-9a-f]{64}$", token)
}

func TestNewToken_Uniqueness(t *testing.T) {
	const n = 1000
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		token, err := NewToken()
		require.NoError(t, err)
		_, dup := seen[token]
		require.False(t, dup, "token collision after %d tokens", i)
		seen[token] = struct{}{}
	}
}

func TestRegistry_PutGetEvict(t *testing.T) {
	r := NewRegistry()

	record := &Record{
		FilePath:   "docs/report.pdf",
		Owner:      "alice",
		Repo:       "docs",
		CreatedAt:  time.Now(),
		ExpiresAt:  time.Now().Add(time.Hour),
		Credential: "ghp_secret",
	}
	r.Put("alice", "token-1", record)

	got, ok := r.Get("alice", "token-1")
	require.True(t, ok)
	assert.Equal(t, record, got)

	_, ok = r.Get("alice", "nope")
	assert.False(t, ok)
	_, ok = r.Get("bob", "token-1")
	assert.False(t, ok)

	r.Evict("alice", "token-1")
	_, ok = r.Get("alice", "token-1")
	assert.False(t, ok)

	// Eviction clears the stored credential
	assert.Empty(t, record.Credential)
}

func TestRegistry_EvictRemovesEmptyUserEntry(t *testing.T) {
	r := NewRegistry()
	r.Put("alice", "t1", &Record{})
	r.Put("alice", "t2", &Record{})

	r.Evict("alice", "t1")
	assert.Equal(t, 1, r.Count("alice"))

	r.Evict("alice", "t2")
	assert.Equal(t, 0, r.Count("alice"))

	r.mu.RLock()
	_, userEntryExists := r.links["alice"]
	r.mu.RUnlock()
	assert.False(t, userEntryExists, "empty user entry should be removed")
}

func TestRegistry_GetReturnsSnapshot(t *testing.T) {
	r := NewRegistry()
	r.Put("alice", "t1", &Record{FilePath: "a.txt", Credential: "ghp_secret"})

	got, ok := r.Get("alice", "t1")
	require.True(t, ok)

	r.Evict("alice", "t1")
	assert.Equal(t, "ghp_secret", got.Credential,
		"a record handed out before eviction must keep its credential")
}

func TestRegistry_ConcurrentGetAndEvict(t *testing.T) {
	r := NewRegistry()
	const n = 100
	for i := 0; i < n; i++ {
		r.Put("alice", fmt.Sprintf("t%d", i), &Record{Credential: "ghp_secret"})
	}

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		token := fmt.Sprintf("t%d", i)
		wg.Add(2)
		go func() {
			defer wg.Done()
			if record, ok := r.Get("alice", token); ok {
				_ = record.Credential
			}
		}()
		go func() {
			defer wg.Done()
			r.Evict("alice", token)
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, r.Count("alice"))
}

func TestRegistry_EvictUnknownIsNoop(t *testing.T) {
	r := NewRegistry()
	r.Evict("nobody", "nothing")
	assert.Equal(t, 0, r.Count("nobody"))
}

func TestRegistry_IndependentLinksToSameFile(t *testing.T) {
	r := NewRegistry()
	r.Put("alice", "t1", &Record{FilePath: "a.txt"})
	r.Put("alice", "t2", &Record{FilePath: "a.txt"})

	r.Evict("alice", "t1")
	_, ok := r.Get("alice", "t2")
	assert.True(t, ok, "evicting one link must not affect another link to the same file")
}
