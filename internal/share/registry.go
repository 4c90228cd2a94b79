package share

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

// Record holds everything needed to serve one shared file anonymously.
//
// Credential is the issuer's GitHub personal access token, captured at
// issuance time. It is used only server-side when proxying bytes and must
// never appear in a response body, header or log line.
type Record struct {
	FilePath   string
	Owner      string
	Repo       string
	Branch     string
	CreatedAt  time.Time
	ExpiresAt  time.Time
	Credential string `json:"-"`
}

// Registry is the process-wide in-memory store of share records, keyed by
// issuer username and then by token. Records are lost on restart; that is
// an accepted limitation of the in-memory design.
type Registry struct {
	mu    sync.RWMutex
	links map[string]map[string]*Record
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		links: make(map[string]map[string]*Record),
	}
}

// Put stores a record under (username, token). Tokens are unique by
// construction, so an existing entry is never expected.
func (r *Registry) Put(username, token string, record *Record) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userLinks, ok := r.links[username]
	if !ok {
		userLinks = make(map[string]*Record)
		r.links[username] = userLinks
	}
	userLinks[token] = record
}

// Get returns a snapshot of the record for (username, token), without
// side effects. Callers get a copy: a later Evict wipes the stored
// record, never one already handed out to an in-flight request.
func (r *Registry) Get(username, token string) (*Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	userLinks, ok := r.links[username]
	if !ok {
		return nil, false
	}
	record, ok := userLinks[token]
	if !ok {
		return nil, false
	}
	snapshot := *record
	return &snapshot, true
}

// Evict removes the record for (username, token). When the user's last
// record is removed the user entry is removed too.
func (r *Registry) Evict(username, token string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userLinks, ok := r.links[username]
	if !ok {
		return
	}
	if record, ok := userLinks[token]; ok {
		// Drop the stored credential before the record becomes
		// unreachable. Snapshots handed out by Get are unaffected.
		record.Credential = ""
	}
	delete(userLinks, token)
	if len(userLinks) == 0 {
		delete(r.links, username)
	}
}

// Count returns the number of live records for one user.
func (r *Registry) Count(username string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.links[username])
}

// NewToken returns a 64-character hex token from 32 bytes of
// cryptographically secure randomness.
func NewToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
