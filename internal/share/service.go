package share

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bnema/skiff/pkg/logger"
)

var (
	// ErrInvalidRequest means the issuance request is missing or has
	// malformed fields. Wrapped errors name the field.
	ErrInvalidRequest = errors.New("invalid share request")
	// ErrUnauthorized means the presented credential was rejected upstream.
	ErrUnauthorized = errors.New("credential rejected")
	// ErrNotFound means no record exists for (username, token).
	ErrNotFound = errors.New("share link not found")
	// ErrGone means the record existed but is past expiry. Resolving a
	// gone link evicts it, so the next attempt gets ErrNotFound.
	ErrGone = errors.New("share link expired")
)

// IdentityResolver resolves the username behind a credential.
// Satisfied by github.Client.
type IdentityResolver interface {
	ResolveLogin(ctx context.Context, token string) (string, error)
}

// CreateRequest is the issuance input.
type CreateRequest struct {
	Owner           string `json:"owner"`
	Repo            string `json:"repo"`
	Branch          string `json:"branch"`
	Path            string `json:"path"`
	ExpirationHours int    `json:"expirationHours"`
}

// CreateResponse is returned to the issuer.
type CreateResponse struct {
	Token     string    `json:"token"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
	Username  string    `json:"username"`
}

// Service issues share links and resolves them on access.
type Service struct {
	registry *Registry
	identity IdentityResolver
	baseURL  string
	maxHours int

	// now is replaceable in tests
	now func() time.Time
}

// NewService wires a share service.
func NewService(registry *Registry, identity IdentityResolver, baseURL string, maxHours int) *Service {
	return &Service{
		registry: registry,
		identity: identity,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		maxHours: maxHours,
		now:      time.Now,
	}
}

// Registry exposes the backing registry, mainly for tests.
func (s *Service) Registry() *Registry {
	return s.registry
}

// SetNow replaces the clock. Tests only.
func (s *Service) SetNow(now func() time.Time) {
	s.now = now
}

// Create validates the request, resolves the issuer identity from the
// credential and stores a new share record bound to that credential.
func (s *Service) Create(ctx context.Context, credential string, req CreateRequest) (*CreateResponse, error) {
	if err := validate(credential, req); err != nil {
		return nil, err
	}
	if s.maxHours > 0 && req.ExpirationHours > s.maxHours {
		return nil, fmt.Errorf("%w: expirationHours exceeds the maximum of %d", ErrInvalidRequest, s.maxHours)
	}

	username, err := s.identity.ResolveLogin(ctx, credential)
	if err != nil {
		logger.Warn("Share issuance rejected: could not resolve identity", "error", err)
		return nil, ErrUnauthorized
	}

	token, err := NewToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate share token: %w", err)
	}

	now := s.now()
	record := &Record{
		FilePath:   req.Path,
		Owner:      req.Owner,
		Repo:       req.Repo,
		Branch:     req.Branch,
		CreatedAt:  now,
		ExpiresAt:  now.Add(time.Duration(req.ExpirationHours) * time.Hour),
		Credential: credential,
	}
	s.registry.Put(username, token, record)

	logger.Info("Share link created",
		"username", username,
		"owner", req.Owner,
		"repo", req.Repo,
		"path", req.Path,
		"expires_at", record.ExpiresAt)

	return &CreateResponse{
		Token:     token,
		URL:       fmt.Sprintf("%s/share/%s/%s", s.baseURL, username, token),
		ExpiresAt: record.ExpiresAt,
		Username:  username,
	}, nil
}

// Resolve looks up (username, token) and checks expiry. An expired record
// is evicted as a side effect, so resolving it again returns ErrNotFound.
func (s *Service) Resolve(username, token string) (*Record, error) {
	record, ok := s.registry.Get(username, token)
	if !ok {
		return nil, ErrNotFound
	}
	if s.now().After(record.ExpiresAt) {
		s.registry.Evict(username, token)
		logger.Debug("Evicted expired share link", "username", username)
		return nil, ErrGone
	}
	return record, nil
}

func validate(credential string, req CreateRequest) error {
	var missing []string
	if credential == "" {
		missing = append(missing, "credential")
	}
	if req.Owner == "" {
		missing = append(missing, "owner")
	}
	if req.Repo == "" {
		missing = append(missing, "repo")
	}
	if req.Path == "" {
		missing = append(missing, "path")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidRequest, strings.Join(missing, ", "))
	}
	if req.ExpirationHours <= 0 {
		return fmt.Errorf("%w: expirationHours must be positive", ErrInvalidRequest)
	}
	return nil
}
