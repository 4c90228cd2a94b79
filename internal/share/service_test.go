package share

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	login string
	err   error
	calls int
}

func (f *fakeResolver) ResolveLogin(ctx context.Context, token string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.login, nil
}

func newTestService(resolver *fakeResolver) *Service {
	return NewService(NewRegistry(), resolver, "https://files.example.com", 168)
}

func validRequest() CreateRequest {
	return CreateRequest{
		Owner:           "alice",
		Repo:            "docs",
		Branch:          "main",
		Path:            "docs/report.pdf",
		ExpirationHours: 24,
	}
}

func TestService_Create(t *testing.T) {
	svc := newTestService(&fakeResolver{login: "alice"})

	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.SetNow(func() time.Time { return start })

	resp, err := svc.Create(context.Background(), "ghp_secret", validRequest())
	require.NoError(t, err)

	assert.Equal(t, "alice", resp.Username)
	assert.Len(t, resp.Token, 64)
	assert.Equal(t, "https://files.example.com/share/alice/"+resp.Token, resp.URL)
	assert.Equal(t, start.Add(24*time.Hour), resp.ExpiresAt)

	record, err := svc.Resolve("alice", resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "ghp_secret", record.Credential)
	assert.Equal(t, "docs/report.pdf", record.FilePath)
	assert.Equal(t, start, record.CreatedAt)
}

func TestService_Create_Validation(t *testing.T) {
	tests := []struct {
		name       string
		credential string
		mutate     func(*CreateRequest)
	}{
		{"missing credential", "", func(r *CreateRequest) {}},
		{"missing owner", "tok", func(r *CreateRequest) { r.Owner = "" }},
		{"missing repo", "tok", func(r *CreateRequest) { r.Repo = "" }},
		{"missing path", "tok", func(r *CreateRequest) { r.Path = "" }},
		{"zero hours", "tok", func(r *CreateRequest) { r.ExpirationHours = 0 }},
		{"negative hours", "tok", func(r *CreateRequest) { r.ExpirationHours = -3 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := &fakeResolver{login: "alice"}
			svc := newTestService(resolver)

			req := validRequest()
			tt.mutate(&req)

			_, err := svc.Create(context.Background(), tt.credential, req)
			require.ErrorIs(t, err, ErrInvalidRequest)
			assert.Zero(t, resolver.calls, "identity must not be resolved for invalid requests")
		})
	}
}

func TestService_Create_MaxHours(t *testing.T) {
	svc := newTestService(&fakeResolver{login: "alice"})

	req := validRequest()
	req.ExpirationHours = 169

	_, err := svc.Create(context.Background(), "tok", req)
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestService_Create_Unauthorized(t *testing.T) {
	svc := newTestService(&fakeResolver{err: errors.New("bad credentials")})

	_, err := svc.Create(context.Background(), "bad-token", validRequest())
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestService_Resolve_NotFound(t *testing.T) {
	svc := newTestService(&fakeResolver{login: "alice"})

	_, err := svc.Resolve("alice", "deadbeef")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestService_ExpiryBoundary(t *testing.T) {
	svc := newTestService(&fakeResolver{login: "alice"})

	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := created
	svc.SetNow(func() time.Time { return now })

	req := validRequest()
	req.ExpirationHours = 2
	resp, err := svc.Create(context.Background(), "tok", req)
	require.NoError(t, err)

	// One second before expiry the link is still active
	now = created.Add(2*time.Hour - time.Second)
	_, err = svc.Resolve("alice", resp.Token)
	require.NoError(t, err)

	// One second past expiry the link is gone and gets evicted
	now = created.Add(2*time.Hour + time.Second)
	_, err = svc.Resolve("alice", resp.Token)
	require.ErrorIs(t, err, ErrGone)
}

func TestService_EvictionIdempotence(t *testing.T) {
	svc := newTestService(&fakeResolver{login: "alice"})

	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := created
	svc.SetNow(func() time.Time { return now })

	req := validRequest()
	req.ExpirationHours = 1
	resp, err := svc.Create(context.Background(), "tok", req)
	require.NoError(t, err)

	now = created.Add(61 * time.Minute)

	_, err = svc.Resolve("alice", resp.Token)
	require.ErrorIs(t, err, ErrGone)

	// The record was evicted; further attempts are plain not-found
	_, err = svc.Resolve("alice", resp.Token)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Resolve("alice", resp.Token)
	require.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, 0, svc.Registry().Count("alice"))
}

func TestService_ResolvedRecordSurvivesEviction(t *testing.T) {
	svc := newTestService(&fakeResolver{login: "alice"})

	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := created
	svc.SetNow(func() time.Time { return now })

	req := validRequest()
	req.ExpirationHours = 1
	resp, err := svc.Create(context.Background(), "ghp_secret", req)
	require.NoError(t, err)

	// A request that resolves the link while it is still active...
	now = created.Add(time.Hour - time.Second)
	record, err := svc.Resolve("alice", resp.Token)
	require.NoError(t, err)

	// ...is unaffected by another access evicting the expired link
	now = created.Add(time.Hour + time.Second)
	_, err = svc.Resolve("alice", resp.Token)
	require.ErrorIs(t, err, ErrGone)

	assert.Equal(t, "ghp_secret", record.Credential,
		"an in-flight resolution must keep the credential it was served with")
}

func TestService_ConcurrentLinksSameFile(t *testing.T) {
	svc := newTestService(&fakeResolver{login: "alice"})

	first, err := svc.Create(context.Background(), "tok", validRequest())
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), "tok", validRequest())
	require.NoError(t, err)

	assert.NotEqual(t, first.Token, second.Token)

	_, err = svc.Resolve("alice", first.Token)
	require.NoError(t, err)
	_, err = svc.Resolve("alice", second.Token)
	require.NoError(t, err)
}
