package adapter

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// TokenSource yields a bearer token for the retrieval service. Implementations
// must return a currently valid token, refreshing expired credentials before
// returning.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// googleTokenSource resolves Application Default Credentials and caches the
// last issued token. Validity is checked on every call so long-lived clients
// survive token expiry; refresh is safe to run redundantly under overlapping
// calls (last write wins).
type googleTokenSource struct {
	source oauth2.TokenSource

	mu    sync.Mutex
	token *oauth2.Token
}

// NewGoogleTokenSource creates a TokenSource backed by Application Default
// Credentials with the cloud-platform scope.
func NewGoogleTokenSource(ctx context.Context) (TokenSource, error) {
	creds, err := google.FindDefaultCredentials(ctx, cloudPlatformScope)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to find default credentials")
	}

	return &googleTokenSource{source: creds.TokenSource}, nil
}

func (s *googleTokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token.Valid() {
		return s.token.AccessToken, nil
	}

	token, err := s.source.Token()
	if err != nil {
		return "", goerr.Wrap(err, "failed to refresh access token")
	}
	s.token = token

	return token.AccessToken, nil
}

// StaticTokenSource returns a TokenSource that always yields the given token.
// Intended for tests and environments where the token is managed externally.
func StaticTokenSource(token string) TokenSource {
	return staticTokenSource(token)
}

type staticTokenSource string

func (s staticTokenSource) Token(ctx context.Context) (string, error) {
	if s == "" {
		return "", goerr.New("static token is empty")
	}
	return string(s), nil
}
