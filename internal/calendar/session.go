package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"dental-clinic-server/internal/config"
)

var sessionScopes = []string{gcal.CalendarReadonlyScope, gcal.CalendarEventsScope}

const refreshAttempts = 3

// SessionCache owns the shared calendar client handle. A built session is
// reused until the TTL expires; the mutex ensures only one rebuild or token
// refresh is in flight at a time, concurrent callers wait and reuse it.
type SessionCache struct {
	cfg config.CalendarConfig
	log zerolog.Logger

	mu        sync.Mutex
	service   *gcal.Service
	fetchedAt time.Time
}

// NewSessionCache creates a SessionCache from configuration.
func NewSessionCache(cfg config.CalendarConfig, log zerolog.Logger) *SessionCache {
	return &SessionCache{cfg: cfg, log: log.With().Str("component", "calendar-session").Logger()}
}

// Service returns a working calendar client, building and caching one if
// needed. Credential failures come back as *CredentialError.
func (s *SessionCache) Service(ctx context.Context) (*gcal.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.service != nil && time.Since(s.fetchedAt) < s.cfg.SessionTTL {
		return s.service, nil
	}

	service, err := s.build(ctx)
	if err != nil {
		return nil, err
	}

	s.service = service
	s.fetchedAt = time.Now()
	return service, nil
}

// Invalidate drops the cached session so the next caller rebuilds it.
func (s *SessionCache) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.service = nil
	s.fetchedAt = time.Time{}
}

// Validate checks that a session can be established without caching the
// result. Used by the admin credential check. It holds the mutex so the
// build (and its token-file write) cannot race a concurrent refresh.
func (s *SessionCache) Validate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.build(ctx)
	return err
}

// Refresh proactively rebuilds the session, refreshing the delegated
// token if one is in use.
func (s *SessionCache) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	service, err := s.build(ctx)
	if err != nil {
		return err
	}
	s.service = service
	s.fetchedAt = time.Now()
	return nil
}

// build establishes a session from the first available credential source:
// service account (env), delegated token (env), then token file.
func (s *SessionCache) build(ctx context.Context) (*gcal.Service, error) {
	if s.cfg.ServiceAccountJSON != "" {
		// Service account credentials never expire and need no refresh.
		service, err := gcal.NewService(ctx,
			option.WithCredentialsJSON([]byte(s.cfg.ServiceAccountJSON)),
			option.WithScopes(sessionScopes...))
		if err != nil {
			return nil, &CredentialError{Permanent: true, Err: fmt.Errorf("service account credentials rejected: %w", err)}
		}
		s.log.Debug().Msg("calendar session built from service account")
		return service, nil
	}

	if s.cfg.TokenJSON != "" {
		token, err := parseToken([]byte(s.cfg.TokenJSON))
		if err != nil {
			return nil, &CredentialError{Permanent: true, Err: fmt.Errorf("GOOGLE_TOKEN_JSON is not a valid token: %w", err)}
		}
		return s.buildFromToken(ctx, token, "")
	}

	data, err := os.ReadFile(s.cfg.TokenFile)
	if err != nil {
		return nil, &CredentialError{Permanent: true, Err: errors.New("no calendar credentials configured: set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_TOKEN_JSON, or provide a token file")}
	}
	token, err := parseToken(data)
	if err != nil {
		return nil, &CredentialError{Permanent: true, Err: fmt.Errorf("token file %s is not a valid token: %w", s.cfg.TokenFile, err)}
	}
	return s.buildFromToken(ctx, token, s.cfg.TokenFile)
}

// buildFromToken refreshes a delegated token if needed and builds the
// client. Transient refresh failures are retried with exponential backoff;
// an expired or revoked refresh token fails fast, since the interactive
// OAuth flow cannot run in a server context.
func (s *SessionCache) buildFromToken(ctx context.Context, token *oauth2.Token, saveTo string) (*gcal.Service, error) {
	oauthCfg := &oauth2.Config{
		ClientID:     s.cfg.ClientID,
		ClientSecret: s.cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       sessionScopes,
	}

	source := oauthCfg.TokenSource(ctx, token)

	var fresh *oauth2.Token
	var err error
	delay := time.Second
	for attempt := 1; attempt <= refreshAttempts; attempt++ {
		fresh, err = source.Token()
		if err == nil {
			break
		}
		if isPermanentAuthError(err) {
			return nil, &CredentialError{Permanent: true, Err: err}
		}
		if attempt < refreshAttempts {
			s.log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", delay).Msg("token refresh failed, retrying")
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, &CredentialError{Err: ctx.Err()}
			}
			delay *= 2
		}
	}
	if err != nil {
		return nil, &CredentialError{Err: fmt.Errorf("token refresh failed after %d attempts: %w", refreshAttempts, err)}
	}

	if saveTo != "" && fresh.AccessToken != token.AccessToken {
		if err := saveToken(saveTo, fresh); err != nil {
			s.log.Warn().Err(err).Str("file", saveTo).Msg("failed to persist refreshed token")
		} else {
			s.log.Info().Str("file", saveTo).Msg("token refreshed")
		}
	}

	service, err := gcal.NewService(ctx, option.WithHTTPClient(oauthCfg.Client(ctx, fresh)))
	if err != nil {
		return nil, &CredentialError{Err: fmt.Errorf("failed to create calendar service: %w", err)}
	}
	return service, nil
}

func parseToken(data []byte) (*oauth2.Token, error) {
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, err
	}
	if token.AccessToken == "" && token.RefreshToken == "" {
		return nil, errors.New("token has no access or refresh token")
	}
	return &token, nil
}

func saveToken(filename string, token *oauth2.Token) error {
	data, err := json.Marshal(token)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0600)
}

// isPermanentAuthError reports whether a refresh failure means the token
// is definitively dead rather than the provider being flaky.
func isPermanentAuthError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "invalid_grant") ||
		strings.Contains(msg, "expired") ||
		strings.Contains(msg, "revoked")
}
