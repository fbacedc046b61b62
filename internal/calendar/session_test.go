package calendar

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dental-clinic-server/internal/config"
)

func missingTokenConfig(t *testing.T) config.CalendarConfig {
	t.Helper()
	return config.CalendarConfig{
		TokenFile: filepath.Join(t.TempDir(), "missing-token.json"),
	}
}

func TestValidateWithoutCredentials(t *testing.T) {
	cache := NewSessionCache(missingTokenConfig(t), zerolog.Nop())

	err := cache.Validate(context.Background())
	var credErr *CredentialError
	require.ErrorAs(t, err, &credErr)
	assert.True(t, credErr.Permanent)

	// Validate never populates the cache.
	assert.Nil(t, cache.service)
}

func TestValidateConcurrentWithInvalidate(t *testing.T) {
	cache := NewSessionCache(missingTokenConfig(t), zerolog.Nop())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = cache.Validate(context.Background())
			cache.Invalidate()
		}()
	}
	wg.Wait()
}

func TestParseToken(t *testing.T) {
	_, err := parseToken([]byte("not json"))
	assert.Error(t, err)

	_, err = parseToken([]byte(`{}`))
	assert.Error(t, err)

	token, err := parseToken([]byte(`{"access_token":"at","refresh_token":"rt"}`))
	require.NoError(t, err)
	assert.Equal(t, "at", token.AccessToken)
	assert.Equal(t, "rt", token.RefreshToken)
}
