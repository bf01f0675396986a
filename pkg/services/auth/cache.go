package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/de-tools/cloud-monitor/pkg/models/domain"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// ExpiryBuffer is subtracted from the advertised lifetime so a cached token is
// never presented close to its server-side invalidation.
const ExpiryBuffer = 5 * time.Minute

// ExchangeTimeout bounds a shared exchange, which outlives any single caller.
const ExchangeTimeout = 30 * time.Second

// CredentialCache hands out a bearer token for a single provider.
type CredentialCache interface {
	Get(ctx context.Context) (string, error)
	Refresh(ctx context.Context) (string, error)
}

// TokenCache is a single-entry cache in front of an Exchanger. It also
// satisfies azcore.TokenCredential so SDK pipelines share the same entry.
type TokenCache struct {
	provider  domain.ProviderID
	exchanger Exchanger
	clock     clockwork.Clock

	mu        sync.RWMutex
	token     string
	expiresAt time.Time

	group singleflight.Group
}

type Option func(*TokenCache)

func WithClock(clock clockwork.Clock) Option {
	return func(c *TokenCache) { c.clock = clock }
}

func NewTokenCache(provider domain.ProviderID, exchanger Exchanger, opts ...Option) *TokenCache {
	c := &TokenCache{
		provider:  provider,
		exchanger: exchanger,
		clock:     clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *TokenCache) Get(ctx context.Context) (string, error) {
	if token, ok := c.cached(); ok {
		return token, nil
	}
	return c.Refresh(ctx)
}

// Refresh returns the cached token while it is still valid and otherwise
// exchanges credentials for a new one. Concurrent callers share one exchange,
// which is detached from their contexts: a caller that gives up only stops
// waiting.
func (c *TokenCache) Refresh(ctx context.Context) (string, error) {
	ch := c.group.DoChan("token", func() (interface{}, error) {
		// another caller may have refreshed while we waited on the group
		if token, ok := c.cached(); ok {
			return token, nil
		}
		xctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ExchangeTimeout)
		defer cancel()
		return c.exchange(xctx)
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// ExpiresAt returns the buffered expiry of the cached token, zero if none.
func (c *TokenCache) ExpiresAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.expiresAt
}

// GetToken implements azcore.TokenCredential. Scopes are ignored: the cache
// holds a management-plane token only.
func (c *TokenCache) GetToken(ctx context.Context, _ policy.TokenRequestOptions) (azcore.AccessToken, error) {
	token, err := c.Get(ctx)
	if err != nil {
		return azcore.AccessToken{}, err
	}
	return azcore.AccessToken{Token: token, ExpiresOn: c.ExpiresAt()}, nil
}

func (c *TokenCache) cached() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.token == "" || !c.clock.Now().Before(c.expiresAt) {
		return "", false
	}
	return c.token, true
}

func (c *TokenCache) exchange(ctx context.Context) (string, error) {
	logger := zerolog.Ctx(ctx)

	tok, err := c.exchanger.Exchange(ctx)
	if err == nil && tok.Value == "" {
		err = errors.New("identity provider returned an empty access token")
	}
	if err != nil {
		logger.Error().Err(err).Str("provider", string(c.provider)).Msg("token exchange failed")
		return "", &domain.AuthError{Provider: c.provider, Err: err}
	}

	c.mu.Lock()
	c.token = tok.Value
	c.expiresAt = tok.ExpiresOn.Add(-ExpiryBuffer)
	c.mu.Unlock()

	logger.Debug().
		Str("provider", string(c.provider)).
		Time("expires_at", tok.ExpiresOn.Add(-ExpiryBuffer)).
		Msg("token refreshed")

	return tok.Value, nil
}
