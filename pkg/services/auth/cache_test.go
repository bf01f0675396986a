package auth

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/de-tools/cloud-monitor/pkg/models/domain"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingExchanger struct {
	clock   clockwork.Clock
	ttl     time.Duration
	calls   atomic.Int32
	err     error
	release chan struct{}
}

func (e *countingExchanger) Exchange(ctx context.Context) (Token, error) {
	n := e.calls.Add(1)
	if e.release != nil {
		select {
		case <-e.release:
		case <-ctx.Done():
			return Token{}, ctx.Err()
		}
	}
	if e.err != nil {
		return Token{}, e.err
	}
	return Token{
		Value:     "token-" + string(rune('0'+n)),
		ExpiresOn: e.clock.Now().Add(e.ttl),
	}, nil
}

var epoch = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestTokenCache_ReusesTokenWithinBufferedLifetime(t *testing.T) {
	clock := clockwork.NewFakeClockAt(epoch)
	exch := &countingExchanger{clock: clock, ttl: time.Hour}
	cache := NewTokenCache(domain.ProviderAzure, exch, WithClock(clock))

	first, err := cache.Get(context.Background())
	require.NoError(t, err)

	clock.Advance(54 * time.Minute)
	second, err := cache.Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, exch.calls.Load())
	assert.Equal(t, epoch.Add(time.Hour-ExpiryBuffer), cache.ExpiresAt())
}

func TestTokenCache_RefetchesExactlyOnceAfterExpiry(t *testing.T) {
	clock := clockwork.NewFakeClockAt(epoch)
	exch := &countingExchanger{clock: clock, ttl: time.Hour}
	cache := NewTokenCache(domain.ProviderAzure, exch, WithClock(clock))

	first, err := cache.Get(context.Background())
	require.NoError(t, err)

	// now == expiresAt counts as expired
	clock.Advance(time.Hour - ExpiryBuffer)
	second, err := cache.Get(context.Background())
	require.NoError(t, err)
	third, err := cache.Get(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, second, third)
	assert.EqualValues(t, 2, exch.calls.Load())
}

func TestTokenCache_NeverServesTokenPastRealExpiry(t *testing.T) {
	clock := clockwork.NewFakeClockAt(epoch)
	exch := &countingExchanger{clock: clock, ttl: time.Hour}
	cache := NewTokenCache(domain.ProviderAzure, exch, WithClock(clock))

	for i := 0; i < 30; i++ {
		_, err := cache.Get(context.Background())
		require.NoError(t, err)
		assert.True(t, clock.Now().Before(cache.ExpiresAt()), "iteration %d", i)
		assert.True(t, cache.ExpiresAt().Before(clock.Now().Add(time.Hour)))
		clock.Advance(7 * time.Minute)
	}
}

func TestTokenCache_ConcurrentExpiredCallersShareOneExchange(t *testing.T) {
	clock := clockwork.NewFakeClockAt(epoch)
	exch := &countingExchanger{clock: clock, ttl: time.Hour, release: make(chan struct{})}
	cache := NewTokenCache(domain.ProviderAzure, exch, WithClock(clock))

	const callers = 16
	var wg sync.WaitGroup
	tokens := make([]string, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tokens[i], errs[i] = cache.Get(context.Background())
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	close(exch.release)
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, tokens[0], tokens[i])
	}
	assert.EqualValues(t, 1, exch.calls.Load())
}

func TestTokenCache_WaiterSurvivesCancelledLeader(t *testing.T) {
	clock := clockwork.NewFakeClockAt(epoch)
	exch := &countingExchanger{clock: clock, ttl: time.Hour, release: make(chan struct{})}
	cache := NewTokenCache(domain.ProviderAzure, exch, WithClock(clock))

	leaderCtx, cancel := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() {
		_, err := cache.Get(leaderCtx)
		leaderErr <- err
	}()
	require.Eventually(t, func() bool { return exch.calls.Load() == 1 }, time.Second, time.Millisecond)

	type result struct {
		token string
		err   error
	}
	waiter := make(chan result, 1)
	go func() {
		token, err := cache.Get(context.Background())
		waiter <- result{token, err}
	}()

	// the leader gives up while its exchange is still in flight
	cancel()
	require.ErrorIs(t, <-leaderErr, context.Canceled)

	close(exch.release)
	got := <-waiter
	require.NoError(t, got.err)
	assert.Equal(t, "token-1", got.token)
	assert.EqualValues(t, 1, exch.calls.Load())
}

func TestTokenCache_ExchangeFailureIsAuthError(t *testing.T) {
	clock := clockwork.NewFakeClockAt(epoch)
	exch := &countingExchanger{clock: clock, ttl: time.Hour, err: errors.New("invalid_client")}
	cache := NewTokenCache(domain.ProviderAzure, exch, WithClock(clock))

	_, err := cache.Get(context.Background())

	var authErr *domain.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, domain.ProviderAzure, authErr.Provider)
	assert.ErrorContains(t, err, "invalid_client")

	// failures are not cached
	_, _ = cache.Get(context.Background())
	assert.EqualValues(t, 2, exch.calls.Load())
}

func TestTokenCache_GetTokenSatisfiesAzureCredential(t *testing.T) {
	clock := clockwork.NewFakeClockAt(epoch)
	exch := &countingExchanger{clock: clock, ttl: time.Hour}
	cache := NewTokenCache(domain.ProviderAzure, exch, WithClock(clock))

	tok, err := cache.GetToken(context.Background(), policy.TokenRequestOptions{Scopes: []string{ManagementScope}})

	require.NoError(t, err)
	assert.Equal(t, "token-1", tok.Token)
	assert.Equal(t, epoch.Add(55*time.Minute), tok.ExpiresOn)
}

func TestTokenCache_RefreshKeepsValidToken(t *testing.T) {
	clock := clockwork.NewFakeClockAt(epoch)
	exch := &countingExchanger{clock: clock, ttl: time.Hour}
	cache := NewTokenCache(domain.ProviderAzure, exch, WithClock(clock))

	_, err := cache.Get(context.Background())
	require.NoError(t, err)

	// Refresh short-circuits to the cached entry while it is still valid
	tok, err := cache.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-1", tok)
	assert.EqualValues(t, 1, exch.calls.Load())
}
