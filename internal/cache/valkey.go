package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"
)

const revokedPrefix = "meetmap:revoked:"

// TokenRevoker stores revoked token IDs in Valkey so every instance of the
// server rejects them.
type TokenRevoker struct {
	client valkey.Client
}

func NewTokenRevoker(addr string) (*TokenRevoker, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("valkey connect: %w", err)
	}
	return &TokenRevoker{client: client}, nil
}

func (r *TokenRevoker) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if tokenID == "" || ttl <= 0 {
		return nil
	}
	cmd := r.client.B().Set().Key(revokedPrefix + tokenID).Value("1").Ex(wholeSeconds(ttl)).Build()
	if err := r.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("valkey revoke: %w", err)
	}
	return nil
}

// wholeSeconds rounds ttl up to a whole second; EX truncates and rejects 0.
func wholeSeconds(ttl time.Duration) time.Duration {
	if r := ttl % time.Second; r != 0 {
		ttl += time.Second - r
	}
	return ttl
}

func (r *TokenRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	cmd := r.client.B().Exists().Key(revokedPrefix + tokenID).Build()
	n, err := r.client.Do(ctx, cmd).AsInt64()
	if err != nil {
		return false, fmt.Errorf("valkey exists: %w", err)
	}
	return n > 0, nil
}

func (r *TokenRevoker) Close() {
	r.client.Close()
}
