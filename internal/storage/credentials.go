package storage

import (
	"context"

	"github.com/google/uuid"
)

// Credentials exposes the durable slots the agent cares about
type Credentials struct {
	kv KV
}

// NewCredentials wraps a durable KV
func NewCredentials(kv KV) *Credentials {
	return &Credentials{kv: kv}
}

// Token returns the stored credential, or "" when none is stored
func (c *Credentials) Token(ctx context.Context) (string, error) {
	token, _, err := c.kv.Get(ctx, KeyAuthToken)
	return token, err
}

// SetToken replaces the stored credential
func (c *Credentials) SetToken(ctx context.Context, token string) error {
	return c.kv.Set(ctx, KeyAuthToken, token)
}

// ClearToken deletes the stored credential
func (c *Credentials) ClearToken(ctx context.Context) error {
	return c.kv.Delete(ctx, KeyAuthToken)
}

// InstallationID returns the persisted installation id, creating it on first use
func (c *Credentials) InstallationID(ctx context.Context) (string, error) {
	v, ok, err := c.kv.Get(ctx, KeyInstallationID)
	if err != nil {
		return "", err
	}
	if ok && v != "" {
		return v, nil
	}
	v = uuid.NewString()
	if err := c.kv.Set(ctx, KeyInstallationID, v); err != nil {
		return "", err
	}
	return v, nil
}
