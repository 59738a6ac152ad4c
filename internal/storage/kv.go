// Package storage provides the key/value slots the privileged agent keeps.
//
// SQLite holds durable values (the stored credential, the installation id)
// and survives restarts. Memory holds session-scoped values such as the
// in-flight OAuth state and is gone when the process exits.
package storage

import "context"

// Keys used by the agent
const (
	KeyAuthToken      = "auth_token"
	KeyInstallationID = "installation_id"
	KeyOAuthState     = "oauth_state"
)

// KV is a string key/value store. Each operation is atomic.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
