package oauth

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
)

// State is the CSRF token passed opaquely through the backend
type State struct {
	ExtensionID string `json:"extensionId"`
	Nonce       string `json:"nonce"`
	Timestamp   int64  `json:"timestamp"` // unix milliseconds
}

// NewState creates a state with a fresh 256-bit nonce
func NewState(extensionID string) State {
	return State{
		ExtensionID: extensionID,
		Nonce:       generateNonce(),
		Timestamp:   time.Now().UnixMilli(),
	}
}

// Encode serializes the state as base64 of its JSON form
func (s State) Encode() (string, error) {
	raw, err := sonic.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encode state: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// DecodeState parses an encoded state
func DecodeState(encoded string) (State, error) {
	var s State
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return s, fmt.Errorf("decode state: %w", err)
	}
	if err := sonic.Unmarshal(raw, &s); err != nil {
		return s, fmt.Errorf("decode state: %w", err)
	}
	if s.Nonce == "" {
		return s, fmt.Errorf("decode state: missing nonce")
	}
	return s, nil
}

// IssuedAt returns the issuance time
func (s State) IssuedAt() time.Time {
	return time.UnixMilli(s.Timestamp)
}

func generateNonce() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		// never fall back to weak randomness
		panic(fmt.Sprintf("crypto/rand failed: %v - cannot generate nonce", err))
	}
	return hex.EncodeToString(b)
}
