// Package id generates the identifiers that cross context boundaries.
//
// Every id is a ULID: a millisecond timestamp followed by 80 bits of
// entropy, so ids sort by issuance time and collide only with negligible
// probability. A short prefix names the kind of id in logs (ext_*, msg_*).
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// CorrelationID matches an extraction request to its response
type CorrelationID string

// EnvelopeID matches a runtime message to its reply
type EnvelopeID string

// ConnectionID identifies one runtime channel connection
type ConnectionID string

const (
	CorrelationPrefix = "ext"
	EnvelopePrefix    = "msg"
	ConnectionPrefix  = "conn"
	TracePrefix       = "trace"
	SpanPrefix        = "span"
)

// Generator generates ULIDs with optional prefixes
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton generator instance
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator backed by crypto/rand
func NewGenerator() *Generator {
	return &Generator{entropy: rand.Reader}
}

// NewGeneratorWithEntropy creates a generator with a custom entropy source.
// Tests use it for deterministic output.
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{entropy: entropy}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateString creates a new ULID as a string
func (g *Generator) GenerateString() string {
	return g.Generate().String()
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.GenerateString())
}

// NewCorrelationID generates a new extraction correlation id
func NewCorrelationID() CorrelationID {
	return CorrelationID(Default().GenerateWithPrefix(CorrelationPrefix))
}

// NewEnvelopeID generates a new runtime envelope id
func NewEnvelopeID() EnvelopeID {
	return EnvelopeID(Default().GenerateWithPrefix(EnvelopePrefix))
}

// NewConnectionID generates a new connection id
func NewConnectionID() ConnectionID {
	return ConnectionID(Default().GenerateWithPrefix(ConnectionPrefix))
}

// NewTraceID generates a new trace id
func NewTraceID() string {
	return Default().GenerateWithPrefix(TracePrefix)
}

// NewSpanID generates a new span id
func NewSpanID() string {
	return Default().GenerateWithPrefix(SpanPrefix)
}

// Parse extracts the ULID from a plain or prefixed id
func Parse(s string) (ulid.ULID, error) {
	if i := strings.LastIndexByte(s, '_'); i >= 0 {
		s = s[i+1:]
	}
	return ulid.Parse(s)
}

// Timestamp returns the issuance time embedded in an id
func Timestamp(s string) (time.Time, error) {
	u, err := Parse(s)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(u.Time()), nil
}

func (c CorrelationID) String() string { return string(c) }
func (e EnvelopeID) String() string    { return string(e) }
func (c ConnectionID) String() string  { return string(c) }
