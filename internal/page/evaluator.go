package page

import (
	"context"
	_ "embed"
)

// Walker is the function expression that reads the host object graph and
// returns a JSON snapshot string.
//
//go:embed walker.js
var Walker string

// Evaluator calls a JavaScript function expression with no arguments inside
// a page and returns its string result.
type Evaluator interface {
	Evaluate(ctx context.Context, fn string) (string, error)
}
