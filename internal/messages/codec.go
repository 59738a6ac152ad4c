package messages

import (
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
)

var (
	// ErrUnknownType is returned for input with a missing or unrecognized tag
	ErrUnknownType = errors.New("unknown message type")

	// ErrMalformed is returned for a recognized tag with an unreadable body
	ErrMalformed = errors.New("malformed message")
)

// Tagged is any control message
type Tagged interface {
	Type() Type
}

type envelope struct {
	Type Type `json:"type"`
}

// Encode serializes m as a JSON object with its tag in the "type" field
func Encode(m Tagged) ([]byte, error) {
	body, err := sonic.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", m.Type(), err)
	}
	tag, err := sonic.Marshal(envelope{Type: m.Type()})
	if err != nil {
		return nil, err
	}
	if len(body) <= 2 {
		return tag, nil
	}
	// {"type":"X"} + ,"field":... }
	out := make([]byte, 0, len(tag)+len(body))
	out = append(out, tag[:len(tag)-1]...)
	out = append(out, ',')
	out = append(out, body[1:]...)
	return out, nil
}

// PeekType reads only the tag of a raw message
func PeekType(data []byte) (Type, error) {
	var env envelope
	if err := sonic.Unmarshal(data, &env); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnknownType, err)
	}
	if env.Type == "" {
		return "", ErrUnknownType
	}
	return env.Type, nil
}

// DecodeRequest parses a raw request. The returned Type is set whenever the
// tag was readable, even if the body was not.
func DecodeRequest(data []byte) (Type, Request, error) {
	t, err := PeekType(data)
	if err != nil {
		return "", nil, err
	}
	factory, ok := requestFactories[t]
	if !ok {
		return t, nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	req := factory()
	if err := sonic.Unmarshal(data, req); err != nil {
		return t, nil, fmt.Errorf("%w: %s: %v", ErrMalformed, t, err)
	}
	return t, req, nil
}

// DecodeResponse parses a raw response
func DecodeResponse(data []byte) (Response, error) {
	t, err := PeekType(data)
	if err != nil {
		return nil, err
	}
	if t == TypeUnknown {
		return &UnknownMessage{}, nil
	}

	kind, ok := t.Request()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}

	var resp Response
	if t == kind.Error() {
		resp = &ErrorResponse{Of: kind}
	} else {
		resp = successFactories[kind]()
	}
	if err := sonic.Unmarshal(data, resp); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, t, err)
	}
	return resp, nil
}
