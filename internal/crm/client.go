// Package crm wraps the CRM backend endpoints the router needs.
package crm

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"strconv"

	"github.com/GriffinCanCode/ChatRelay/backend/internal/gateway"
	"github.com/GriffinCanCode/ChatRelay/backend/internal/shared/types"
	"github.com/microcosm-cc/bluemonday"
)

// Backend endpoints
const (
	pathPersons      = "/api/v1/persons"
	pathPersonLookup = "/api/v1/persons/lookup"
	pathPersonSearch = "/api/v1/persons/search"
	pathNotes        = "/api/v1/notes"
	pathDeals        = "/api/v1/deals"
	pathFeedback     = "/api/v1/feedback"
	pathConfig       = "/api/v1/config"
	pathAuthInit     = "/api/v1/auth/init"
)

// Caller is the gateway surface the CRM client needs
type Caller interface {
	Call(ctx context.Context, endpoint string, opts gateway.Options, out interface{}) error
}

// Client calls CRM endpoints through the gateway
type Client struct {
	gw     Caller
	policy *bluemonday.Policy
}

// New creates a CRM client
func New(gw Caller) *Client {
	return &Client{gw: gw, policy: notePolicy()}
}

// LookupPerson finds a person by phone. No match is (nil, nil).
func (c *Client) LookupPerson(ctx context.Context, phone string) (*types.Person, error) {
	var p types.Person
	err := c.gw.Call(ctx, pathPersonLookup, gateway.Options{
		Query:    map[string]string{"phone": phone},
		Resource: "Person",
	}, &p)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SearchPersons finds people by name
func (c *Client) SearchPersons(ctx context.Context, query string) ([]types.Person, error) {
	var out []types.Person
	if err := c.gw.Call(ctx, pathPersonSearch, gateway.Options{
		Query: map[string]string{"q": query},
	}, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []types.Person{}
	}
	return out, nil
}

// CreatePerson creates a person
func (c *Client) CreatePerson(ctx context.Context, in types.PersonInput) (types.Person, error) {
	var p types.Person
	err := c.gw.Call(ctx, pathPersons, gateway.Options{Method: http.MethodPost, Body: in}, &p)
	return p, err
}

// AttachPhone adds a phone number to a person
func (c *Client) AttachPhone(ctx context.Context, personID int64, phone, label string) (types.Person, error) {
	var p types.Person
	err := c.gw.Call(ctx, pathPersons+"/"+strconv.FormatInt(personID, 10)+"/phones", gateway.Options{
		Method:   http.MethodPost,
		Body:     types.Phone{Value: phone, Label: label},
		Resource: "Person",
	}, &p)
	return p, err
}

// CreateNote stores messages as a sanitized HTML note
func (c *Client) CreateNote(ctx context.Context, personID, dealID int64, contactName string, msgs []types.Message) (types.Note, error) {
	in := types.Note{
		Content:  c.FormatNote(contactName, msgs),
		PersonID: personID,
		DealID:   dealID,
	}
	var n types.Note
	err := c.gw.Call(ctx, pathNotes, gateway.Options{Method: http.MethodPost, Body: in, Resource: "Person"}, &n)
	return n, err
}

// CreateDeal creates a deal
func (c *Client) CreateDeal(ctx context.Context, in types.DealInput) (types.Deal, error) {
	var d types.Deal
	err := c.gw.Call(ctx, pathDeals, gateway.Options{Method: http.MethodPost, Body: in}, &d)
	return d, err
}

// UpdateDeal patches a deal
func (c *Client) UpdateDeal(ctx context.Context, dealID int64, patch types.DealPatch) (types.Deal, error) {
	var d types.Deal
	err := c.gw.Call(ctx, pathDeals+"/"+strconv.FormatInt(dealID, 10), gateway.Options{
		Method:   http.MethodPatch,
		Body:     patch,
		Resource: "Deal",
	}, &d)
	return d, err
}

// SubmitFeedback sends user feedback. The message is HTML-escaped, never
// stripped.
func (c *Client) SubmitFeedback(ctx context.Context, fb types.Feedback) error {
	fb.Message = html.EscapeString(fb.Message)
	return c.gw.Call(ctx, pathFeedback, gateway.Options{Method: http.MethodPost, Body: fb}, nil)
}

// Config fetches the client configuration
func (c *Client) Config(ctx context.Context) (types.ClientConfig, error) {
	var cfg types.ClientConfig
	err := c.gw.Call(ctx, pathConfig, gateway.Options{}, &cfg)
	return cfg, err
}

// AuthURL asks the backend for an authorization URL bound to state. The
// call is anonymous.
func (c *Client) AuthURL(ctx context.Context, state string) (string, error) {
	var out struct {
		AuthURL string `json:"authUrl"`
	}
	if err := c.gw.Call(ctx, pathAuthInit, gateway.Options{
		Query:     map[string]string{"state": state},
		Anonymous: true,
	}, &out); err != nil {
		return "", err
	}
	if out.AuthURL == "" {
		return "", fmt.Errorf("backend returned no authorization url")
	}
	return out.AuthURL, nil
}

func isNotFound(err error) bool {
	var gerr *gateway.Error
	return errors.As(err, &gerr) && gerr.StatusCode == http.StatusNotFound
}
