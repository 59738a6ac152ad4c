package background

import (
	"context"
	"fmt"

	"github.com/GriffinCanCode/ChatRelay/backend/internal/messages"
	"github.com/GriffinCanCode/ChatRelay/backend/internal/shared/types"
	"go.uber.org/zap"
)

// CRM is the backend surface the handlers use
type CRM interface {
	LookupPerson(ctx context.Context, phone string) (*types.Person, error)
	SearchPersons(ctx context.Context, query string) ([]types.Person, error)
	CreatePerson(ctx context.Context, in types.PersonInput) (types.Person, error)
	AttachPhone(ctx context.Context, personID int64, phone, label string) (types.Person, error)
	CreateNote(ctx context.Context, personID, dealID int64, contactName string, msgs []types.Message) (types.Note, error)
	CreateDeal(ctx context.Context, in types.DealInput) (types.Deal, error)
	UpdateDeal(ctx context.Context, dealID int64, patch types.DealPatch) (types.Deal, error)
	SubmitFeedback(ctx context.Context, fb types.Feedback) error
	Config(ctx context.Context) (types.ClientConfig, error)
}

// TabOpener opens a user-facing tab
type TabOpener interface {
	OpenTab(ctx context.Context, url string) error
}

// HandlerFunc handles one decoded request
type HandlerFunc func(ctx context.Context, req messages.Request) (messages.Response, error)

// Handlers implements every request kind
type Handlers struct {
	crm     CRM
	session *Session
	tabs    TabOpener
	logger  *zap.Logger
}

// NewHandlers creates the handler set
func NewHandlers(crm CRM, session *Session, tabs TabOpener, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{crm: crm, session: session, tabs: tabs, logger: logger}
}

// Table returns the handler for each request kind
func (h *Handlers) Table() map[messages.Type]HandlerFunc {
	return map[messages.Type]HandlerFunc{
		messages.TypePersonLookup:      typed(h.personLookup),
		messages.TypePersonSearch:      typed(h.personSearch),
		messages.TypePersonCreate:      typed(h.personCreate),
		messages.TypePersonAttachPhone: typed(h.personAttachPhone),
		messages.TypeNoteCreate:        typed(h.noteCreate),
		messages.TypeDealCreate:        typed(h.dealCreate),
		messages.TypeDealUpdate:        typed(h.dealUpdate),
		messages.TypeSignInStart:       typed(h.signInStart),
		messages.TypeSignOut:           typed(h.signOut),
		messages.TypeAuthStatus:        typed(h.authStatus),
		messages.TypeFeedbackSubmit:    typed(h.feedbackSubmit),
		messages.TypeConfigGet:         typed(h.configGet),
		messages.TypeTabOpen:           typed(h.tabOpen),
	}
}

// typed adapts a handler for one concrete request type
func typed[R messages.Request](fn func(context.Context, R) (messages.Response, error)) HandlerFunc {
	return func(ctx context.Context, req messages.Request) (messages.Response, error) {
		r, ok := req.(R)
		if !ok {
			return nil, fmt.Errorf("handler received %T", req)
		}
		return fn(ctx, r)
	}
}

func (h *Handlers) personLookup(ctx context.Context, m *messages.PersonLookup) (messages.Response, error) {
	p, err := h.crm.LookupPerson(ctx, m.Phone)
	if err != nil {
		return nil, err
	}
	return &messages.PersonLookupSuccess{Person: p}, nil
}

func (h *Handlers) personSearch(ctx context.Context, m *messages.PersonSearch) (messages.Response, error) {
	people, err := h.crm.SearchPersons(ctx, m.Query)
	if err != nil {
		return nil, err
	}
	return &messages.PersonSearchSuccess{Persons: people}, nil
}

func (h *Handlers) personCreate(ctx context.Context, m *messages.PersonCreate) (messages.Response, error) {
	p, err := h.crm.CreatePerson(ctx, m.Person)
	if err != nil {
		return nil, err
	}
	return &messages.PersonCreateSuccess{Person: p}, nil
}

func (h *Handlers) personAttachPhone(ctx context.Context, m *messages.PersonAttachPhone) (messages.Response, error) {
	p, err := h.crm.AttachPhone(ctx, m.PersonID, m.Phone, m.Label)
	if err != nil {
		return nil, err
	}
	return &messages.PersonAttachPhoneSuccess{Person: p}, nil
}

func (h *Handlers) noteCreate(ctx context.Context, m *messages.NoteCreate) (messages.Response, error) {
	n, err := h.crm.CreateNote(ctx, m.PersonID, m.DealID, m.ContactName, m.Messages)
	if err != nil {
		return nil, err
	}
	return &messages.NoteCreateSuccess{Note: n}, nil
}

func (h *Handlers) dealCreate(ctx context.Context, m *messages.DealCreate) (messages.Response, error) {
	d, err := h.crm.CreateDeal(ctx, m.Deal)
	if err != nil {
		return nil, err
	}
	return &messages.DealCreateSuccess{Deal: d}, nil
}

func (h *Handlers) dealUpdate(ctx context.Context, m *messages.DealUpdate) (messages.Response, error) {
	d, err := h.crm.UpdateDeal(ctx, m.DealID, m.Patch)
	if err != nil {
		return nil, err
	}
	return &messages.DealUpdateSuccess{Deal: d}, nil
}

func (h *Handlers) signInStart(ctx context.Context, m *messages.SignInStart) (messages.Response, error) {
	if err := h.session.SignIn(ctx, m.AuthURL, m.State); err != nil {
		return nil, err
	}
	return &messages.SignInStartSuccess{Authenticated: true}, nil
}

func (h *Handlers) signOut(ctx context.Context, _ *messages.SignOut) (messages.Response, error) {
	if err := h.session.SignOut(ctx); err != nil {
		return nil, err
	}
	h.logger.Info("signed out")
	return &messages.SignOutSuccess{}, nil
}

func (h *Handlers) authStatus(ctx context.Context, _ *messages.AuthStatus) (messages.Response, error) {
	return &messages.AuthStatusSuccess{Authenticated: h.session.Authenticated(ctx)}, nil
}

func (h *Handlers) feedbackSubmit(ctx context.Context, m *messages.FeedbackSubmit) (messages.Response, error) {
	if err := h.crm.SubmitFeedback(ctx, m.Feedback); err != nil {
		return nil, err
	}
	return &messages.FeedbackSubmitSuccess{}, nil
}

func (h *Handlers) configGet(ctx context.Context, _ *messages.ConfigGet) (messages.Response, error) {
	cfg, err := h.crm.Config(ctx)
	if err != nil {
		return nil, err
	}
	return &messages.ConfigGetSuccess{Config: cfg}, nil
}

func (h *Handlers) tabOpen(ctx context.Context, m *messages.TabOpen) (messages.Response, error) {
	if err := h.tabs.OpenTab(ctx, m.URL); err != nil {
		return nil, err
	}
	return &messages.TabOpenSuccess{}, nil
}
