package messages

import "strings"

// Type is the wire discriminant of a control message
type Type string

// Request kinds
const (
	TypePersonLookup      Type = "PERSON_LOOKUP"
	TypePersonSearch      Type = "PERSON_SEARCH"
	TypePersonCreate      Type = "PERSON_CREATE"
	TypePersonAttachPhone Type = "PERSON_ATTACH_PHONE"
	TypeNoteCreate        Type = "NOTE_CREATE"
	TypeDealCreate        Type = "DEAL_CREATE"
	TypeDealUpdate        Type = "DEAL_UPDATE"
	TypeSignInStart       Type = "SIGN_IN_START"
	TypeSignOut           Type = "SIGN_OUT"
	TypeAuthStatus        Type = "AUTH_STATUS"
	TypeFeedbackSubmit    Type = "FEEDBACK_SUBMIT"
	TypeConfigGet         Type = "CONFIG_GET"
	TypeTabOpen           Type = "TAB_OPEN"
)

// TypeUnknown answers untagged or unrecognized input
const TypeUnknown Type = "UNKNOWN_MESSAGE"

const (
	successSuffix = "_SUCCESS"
	errorSuffix   = "_ERROR"
)

// Success returns the success response tag for a request kind
func (t Type) Success() Type { return t + successSuffix }

// Error returns the error response tag for a request kind
func (t Type) Error() Type { return t + errorSuffix }

// Known reports whether t is a request kind
func (t Type) Known() bool {
	_, ok := requestFactories[t]
	return ok
}

// Request returns the request kind a response tag answers
func (t Type) Request() (Type, bool) {
	s := string(t)
	switch {
	case strings.HasSuffix(s, successSuffix):
		k := Type(strings.TrimSuffix(s, successSuffix))
		return k, k.Known()
	case strings.HasSuffix(s, errorSuffix):
		k := Type(strings.TrimSuffix(s, errorSuffix))
		return k, k.Known()
	}
	return "", false
}

// Request is a control message sent to the router
type Request interface {
	Type() Type
	request()
}

// Response is the router's reply to one request
type Response interface {
	Type() Type
	response()
}

// Validator is implemented by requests with required fields
type Validator interface {
	Validate() error
}

// RequestTypes returns every request kind in declaration order
func RequestTypes() []Type {
	out := make([]Type, len(requestOrder))
	copy(out, requestOrder)
	return out
}

var requestOrder = []Type{
	TypePersonLookup,
	TypePersonSearch,
	TypePersonCreate,
	TypePersonAttachPhone,
	TypeNoteCreate,
	TypeDealCreate,
	TypeDealUpdate,
	TypeSignInStart,
	TypeSignOut,
	TypeAuthStatus,
	TypeFeedbackSubmit,
	TypeConfigGet,
	TypeTabOpen,
}

var requestFactories = map[Type]func() Request{
	TypePersonLookup:      func() Request { return &PersonLookup{} },
	TypePersonSearch:      func() Request { return &PersonSearch{} },
	TypePersonCreate:      func() Request { return &PersonCreate{} },
	TypePersonAttachPhone: func() Request { return &PersonAttachPhone{} },
	TypeNoteCreate:        func() Request { return &NoteCreate{} },
	TypeDealCreate:        func() Request { return &DealCreate{} },
	TypeDealUpdate:        func() Request { return &DealUpdate{} },
	TypeSignInStart:       func() Request { return &SignInStart{} },
	TypeSignOut:           func() Request { return &SignOut{} },
	TypeAuthStatus:        func() Request { return &AuthStatus{} },
	TypeFeedbackSubmit:    func() Request { return &FeedbackSubmit{} },
	TypeConfigGet:         func() Request { return &ConfigGet{} },
	TypeTabOpen:           func() Request { return &TabOpen{} },
}

var successFactories = map[Type]func() Response{
	TypePersonLookup:      func() Response { return &PersonLookupSuccess{} },
	TypePersonSearch:      func() Response { return &PersonSearchSuccess{} },
	TypePersonCreate:      func() Response { return &PersonCreateSuccess{} },
	TypePersonAttachPhone: func() Response { return &PersonAttachPhoneSuccess{} },
	TypeNoteCreate:        func() Response { return &NoteCreateSuccess{} },
	TypeDealCreate:        func() Response { return &DealCreateSuccess{} },
	TypeDealUpdate:        func() Response { return &DealUpdateSuccess{} },
	TypeSignInStart:       func() Response { return &SignInStartSuccess{} },
	TypeSignOut:           func() Response { return &SignOutSuccess{} },
	TypeAuthStatus:        func() Response { return &AuthStatusSuccess{} },
	TypeFeedbackSubmit:    func() Response { return &FeedbackSubmitSuccess{} },
	TypeConfigGet:         func() Response { return &ConfigGetSuccess{} },
	TypeTabOpen:           func() Response { return &TabOpenSuccess{} },
}
