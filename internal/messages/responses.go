package messages

import "github.com/GriffinCanCode/ChatRelay/backend/internal/shared/types"

// PersonLookupSuccess carries the matching person, or nil when none exists
type PersonLookupSuccess struct {
	Person *types.Person `json:"person"`
}

type PersonSearchSuccess struct {
	Persons []types.Person `json:"persons"`
}

type PersonCreateSuccess struct {
	Person types.Person `json:"person"`
}

type PersonAttachPhoneSuccess struct {
	Person types.Person `json:"person"`
}

type NoteCreateSuccess struct {
	Note types.Note `json:"note"`
}

type DealCreateSuccess struct {
	Deal types.Deal `json:"deal"`
}

type DealUpdateSuccess struct {
	Deal types.Deal `json:"deal"`
}

type SignInStartSuccess struct {
	Authenticated bool `json:"authenticated"`
}

type SignOutSuccess struct{}

type AuthStatusSuccess struct {
	Authenticated bool `json:"authenticated"`
}

type FeedbackSubmitSuccess struct{}

type ConfigGetSuccess struct {
	Config types.ClientConfig `json:"config"`
}

type TabOpenSuccess struct{}

// ErrorResponse is the error variant of any request kind. Code narrows the
// failure where callers branch on it (user_cancelled, beta_access_required,
// security_validation_failed, invalid_request).
type ErrorResponse struct {
	Of         Type   `json:"-"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Code       string `json:"code,omitempty"`
}

// UnknownMessage answers input the router does not recognize
type UnknownMessage struct{}

// Error codes carried by ErrorResponse
const (
	CodeInvalidRequest     = "invalid_request"
	CodeUserCancelled      = "user_cancelled"
	CodeBetaAccessRequired = "beta_access_required"
	CodeSecurityValidation = "security_validation_failed"
	CodeSignInInProgress   = "sign_in_in_progress"
	CodeInternal           = "internal"
)

func (*PersonLookupSuccess) Type() Type      { return TypePersonLookup.Success() }
func (*PersonSearchSuccess) Type() Type      { return TypePersonSearch.Success() }
func (*PersonCreateSuccess) Type() Type      { return TypePersonCreate.Success() }
func (*PersonAttachPhoneSuccess) Type() Type { return TypePersonAttachPhone.Success() }
func (*NoteCreateSuccess) Type() Type        { return TypeNoteCreate.Success() }
func (*DealCreateSuccess) Type() Type        { return TypeDealCreate.Success() }
func (*DealUpdateSuccess) Type() Type        { return TypeDealUpdate.Success() }
func (*SignInStartSuccess) Type() Type       { return TypeSignInStart.Success() }
func (*SignOutSuccess) Type() Type           { return TypeSignOut.Success() }
func (*AuthStatusSuccess) Type() Type        { return TypeAuthStatus.Success() }
func (*FeedbackSubmitSuccess) Type() Type    { return TypeFeedbackSubmit.Success() }
func (*ConfigGetSuccess) Type() Type         { return TypeConfigGet.Success() }
func (*TabOpenSuccess) Type() Type           { return TypeTabOpen.Success() }
func (e *ErrorResponse) Type() Type          { return e.Of.Error() }
func (*UnknownMessage) Type() Type           { return TypeUnknown }

func (*PersonLookupSuccess) response()      {}
func (*PersonSearchSuccess) response()      {}
func (*PersonCreateSuccess) response()      {}
func (*PersonAttachPhoneSuccess) response() {}
func (*NoteCreateSuccess) response()        {}
func (*DealCreateSuccess) response()        {}
func (*DealUpdateSuccess) response()        {}
func (*SignInStartSuccess) response()       {}
func (*SignOutSuccess) response()           {}
func (*AuthStatusSuccess) response()        {}
func (*FeedbackSubmitSuccess) response()    {}
func (*ConfigGetSuccess) response()         {}
func (*TabOpenSuccess) response()           {}
func (*ErrorResponse) response()            {}
func (*UnknownMessage) response()           {}

// Error makes an ErrorResponse usable as a Go error on the caller side
func (e *ErrorResponse) Error() string {
	return e.Message
}

// Failed builds the error response for a request kind
func Failed(of Type, statusCode int, message, code string) *ErrorResponse {
	return &ErrorResponse{Of: of, StatusCode: statusCode, Message: message, Code: code}
}
