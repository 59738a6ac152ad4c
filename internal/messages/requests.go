package messages

import (
	"errors"
	"net/url"
	"strings"

	"github.com/GriffinCanCode/ChatRelay/backend/internal/shared/types"
)

// PersonLookup finds a person by phone number
type PersonLookup struct {
	Phone string `json:"phone"`
}

// PersonSearch finds people by name
type PersonSearch struct {
	Query string `json:"query"`
}

// PersonCreate creates a person
type PersonCreate struct {
	Person types.PersonInput `json:"person"`
}

// PersonAttachPhone adds a phone number to an existing person
type PersonAttachPhone struct {
	PersonID int64  `json:"personId"`
	Phone    string `json:"phone"`
	Label    string `json:"label,omitempty"`
}

// NoteCreate stores selected chat messages as a note
type NoteCreate struct {
	PersonID    int64           `json:"personId"`
	DealID      int64           `json:"dealId,omitempty"`
	ContactName string          `json:"contactName,omitempty"`
	Messages    []types.Message `json:"messages"`
}

// DealCreate creates a deal
type DealCreate struct {
	Deal types.DealInput `json:"deal"`
}

// DealUpdate patches a deal
type DealUpdate struct {
	DealID int64           `json:"dealId"`
	Patch  types.DealPatch `json:"patch"`
}

// SignInStart hands the authorization URL and serialized state to the router
type SignInStart struct {
	AuthURL string `json:"authUrl"`
	State   string `json:"state"`
}

// SignOut deletes the stored credential
type SignOut struct{}

// AuthStatus reports whether a credential is stored
type AuthStatus struct{}

// FeedbackSubmit sends user feedback
type FeedbackSubmit struct {
	Feedback types.Feedback `json:"feedback"`
}

// ConfigGet fetches the client configuration
type ConfigGet struct{}

// TabOpen opens a user-facing tab
type TabOpen struct {
	URL string `json:"url"`
}

func (*PersonLookup) Type() Type      { return TypePersonLookup }
func (*PersonSearch) Type() Type      { return TypePersonSearch }
func (*PersonCreate) Type() Type      { return TypePersonCreate }
func (*PersonAttachPhone) Type() Type { return TypePersonAttachPhone }
func (*NoteCreate) Type() Type        { return TypeNoteCreate }
func (*DealCreate) Type() Type        { return TypeDealCreate }
func (*DealUpdate) Type() Type        { return TypeDealUpdate }
func (*SignInStart) Type() Type       { return TypeSignInStart }
func (*SignOut) Type() Type           { return TypeSignOut }
func (*AuthStatus) Type() Type        { return TypeAuthStatus }
func (*FeedbackSubmit) Type() Type    { return TypeFeedbackSubmit }
func (*ConfigGet) Type() Type         { return TypeConfigGet }
func (*TabOpen) Type() Type           { return TypeTabOpen }

func (*PersonLookup) request()      {}
func (*PersonSearch) request()      {}
func (*PersonCreate) request()      {}
func (*PersonAttachPhone) request() {}
func (*NoteCreate) request()        {}
func (*DealCreate) request()        {}
func (*DealUpdate) request()        {}
func (*SignInStart) request()       {}
func (*SignOut) request()           {}
func (*AuthStatus) request()        {}
func (*FeedbackSubmit) request()    {}
func (*ConfigGet) request()         {}
func (*TabOpen) request()           {}

func (m *PersonLookup) Validate() error {
	if strings.TrimSpace(m.Phone) == "" {
		return errors.New("phone is required")
	}
	return nil
}

func (m *PersonSearch) Validate() error {
	if strings.TrimSpace(m.Query) == "" {
		return errors.New("query is required")
	}
	return nil
}

func (m *PersonCreate) Validate() error {
	if strings.TrimSpace(m.Person.Name) == "" {
		return errors.New("name is required")
	}
	return nil
}

func (m *PersonAttachPhone) Validate() error {
	if m.PersonID <= 0 {
		return errors.New("personId is required")
	}
	if strings.TrimSpace(m.Phone) == "" {
		return errors.New("phone is required")
	}
	return nil
}

func (m *NoteCreate) Validate() error {
	if m.PersonID <= 0 {
		return errors.New("personId is required")
	}
	if len(m.Messages) == 0 {
		return errors.New("no messages selected")
	}
	return nil
}

func (m *DealCreate) Validate() error {
	if strings.TrimSpace(m.Deal.Title) == "" {
		return errors.New("title is required")
	}
	if m.Deal.PersonID <= 0 {
		return errors.New("personId is required")
	}
	return nil
}

func (m *DealUpdate) Validate() error {
	if m.DealID <= 0 {
		return errors.New("dealId is required")
	}
	return nil
}

func (m *SignInStart) Validate() error {
	if m.State == "" {
		return errors.New("state is required")
	}
	return validURL(m.AuthURL)
}

func (m *FeedbackSubmit) Validate() error {
	if strings.TrimSpace(m.Feedback.Message) == "" {
		return errors.New("message is required")
	}
	return nil
}

func (m *TabOpen) Validate() error {
	return validURL(m.URL)
}

func validURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "https" && u.Scheme != "http") {
		return errors.New("a valid http(s) url is required")
	}
	return nil
}
