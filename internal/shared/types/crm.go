package types

// Phone is a number attached to a person
type Phone struct {
	Value   string `json:"value"`
	Label   string `json:"label,omitempty"`
	Primary bool   `json:"primary,omitempty"`
}

// Person is a CRM contact
type Person struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Email          string  `json:"email,omitempty"`
	OrganizationID int64   `json:"organizationId,omitempty"`
	Phones         []Phone `json:"phones,omitempty"`
}

// PersonInput creates a person
type PersonInput struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// Note is a CRM note attached to a person and optionally a deal
type Note struct {
	ID       int64  `json:"id"`
	Content  string `json:"content"`
	PersonID int64  `json:"personId,omitempty"`
	DealID   int64  `json:"dealId,omitempty"`
}

// Deal is a CRM deal
type Deal struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	Value    float64 `json:"value,omitempty"`
	Currency string  `json:"currency,omitempty"`
	PersonID int64   `json:"personId,omitempty"`
	StageID  int64   `json:"stageId,omitempty"`
	Status   string  `json:"status,omitempty"`
}

// DealInput creates a deal
type DealInput struct {
	Title    string  `json:"title"`
	Value    float64 `json:"value,omitempty"`
	Currency string  `json:"currency,omitempty"`
	PersonID int64   `json:"personId"`
	StageID  int64   `json:"stageId,omitempty"`
}

// DealPatch updates a deal; nil fields are left untouched
type DealPatch struct {
	Title   *string  `json:"title,omitempty"`
	Value   *float64 `json:"value,omitempty"`
	StageID *int64   `json:"stageId,omitempty"`
	Status  *string  `json:"status,omitempty"`
}

// Feedback is a user feedback submission
type Feedback struct {
	Message  string `json:"message"`
	Category string `json:"category,omitempty"`
	Version  string `json:"version,omitempty"`
}

// Stage is one pipeline stage offered for new deals
type Stage struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	PipelineID int64  `json:"pipelineId"`
}

// ClientConfig is the backend-provided client configuration
type ClientConfig struct {
	Currency string          `json:"currency,omitempty"`
	Stages   []Stage         `json:"stages,omitempty"`
	Features map[string]bool `json:"features,omitempty"`
}
