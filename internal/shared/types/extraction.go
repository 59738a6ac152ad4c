package types

// Event names on the bridge, relative to its namespace
const (
	ExtractRequestEvent  = "extract:request"
	ExtractResponseEvent = "extract:response"
)

// Failure codes carried by an ExtractionResponse
const (
	CodeNotReady     = "not_ready"
	CodeNoActiveChat = "no_active_chat"
	CodeTraversal    = "traversal_failed"
)

// ExtractionRequest asks the page world for the active conversation
type ExtractionRequest struct {
	Identifier  string `json:"identifier"`
	ContactName string `json:"contactName,omitempty"`
	UserName    string `json:"userName,omitempty"`
}

// ExtractionResponse answers one ExtractionRequest.
// Messages is set on success, Error on failure.
type ExtractionResponse struct {
	Identifier string    `json:"identifier"`
	Success    bool      `json:"success"`
	Messages   []Message `json:"messages,omitempty"`
	Chat       *Chat     `json:"chat,omitempty"`
	Error      string    `json:"error,omitempty"`
	Code       string    `json:"code,omitempty"`
}
