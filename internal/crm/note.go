package crm

import (
	"html"
	"strings"
	"time"

	"github.com/GriffinCanCode/ChatRelay/backend/internal/shared/types"
	"github.com/microcosm-cc/bluemonday"
)

const noteTimeLayout = "2006-01-02 15:04"

func notePolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "strong", "em", "br")
	return p
}

// FormatNote renders messages as note HTML. Message text, sender and
// contact names are escaped, so the only markup in the result is what
// FormatNote adds.
func (c *Client) FormatNote(contactName string, msgs []types.Message) string {
	var b strings.Builder
	if contactName != "" {
		b.WriteString("<p><strong>Conversation with ")
		b.WriteString(html.EscapeString(contactName))
		b.WriteString("</strong></p>")
	}
	for _, m := range msgs {
		ts := time.Unix(m.Timestamp, 0).UTC().Format(noteTimeLayout)
		text := strings.ReplaceAll(html.EscapeString(m.Text), "\n", "<br/>")

		b.WriteString("<p><em>")
		b.WriteString(ts)
		b.WriteString("</em> <strong>")
		b.WriteString(html.EscapeString(m.SenderName))
		b.WriteString(":</strong> ")
		b.WriteString(text)
		b.WriteString("</p>")
	}
	return c.policy.Sanitize(b.String())
}
