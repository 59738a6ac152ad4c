package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortMessagesStable(t *testing.T) {
	msgs := []Message{
		{ID: "c", Timestamp: 30},
		{ID: "a", Timestamp: 10},
		{ID: "b1", Timestamp: 20},
		{ID: "b2", Timestamp: 20},
	}
	SortMessages(msgs)

	var ids []string
	for _, m := range msgs {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []string{"a", "b1", "b2", "c"}, ids)
}

func TestDirectory(t *testing.T) {
	chat := Chat{
		IsGroup: true,
		Participants: []Participant{
			{Name: "Ann", Address: "111@c.us"},
			{Name: "Bob", Address: "222@c.us"},
			{Name: "Dora"},
		},
	}
	assert.Equal(t, map[string]string{"111@c.us": "Ann", "222@c.us": "Bob"}, chat.Directory())

	direct := Chat{Counterpart: &Participant{Name: "John", Address: "333@c.us"}}
	assert.Equal(t, "John", direct.Directory()["333@c.us"])

	anonymous := Chat{Counterpart: &Participant{Name: "Nobody"}}
	assert.Empty(t, anonymous.Directory())
}
