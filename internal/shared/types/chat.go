package types

import "sort"

// Message is one chat history entry. Timestamp is unix seconds.
type Message struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	Timestamp  int64  `json:"timestamp"`
	FromMe     bool   `json:"fromMe"`
	SenderName string `json:"senderName"`
}

// Participant is a display name plus the canonical address of a chat member
type Participant struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// Chat identifies the active conversation
type Chat struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	IsGroup      bool          `json:"isGroup"`
	Counterpart  *Participant  `json:"counterpart,omitempty"`
	Participants []Participant `json:"participants,omitempty"`
}

// Directory maps canonical address to display name. Participants without
// an address are left out.
func (c *Chat) Directory() map[string]string {
	dir := make(map[string]string, len(c.Participants)+1)
	if c.Counterpart != nil && c.Counterpart.Address != "" {
		dir[c.Counterpart.Address] = c.Counterpart.Name
	}
	for _, p := range c.Participants {
		if p.Address != "" {
			dir[p.Address] = p.Name
		}
	}
	return dir
}

// SortMessages orders messages by ascending timestamp, keeping the
// relative order of entries that share a timestamp.
func SortMessages(msgs []Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].Timestamp < msgs[j].Timestamp
	})
}
