package crm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/GriffinCanCode/ChatRelay/backend/internal/gateway"
	"github.com/GriffinCanCode/ChatRelay/backend/internal/shared/types"
	"github.com/GriffinCanCode/ChatRelay/backend/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	write := func(w http.ResponseWriter, status int, v interface{}) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if v != nil {
			_ = json.NewEncoder(w).Encode(v)
		}
	}

	mux.HandleFunc("/api/v1/persons/lookup", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("phone") == "+1555" {
			write(w, 200, types.Person{ID: 7, Name: "John"})
			return
		}
		write(w, 404, nil)
	})
	mux.HandleFunc("/api/v1/persons/search", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "nobody" {
			write(w, 200, []types.Person{})
			return
		}
		write(w, 200, []types.Person{{ID: 1, Name: "Ann"}, {ID: 2, Name: "Annie"}})
	})
	mux.HandleFunc("/api/v1/persons/7/phones", func(w http.ResponseWriter, r *http.Request) {
		var ph types.Phone
		require.NoError(t, json.NewDecoder(r.Body).Decode(&ph))
		write(w, 200, types.Person{ID: 7, Name: "John", Phones: []types.Phone{ph}})
	})
	mux.HandleFunc("/api/v1/persons/8/phones", func(w http.ResponseWriter, r *http.Request) {
		write(w, 404, nil)
	})
	mux.HandleFunc("/api/v1/notes", func(w http.ResponseWriter, r *http.Request) {
		var n types.Note
		require.NoError(t, json.NewDecoder(r.Body).Decode(&n))
		n.ID = 99
		write(w, 201, n)
	})
	mux.HandleFunc("/api/v1/deals/5", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		var patch map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&patch))
		assert.Equal(t, map[string]interface{}{"status": "won"}, patch)
		write(w, 200, types.Deal{ID: 5, Title: "Deal", Status: "won"})
	})
	mux.HandleFunc("/api/v1/deals/6", func(w http.ResponseWriter, r *http.Request) {
		write(w, 404, nil)
	})
	mux.HandleFunc("/api/v1/auth/init", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		write(w, 200, map[string]string{"authUrl": "https://auth.example.com/?state=" + r.URL.Query().Get("state")})
	})
	mux.HandleFunc("/api/v1/feedback", func(w http.ResponseWriter, r *http.Request) {
		var fb types.Feedback
		require.NoError(t, json.NewDecoder(r.Body).Decode(&fb))
		assert.Equal(t, "the &lt;b&gt; tag shows &amp; breaks", fb.Message)
		write(w, 204, nil)
	})
	mux.HandleFunc("/api/v1/config", func(w http.ResponseWriter, r *http.Request) {
		write(w, 200, types.ClientConfig{Currency: "EUR"})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T, token string) *Client {
	t.Helper()
	creds := storage.NewCredentials(storage.NewMemory())
	if token != "" {
		require.NoError(t, creds.SetToken(context.Background(), token))
	}
	return New(gateway.New(gateway.Config{BaseURL: backend(t).URL}, creds, nil, nil))
}

func TestLookupPerson(t *testing.T) {
	c := newClient(t, "tok")
	ctx := context.Background()

	p, err := c.LookupPerson(ctx, "+1555")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "John", p.Name)

	p, err = c.LookupPerson(ctx, "+1000")
	assert.NoError(t, err, "no match is not an error")
	assert.Nil(t, p)
}

func TestSearchPersons(t *testing.T) {
	c := newClient(t, "tok")

	people, err := c.SearchPersons(context.Background(), "ann")
	require.NoError(t, err)
	assert.Len(t, people, 2)

	people, err = c.SearchPersons(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, people)
	assert.Empty(t, people)
}

func TestAttachPhone(t *testing.T) {
	c := newClient(t, "tok")

	p, err := c.AttachPhone(context.Background(), 7, "+1666", "work")
	require.NoError(t, err)
	require.Len(t, p.Phones, 1)
	assert.Equal(t, "+1666", p.Phones[0].Value)

	_, err = c.AttachPhone(context.Background(), 8, "+1666", "")
	var gerr *gateway.Error
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, "Person not found", gerr.Message)
}

func TestCreateNoteSendsSanitizedHTML(t *testing.T) {
	c := newClient(t, "tok")

	note, err := c.CreateNote(context.Background(), 7, 0, "John", []types.Message{
		{ID: "1", Text: "Hi <script>alert(1)</script>", Timestamp: 1700000000, SenderName: "John"},
		{ID: "2", Text: "line one\nline two", Timestamp: 1700000010, FromMe: true, SenderName: "Me"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(99), note.ID)
	assert.Equal(t, int64(7), note.PersonID)
	assert.NotContains(t, note.Content, "<script>")
	assert.Contains(t, note.Content, "<strong>Conversation with John</strong>")
	assert.Contains(t, note.Content, "<em>2023-11-14 22:13</em> <strong>John:</strong> Hi")
	assert.Contains(t, note.Content, "line one<br/>line two")
}

func TestFormatNoteKeepsAngleBrackets(t *testing.T) {
	c := New(nil)

	note := c.FormatNote("<Ann & co>", []types.Message{
		{ID: "1", Text: "wrap it in <div> tags", Timestamp: 1700000000, SenderName: "A<b>"},
		{ID: "2", Text: "if a < b && b > c", Timestamp: 1700000010, SenderName: "B"},
	})
	assert.Contains(t, note, "<strong>Conversation with &lt;Ann &amp; co&gt;</strong>")
	assert.Contains(t, note, "<strong>A&lt;b&gt;:</strong> wrap it in &lt;div&gt; tags</p>")
	assert.Contains(t, note, "if a &lt; b &amp;&amp; b &gt; c")
	assert.NotContains(t, note, "<div>")
}

func TestSubmitFeedbackEscapes(t *testing.T) {
	c := newClient(t, "tok")
	require.NoError(t, c.SubmitFeedback(context.Background(), types.Feedback{Message: "the <b> tag shows & breaks"}))
}

func TestUpdateDeal(t *testing.T) {
	c := newClient(t, "tok")
	status := "won"

	d, err := c.UpdateDeal(context.Background(), 5, types.DealPatch{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, "won", d.Status)

	_, err = c.UpdateDeal(context.Background(), 6, types.DealPatch{Status: &status})
	var gerr *gateway.Error
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, "Deal not found", gerr.Message)
}

func TestAuthURLIsAnonymous(t *testing.T) {
	c := newClient(t, "")

	u, err := c.AuthURL(context.Background(), "c3RhdGU=")
	require.NoError(t, err)
	assert.Equal(t, "https://auth.example.com/?state=c3RhdGU=", u)

	_, err = c.Config(context.Background())
	assert.ErrorIs(t, err, gateway.ErrNotAuthenticated)
}

func TestConfig(t *testing.T) {
	cfg, err := newClient(t, "tok").Config(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "EUR", cfg.Currency)
}
