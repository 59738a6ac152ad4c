package page

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/GriffinCanCode/ChatRelay/backend/internal/bridge"
	"github.com/GriffinCanCode/ChatRelay/backend/internal/shared/types"
	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

// Failure reasons carried in extraction responses
const (
	ReasonNotReady     = "Page not ready"
	ReasonNoActiveChat = "No active chat"
)

const defaultEvalTimeout = 5 * time.Second

// walkResult is the JSON produced by the walker
type walkResult struct {
	Ready    bool               `json:"ready"`
	Me       *types.Participant `json:"me"`
	Chat     *types.Chat        `json:"chat"`
	Messages []walkMessage      `json:"messages"`
}

type walkMessage struct {
	ID     string             `json:"id"`
	Body   string             `json:"body"`
	T      int64              `json:"t"`
	FromMe bool               `json:"fromMe"`
	Author *types.Participant `json:"author"`
}

// Observer answers extraction requests from the bridge
type Observer struct {
	bus         *bridge.Bus
	eval        Evaluator
	logger      *zap.Logger
	evalTimeout time.Duration

	mu    sync.Mutex
	unsub func()
}

// NewObserver creates an observer reading through eval
func NewObserver(bus *bridge.Bus, eval Evaluator, logger *zap.Logger) *Observer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Observer{
		bus:         bus,
		eval:        eval,
		logger:      logger,
		evalTimeout: defaultEvalTimeout,
	}
}

// SetEvalTimeout bounds a single walk of the page graph
func (o *Observer) SetEvalTimeout(d time.Duration) {
	if d > 0 {
		o.evalTimeout = d
	}
}

// Attach starts answering requests. Attaching twice is a no-op.
func (o *Observer) Attach() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.unsub != nil {
		return
	}
	o.unsub = o.bus.Subscribe(types.ExtractRequestEvent, o.handle)
}

// Detach stops answering requests
func (o *Observer) Detach() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.unsub != nil {
		o.unsub()
		o.unsub = nil
	}
}

func (o *Observer) handle(payload []byte) {
	var req types.ExtractionRequest
	if err := sonic.Unmarshal(payload, &req); err != nil || req.Identifier == "" {
		o.logger.Debug("dropping malformed extraction request", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), o.evalTimeout)
	defer cancel()

	resp := o.Snapshot(ctx, req)
	out, err := sonic.Marshal(resp)
	if err != nil {
		o.logger.Error("encode extraction response", zap.Error(err))
		return
	}
	o.bus.Publish(types.ExtractResponseEvent, out)
}

// Snapshot walks the page graph once and builds the response for req
func (o *Observer) Snapshot(ctx context.Context, req types.ExtractionRequest) (resp types.ExtractionResponse) {
	resp.Identifier = req.Identifier

	defer func() {
		if r := recover(); r != nil {
			o.logger.Warn("page walk panicked", zap.String("panic", fmt.Sprint(r)))
			resp = failure(req.Identifier, types.CodeTraversal, fmt.Sprintf("Extraction failed: %v", r))
		}
	}()

	raw, err := o.eval.Evaluate(ctx, Walker)
	if err != nil {
		o.logger.Warn("page walk failed", zap.String("identifier", req.Identifier), zap.Error(err))
		return failure(req.Identifier, types.CodeTraversal, "Extraction failed: "+shortReason(err))
	}

	var walk walkResult
	if err := sonic.UnmarshalString(raw, &walk); err != nil {
		return failure(req.Identifier, types.CodeTraversal, "Extraction failed: unreadable page state")
	}
	if !walk.Ready {
		return failure(req.Identifier, types.CodeNotReady, ReasonNotReady)
	}
	if walk.Chat == nil {
		return failure(req.Identifier, types.CodeNoActiveChat, ReasonNoActiveChat)
	}

	resp.Success = true
	resp.Chat = walk.Chat
	resp.Messages = normalize(walk, req)
	return resp
}

func normalize(walk walkResult, req types.ExtractionRequest) []types.Message {
	dir := walk.Chat.Directory()

	userName := req.UserName
	if userName == "" && walk.Me != nil {
		userName = walk.Me.Name
	}
	if userName == "" {
		userName = "Me"
	}

	fallback := req.ContactName
	if fallback == "" {
		fallback = walk.Chat.Title
	}

	msgs := make([]types.Message, 0, len(walk.Messages))
	for _, m := range walk.Messages {
		msgs = append(msgs, types.Message{
			ID:         m.ID,
			Text:       m.Body,
			Timestamp:  m.T,
			FromMe:     m.FromMe,
			SenderName: senderName(m, dir, userName, fallback),
		})
	}
	types.SortMessages(msgs)
	return msgs
}

func senderName(m walkMessage, dir map[string]string, userName, fallback string) string {
	if m.FromMe {
		return userName
	}
	if m.Author != nil {
		if name := dir[m.Author.Address]; m.Author.Address != "" && name != "" {
			return name
		}
		if m.Author.Name != "" {
			return m.Author.Name
		}
	}
	return fallback
}

func failure(identifier, code, reason string) types.ExtractionResponse {
	return types.ExtractionResponse{
		Identifier: identifier,
		Success:    false,
		Error:      reason,
		Code:       code,
	}
}

// shortReason keeps the first line of an evaluation error
func shortReason(err error) string {
	msg := err.Error()
	for i, c := range msg {
		if c == '\n' {
			return msg[:i]
		}
	}
	if len(msg) > 200 {
		return msg[:200]
	}
	return msg
}
