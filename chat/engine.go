package chat

import (
	"context"
	"log/slog"
	"sync"

	"github.com/careermate/messenger/contract"
	"github.com/careermate/messenger/deeplink"
	"github.com/careermate/messenger/log"
	"github.com/careermate/messenger/store"
	"github.com/careermate/messenger/subscription"
)

const errorMsgLogField = "errorMsg"

// Phase tracks how far the derivation cascade has run. Directory results
// (and with them the selection rules) are meaningless before the contact
// set exists.
type Phase int

const (
	Uninitialized Phase = iota
	ContactsLoaded
	DirectoryLoaded
)

// Config wires an Engine. Me is the authenticated user's identity key; an
// empty value disables the engine entirely.
type Config struct {
	Store store.Store
	Me    string
	// Intent is a pending new-conversation request from a job deep link.
	// When set, the first directory resolution opens the composer instead
	// of auto-selecting a thread.
	Intent *deeplink.Intent
	// OnCompose is invoked at most once, when the pending intent becomes
	// actionable.
	OnCompose func(deeplink.Intent)
	// OnUpdate is invoked after any derived state changes.
	OnUpdate func()
}

// Engine turns the raw message stream into the derived conversation state:
// contact set, contact directory, active conversation, message thread. All
// derived state is replaced wholesale on each snapshot; nothing is patched
// incrementally.
type Engine struct {
	store     store.Store
	subs      *subscription.Manager
	me        string
	intent    *deeplink.Intent
	onCompose func(deeplink.Intent)
	onUpdate  func()

	mu           sync.Mutex
	phase        Phase
	contacts     []string
	directory    []contract.UserProfile
	selected     *contract.UserProfile
	thread       []contract.Message
	dirKey       string
	dirKeyValid  bool
	composeFired bool
}

func NewEngine(cfg Config) *Engine {
	return &Engine{
		store:     cfg.Store,
		subs:      subscription.NewManager(),
		me:        cfg.Me,
		intent:    cfg.Intent,
		onCompose: cfg.OnCompose,
		onUpdate:  cfg.OnUpdate,
	}
}

// Start subscribes to the user's message stream. Without an identity there
// is nothing to observe and Start is a no-op.
func (e *Engine) Start(ctx context.Context) error {
	if e.me == "" {
		return nil
	}
	q := store.Query{
		Collection: contract.MessageCollection,
		WhereAny: []store.Filter{
			store.Eq("from", e.me),
			store.Eq("to", e.me),
		},
		OrderBy: "timestamp",
	}
	return e.subs.Set(subscription.Contacts, func() (store.CancelFunc, error) {
		return e.store.Subscribe(ctx, q, func(docs []store.Document) {
			e.onMessages(ctx, docs)
		})
	})
}

func (e *Engine) Close() {
	e.subs.CancelAll()
}

// Select makes a conversation active, overriding any default selection.
func (e *Engine) Select(ctx context.Context, profile contract.UserProfile) {
	e.mu.Lock()
	p := profile
	e.selected = &p
	e.mu.Unlock()
	e.syncThread(ctx, profile.Email)
	e.notifyUpdate()
}

func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

func (e *Engine) Contacts() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.contacts...)
}

func (e *Engine) Directory() []contract.UserProfile {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]contract.UserProfile(nil), e.directory...)
}

func (e *Engine) Selected() (contract.UserProfile, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.selected == nil {
		return contract.UserProfile{}, false
	}
	return *e.selected, true
}

func (e *Engine) Thread() []contract.Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]contract.Message(nil), e.thread...)
}

// onMessages recomputes the contact set from a full message-stream
// snapshot and pushes it into directory resolution.
func (e *Engine) onMessages(ctx context.Context, docs []store.Document) {
	logger := log.LoggerFromContext(ctx)
	msgs := make([]contract.Message, 0, len(docs))
	for _, doc := range docs {
		var m contract.Message
		if err := doc.DataTo(&m); err != nil {
			logger.Error("skipping undecodable message", slog.String(errorMsgLogField, err.Error()))
			continue
		}
		msgs = append(msgs, m)
	}
	contacts := contactKeys(msgs)

	e.mu.Lock()
	if e.phase == Uninitialized {
		e.phase = ContactsLoaded
	}
	e.contacts = contacts
	e.mu.Unlock()

	e.notifyUpdate()
	e.resolveDirectory(ctx, contacts)
}

func (e *Engine) notifyUpdate() {
	if e.onUpdate != nil {
		e.onUpdate()
	}
}
