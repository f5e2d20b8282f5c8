package chat

import (
	"context"
	"log/slog"
	"strings"

	"github.com/careermate/messenger/contract"
	"github.com/careermate/messenger/deeplink"
	"github.com/careermate/messenger/log"
	"github.com/careermate/messenger/store"
	"github.com/careermate/messenger/subscription"
)

// resolveDirectory looks up the contact keys in the user directory. An
// empty set resolves to zero profiles without touching the store; a lookup
// failure degrades to zero profiles instead of propagating.
func (e *Engine) resolveDirectory(ctx context.Context, contacts []string) {
	key := strings.Join(contacts, ",")

	e.mu.Lock()
	if e.dirKeyValid && e.dirKey == key {
		e.mu.Unlock()
		return
	}
	e.dirKey = key
	e.dirKeyValid = true
	e.mu.Unlock()

	if len(contacts) == 0 {
		e.subs.Cancel(subscription.Directory)
		e.applyDirectory(ctx, nil)
		return
	}

	q := store.Query{
		Collection: contract.UserCollection,
		Where:      []store.Filter{store.In("email", contacts)},
		OrderBy:    "createdAt",
	}
	err := e.subs.Set(subscription.Directory, func() (store.CancelFunc, error) {
		return e.store.Subscribe(ctx, q, func(docs []store.Document) {
			e.onDirectorySnapshot(ctx, docs)
		})
	})
	if err != nil {
		log.LoggerFromContext(ctx).Error("error while resolving contact directory",
			slog.String(errorMsgLogField, err.Error()))
		e.applyDirectory(ctx, nil)
	}
}

func (e *Engine) onDirectorySnapshot(ctx context.Context, docs []store.Document) {
	logger := log.LoggerFromContext(ctx)
	profiles := make([]contract.UserProfile, 0, len(docs))
	for _, doc := range docs {
		var p contract.UserProfile
		if err := doc.DataTo(&p); err != nil {
			logger.Error("skipping undecodable profile", slog.String(errorMsgLogField, err.Error()))
			continue
		}
		profiles = append(profiles, p)
	}
	e.applyDirectory(ctx, profiles)
}

// applyDirectory replaces the contact directory wholesale and runs the
// selection rules. On the first resolution, a pending new-conversation
// intent takes precedence over default selection; otherwise the first
// directory entry becomes the active conversation. Later snapshots never
// re-run default selection.
func (e *Engine) applyDirectory(ctx context.Context, profiles []contract.UserProfile) {
	e.mu.Lock()
	first := e.phase != DirectoryLoaded
	e.phase = DirectoryLoaded
	e.directory = profiles

	var compose *deeplink.Intent
	var selectEmail string
	if first {
		if e.intent != nil && !e.composeFired {
			e.composeFired = true
			compose = e.intent
		} else if e.selected == nil && len(profiles) > 0 {
			p := profiles[0]
			e.selected = &p
			selectEmail = p.Email
		}
	}
	e.mu.Unlock()

	if compose != nil && e.onCompose != nil {
		e.onCompose(*compose)
	}
	if selectEmail != "" {
		e.syncThread(ctx, selectEmail)
	}
	e.notifyUpdate()
}
