package chat

import (
	"context"
	"log/slog"

	"github.com/careermate/messenger/contract"
	"github.com/careermate/messenger/log"
	"github.com/careermate/messenger/store"
	"github.com/careermate/messenger/subscription"
)

// syncThread replaces the thread subscription for a newly active
// conversation. The previous subscription is torn down before the new one
// starts delivering.
func (e *Engine) syncThread(ctx context.Context, email string) {
	q := store.Query{
		Collection: contract.MessageCollection,
		Where:      []store.Filter{store.Eq("to", email)},
		OrderBy:    "timestamp",
	}
	err := e.subs.Set(subscription.Thread, func() (store.CancelFunc, error) {
		return e.store.Subscribe(ctx, q, func(docs []store.Document) {
			e.onThread(ctx, email, docs)
		})
	})
	if err != nil {
		log.LoggerFromContext(ctx).Error("error while subscribing to thread",
			slog.String(errorMsgLogField, err.Error()))
	}
}

// onThread applies a thread snapshot. Snapshot delivery can interleave with
// reselection, so a snapshot whose conversation is no longer active is
// discarded at delivery time.
func (e *Engine) onThread(ctx context.Context, email string, docs []store.Document) {
	logger := log.LoggerFromContext(ctx)
	msgs := make([]contract.Message, 0, len(docs))
	seen := make(map[string]struct{}, len(docs))
	for _, doc := range docs {
		var m contract.Message
		if err := doc.DataTo(&m); err != nil {
			logger.Error("skipping undecodable message", slog.String(errorMsgLogField, err.Error()))
			continue
		}
		if m.To != email {
			continue
		}
		if _, ok := seen[doc.ID()]; ok {
			continue
		}
		seen[doc.ID()] = struct{}{}
		m.ID = doc.ID()
		msgs = append(msgs, m)
	}

	e.mu.Lock()
	if e.selected == nil || e.selected.Email != email {
		e.mu.Unlock()
		return
	}
	e.thread = msgs
	e.mu.Unlock()
	e.notifyUpdate()
}
