package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/careermate/messenger/contract"
	"github.com/careermate/messenger/store"
	"github.com/microcosm-cc/bluemonday"
)

var htmlPolicy = bluemonday.StrictPolicy()

// Composer appends outgoing messages to the shared stream. Sends are not
// locally echoed; the update is observed through the subscription
// round-trip like any other writer's.
type Composer struct {
	store store.Store
	me    string
	now   func() time.Time
}

func NewComposer(s store.Store, me string) *Composer {
	return &Composer{store: s, me: me, now: time.Now}
}

// SendReply appends one message to the active conversation. Empty or
// whitespace-only text is rejected without error and nothing is persisted.
func (c *Composer) SendReply(ctx context.Context, to, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}
	return c.append(ctx, to, text)
}

// SendNew starts a conversation from a job application. It emits two
// messages: a synthetic job-context message, then the body, both addressed
// to the recipient. The context message must come first; downstream
// consumers parse the job context out of the message text, there is no
// metadata field.
func (c *Composer) SendNew(ctx context.Context, to, text, jobTitle string) ([]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	contextID, err := c.append(ctx, to, fmt.Sprintf("New message for job: %s from %s", jobTitle, c.me))
	if err != nil {
		return nil, err
	}
	bodyID, err := c.append(ctx, to, text)
	if err != nil {
		return []string{contextID}, err
	}
	return []string{contextID, bodyID}, nil
}

func (c *Composer) append(ctx context.Context, to, text string) (string, error) {
	return c.store.Append(ctx, contract.MessageCollection, contract.Message{
		From:      c.me,
		To:        to,
		Text:      htmlPolicy.Sanitize(text),
		Timestamp: c.now(),
	})
}
