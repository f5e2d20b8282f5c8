package chat

import (
	"context"
	"testing"
	"time"

	"github.com/careermate/messenger/contract"
	"github.com/careermate/messenger/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testDoc struct {
	id  string
	msg contract.Message
}

func (d testDoc) ID() string { return d.id }

func (d testDoc) DataTo(v any) error {
	*(v.(*contract.Message)) = d.msg
	return nil
}

func startSelected(t *testing.T, st *store.Memory) *Engine {
	t.Helper()
	seedUser(t, st, "b@x.com", "Bea", baseTime.Add(-2*time.Hour))
	seedUser(t, st, "c@x.com", "Cem", baseTime.Add(-time.Hour))
	seedMessage(t, st, "a@x.com", "b@x.com", "to b", baseTime)
	seedMessage(t, st, "a@x.com", "c@x.com", "to c", baseTime.Add(time.Minute))

	engine := NewEngine(Config{Store: st, Me: "a@x.com"})
	require.NoError(t, engine.Start(context.Background()))
	t.Cleanup(engine.Close)
	return engine
}

func TestThreadFollowsSelection(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	engine := startSelected(t, st)

	thread := engine.Thread()
	require.Len(t, thread, 1)
	assert.Equal(t, "to b", thread[0].Text)

	directory := engine.Directory()
	require.Len(t, directory, 2)
	engine.Select(ctx, directory[1])

	thread = engine.Thread()
	require.Len(t, thread, 1)
	assert.Equal(t, "to c", thread[0].Text)
}

func TestStaleThreadSnapshotDiscarded(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	engine := startSelected(t, st)

	directory := engine.Directory()
	require.Len(t, directory, 2)
	engine.Select(ctx, directory[1]) // c is active now

	// a snapshot for the previously active conversation arrives late
	engine.onThread(ctx, "b@x.com", []store.Document{
		testDoc{id: "m1", msg: contract.Message{From: "a@x.com", To: "b@x.com", Text: "stale", Timestamp: baseTime}},
	})

	thread := engine.Thread()
	require.Len(t, thread, 1)
	assert.Equal(t, "to c", thread[0].Text)
}

func TestThreadDropsMismatchedRecipients(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	engine := startSelected(t, st)

	selected, ok := engine.Selected()
	require.True(t, ok)
	require.Equal(t, "b@x.com", selected.Email)

	engine.onThread(ctx, "b@x.com", []store.Document{
		testDoc{id: "m1", msg: contract.Message{From: "a@x.com", To: "b@x.com", Text: "kept", Timestamp: baseTime}},
		testDoc{id: "m2", msg: contract.Message{From: "a@x.com", To: "z@x.com", Text: "dropped", Timestamp: baseTime}},
		testDoc{id: "m1", msg: contract.Message{From: "a@x.com", To: "b@x.com", Text: "kept", Timestamp: baseTime}},
	})

	thread := engine.Thread()
	require.Len(t, thread, 1)
	assert.Equal(t, "kept", thread[0].Text)
}
