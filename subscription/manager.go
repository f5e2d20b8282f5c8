package subscription

import (
	"sync"

	"github.com/careermate/messenger/store"
)

// Role names a logical live query. Each role feeds exactly one derived
// entity, so at most one subscription per role may be live at a time.
type Role string

const (
	Contacts  Role = "contacts"
	Directory Role = "directory"
	Thread    Role = "thread"
)

type Manager struct {
	mu     sync.Mutex
	active map[Role]store.CancelFunc
}

func NewManager() *Manager {
	return &Manager{active: make(map[Role]store.CancelFunc)}
}

// Set replaces the subscription for a role. The previous subscription is
// torn down before start runs, so two live subscriptions never write into
// the same derived entity. start may deliver its first snapshot
// synchronously.
func (m *Manager) Set(role Role, start func() (store.CancelFunc, error)) error {
	m.takeDown(role)
	cancel, err := start()
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.active[role] = cancel
	m.mu.Unlock()
	return nil
}

func (m *Manager) Cancel(role Role) {
	m.takeDown(role)
}

func (m *Manager) CancelAll() {
	m.mu.Lock()
	cancels := make([]store.CancelFunc, 0, len(m.active))
	for role, cancel := range m.active {
		cancels = append(cancels, cancel)
		delete(m.active, role)
	}
	m.mu.Unlock()
	for _, cancel := range cancels {
		cancel()
	}
}

func (m *Manager) takeDown(role Role) {
	m.mu.Lock()
	cancel, ok := m.active[role]
	delete(m.active, role)
	m.mu.Unlock()
	if ok && cancel != nil {
		cancel()
	}
}
