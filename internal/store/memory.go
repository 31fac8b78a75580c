package store

import (
	"context"
	"sync"
	"time"

	"github.com/lib/pq"

	"github.com/vaughan-dsouza/notes/internal/models"
)

// Memory is an in-process Store with the same uniqueness, ownership and
// cascade rules as the Postgres schema. Transactions are serialized and a
// failed scope restores the state it started from.
type Memory struct {
	mu     sync.Mutex
	now    func() time.Time
	state  memState
	nextID struct{ user, note int64 }
}

type memState struct {
	users map[int64]models.User
	notes map[int64]models.Note
}

type MemoryOption func(*Memory)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) { m.now = now }
}

func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		now: time.Now,
		state: memState{
			users: map[int64]models.User{},
			notes: map[int64]models.Note{},
		},
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *Memory) WithTx(ctx context.Context, fn func(ctx context.Context, q Queries) error) (err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	saved := m.state.clone()
	savedIDs := m.nextID
	defer func() {
		if p := recover(); p != nil {
			m.state, m.nextID = saved, savedIDs
			panic(p)
		}
		if err != nil {
			m.state, m.nextID = saved, savedIDs
		}
	}()

	return fn(ctx, memQueries{m: m})
}

func (m *Memory) Ping(context.Context) error { return nil }

func (s memState) clone() memState {
	c := memState{
		users: make(map[int64]models.User, len(s.users)),
		notes: make(map[int64]models.Note, len(s.notes)),
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.notes {
		c.notes[k] = copyNote(v)
	}
	return c
}

func copyNote(n models.Note) models.Note {
	if n.Tags != nil {
		n.Tags = append(pq.StringArray{}, n.Tags...)
	}
	if n.Content != nil {
		c := *n.Content
		n.Content = &c
	}
	return n
}

// memQueries is only used while Memory.mu is held.
type memQueries struct {
	m *Memory
}

func (q memQueries) CreateUser(_ context.Context, u *models.User) error {
	for _, existing := range q.m.state.users {
		if existing.Username == u.Username {
			return ErrUsernameTaken
		}
	}
	for _, existing := range q.m.state.users {
		if existing.Email == u.Email {
			return ErrEmailTaken
		}
	}
	q.m.nextID.user++
	u.ID = q.m.nextID.user
	u.CreatedAt = q.m.now().UTC()
	q.m.state.users[u.ID] = *u
	return nil
}

func (q memQueries) UserByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range q.m.state.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (q memQueries) UserByID(_ context.Context, id int64) (*models.User, error) {
	u, ok := q.m.state.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (q memQueries) DeleteUser(_ context.Context, id int64) error {
	if _, ok := q.m.state.users[id]; !ok {
		return ErrNotFound
	}
	delete(q.m.state.users, id)
	for nid, n := range q.m.state.notes {
		if n.OwnerID == id {
			delete(q.m.state.notes, nid)
		}
	}
	return nil
}

func (q memQueries) CreateNote(_ context.Context, n *models.Note) error {
	if _, ok := q.m.state.users[n.OwnerID]; !ok {
		return ErrNotFound
	}
	n.NormalizeTags()
	q.m.nextID.note++
	n.ID = q.m.nextID.note
	n.CreatedAt = q.m.now().UTC()
	n.UpdatedAt = n.CreatedAt
	q.m.state.notes[n.ID] = copyNote(*n)
	return nil
}

func (q memQueries) ListNotes(_ context.Context, ownerID int64) ([]models.Note, error) {
	notes := []models.Note{}
	for id := int64(1); id <= q.m.nextID.note; id++ {
		n, ok := q.m.state.notes[id]
		if ok && n.OwnerID == ownerID {
			notes = append(notes, copyNote(n))
		}
	}
	return notes, nil
}

func (q memQueries) GetNote(_ context.Context, id, ownerID int64) (*models.Note, error) {
	n, ok := q.m.state.notes[id]
	if !ok || n.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	n = copyNote(n)
	return &n, nil
}

func (q memQueries) UpdateNote(_ context.Context, n *models.Note) error {
	existing, ok := q.m.state.notes[n.ID]
	if !ok || existing.OwnerID != n.OwnerID {
		return ErrNotFound
	}
	n.NormalizeTags()
	n.CreatedAt = existing.CreatedAt
	n.UpdatedAt = q.m.now().UTC()
	q.m.state.notes[n.ID] = copyNote(*n)
	return nil
}

func (q memQueries) DeleteNote(_ context.Context, id, ownerID int64) error {
	n, ok := q.m.state.notes[id]
	if !ok || n.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(q.m.state.notes, id)
	return nil
}

// NoteCount reports how many notes are stored, across all owners.
func (m *Memory) NoteCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.state.notes)
}
