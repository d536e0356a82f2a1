package notify

import (
	"context"
	"errors"
	"sync"

	"findvax-notifier/internal/models"
	"findvax-notifier/internal/snapshot"
)

// ==========================
// Test Helper Functions
// ==========================

type mockStore struct {
	mu         sync.Mutex
	pending    map[string][]models.Subscription
	queryErr   map[string]error
	deleteErr  error
	queried    []string
	deleted    []string
	putRecords []models.Subscription
}

func newMockStore() *mockStore {
	return &mockStore{
		pending:  map[string][]models.Subscription{},
		queryErr: map[string]error{},
	}
}

func (m *mockStore) add(location, sms, lang string) {
	m.pending[location] = append(m.pending[location], models.Subscription{
		Location: location,
		IsSent:   models.Pending,
		SMS:      sms,
		Lang:     lang,
	})
}

func (m *mockStore) Put(_ context.Context, sub models.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putRecords = append(m.putRecords, sub)
	return nil
}

func (m *mockStore) QueryPending(_ context.Context, locationID string) ([]models.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queried = append(m.queried, locationID)
	if err := m.queryErr[locationID]; err != nil {
		return nil, err
	}
	return append([]models.Subscription(nil), m.pending[locationID]...), nil
}

func (m *mockStore) DeletePending(_ context.Context, locationID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	m.deleted = append(m.deleted, locationID)
	n := len(m.pending[locationID])
	delete(m.pending, locationID)
	return n, nil
}

type mockGateway struct {
	mu      sync.Mutex
	failFor map[string]bool
	sent    map[string]string
}

func newMockGateway() *mockGateway {
	return &mockGateway{failFor: map[string]bool{}, sent: map[string]string{}}
}

func (g *mockGateway) Name() string { return "mock" }

func (g *mockGateway) Send(_ context.Context, recipient, body string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failFor[recipient] {
		return errors.New("gateway rejected message")
	}
	g.sent[recipient] = body
	return nil
}

type mockLoader struct {
	snap  *snapshot.Snapshot
	err   error
	calls int
}

func (l *mockLoader) Load(_ context.Context, region string) (*snapshot.Snapshot, error) {
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	snap := *l.snap
	snap.Region = region
	return &snap, nil
}

func (l *mockLoader) LoadLocations(_ context.Context, _ string) ([]models.Location, error) {
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	return l.snap.Locations, nil
}

type mockLock struct {
	held     bool
	err      error
	released []string
}

func (l *mockLock) Acquire(context.Context, string) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	return !l.held, nil
}

func (l *mockLock) Release(_ context.Context, region string) error {
	l.released = append(l.released, region)
	return nil
}

func intPtr(n int) *int { return &n }

func slots(counts ...*int) []models.TimeSlot {
	out := make([]models.TimeSlot, 0, len(counts))
	for _, c := range counts {
		out = append(out, models.TimeSlot{Slots: c})
	}
	return out
}
