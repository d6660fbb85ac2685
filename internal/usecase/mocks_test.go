package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/ligue-leads/internal/entity"
	"github.com/xavierca1/ligue-leads/internal/infra/queue"
)

// MockLeadRepository
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) Create(ctx context.Context, lead *entity.LeadDraft) (string, error) {
	args := m.Called(ctx, lead)
	return args.String(0), args.Error(1)
}

func (m *MockLeadRepository) Update(ctx context.Context, id string, lead *entity.LeadDraft) error {
	args := m.Called(ctx, id, lead)
	return args.Error(0)
}

// MockPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishLeadCompleted(ctx context.Context, payload queue.LeadCompletedPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

// fakeAutosaver records what the controller hands to the persistence side.
type fakeAutosaver struct {
	mu     sync.Mutex
	saves  []entity.LeadDraft
	finals []entity.LeadDraft
	id     string
}

func (f *fakeAutosaver) Autosave(_ context.Context, snapshot entity.LeadDraft) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves = append(f.saves, snapshot)
	if f.id == "" && snapshot.HasContact() {
		f.id = "lead-1"
	}
}

func (f *fakeAutosaver) Finalize(_ context.Context, snapshot entity.LeadDraft) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finals = append(f.finals, snapshot)
}

func (f *fakeAutosaver) RecordID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.id
}

func (f *fakeAutosaver) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saves)
}

func (f *fakeAutosaver) lastSave() entity.LeadDraft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves[len(f.saves)-1]
}

// fakeClock is a manual clock for the debouncer. Timers fire only on Advance.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now + d, fn: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= c.now {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].at < due[j].at })
	for _, t := range due {
		t.fn()
	}
}

func intPtr(n int) *int { return &n }
