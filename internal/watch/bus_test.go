package watch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vugru/internal/models"
)

// fakeList is a ListFunc whose result can be swapped between deliveries.
type fakeList struct {
	mu       sync.Mutex
	projects []models.Project
	err      error
}

func (f *fakeList) set(projects []models.Project, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.projects = projects
	f.err = err
}

func (f *fakeList) list(ctx context.Context, userID string, role models.Role) ([]models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.projects, f.err
}

func collect(t *testing.T) (func([]models.Project), <-chan []models.Project) {
	t.Helper()
	ch := make(chan []models.Project, 16)
	return func(projects []models.Project) { ch <- projects }, ch
}

func waitFor(t *testing.T, ch <-chan []models.Project) []models.Project {
	t.Helper()
	select {
	case projects := <-ch:
		return projects
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for delivery")
		return nil
	}
}

func TestSubscribeDeliversInitialSnapshot(t *testing.T) {
	source := &fakeList{}
	source.set([]models.Project{{ID: "p1"}}, nil)
	bus := New(source.list, nil)
	defer bus.Close()

	fn, ch := collect(t)
	unsubscribe, err := bus.Subscribe(context.Background(), "client-1", models.RoleClient, fn)
	require.NoError(t, err)
	defer unsubscribe()

	projects := waitFor(t, ch)
	require.Len(t, projects, 1)
	assert.Equal(t, "p1", projects[0].ID)
}

func TestSubscribeToleratesZeroResults(t *testing.T) {
	source := &fakeList{}
	bus := New(source.list, nil)
	defer bus.Close()

	fn, ch := collect(t)
	unsubscribe, err := bus.Subscribe(context.Background(), "client-1", models.RoleClient, fn)
	require.NoError(t, err)
	defer unsubscribe()

	projects := waitFor(t, ch)
	assert.NotNil(t, projects)
	assert.Empty(t, projects)
}

func TestNotifyChangedRedeliversCurrentSet(t *testing.T) {
	source := &fakeList{}
	source.set([]models.Project{{ID: "p1", Status: models.StatusPending}}, nil)
	bus := New(source.list, nil)
	defer bus.Close()

	fn, ch := collect(t)
	unsubscribe, err := bus.Subscribe(context.Background(), "client-1", models.RoleClient, fn)
	require.NoError(t, err)
	defer unsubscribe()

	waitFor(t, ch) // initial snapshot

	source.set([]models.Project{{ID: "p1", Status: models.StatusQuoted}}, nil)
	bus.NotifyChanged("p1")

	projects := waitFor(t, ch)
	require.Len(t, projects, 1)
	assert.Equal(t, models.StatusQuoted, projects[0].Status)
}

func TestUnsubscribeStopsDeliveries(t *testing.T) {
	source := &fakeList{}
	bus := New(source.list, nil)
	defer bus.Close()

	fn, ch := collect(t)
	unsubscribe, err := bus.Subscribe(context.Background(), "client-1", models.RoleClient, fn)
	require.NoError(t, err)

	waitFor(t, ch) // initial snapshot
	unsubscribe()

	// Give the subscription goroutine time to wind down, then notify.
	time.Sleep(50 * time.Millisecond)
	bus.NotifyChanged("p1")

	select {
	case <-ch:
		t.Fatal("received delivery after unsubscribe")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestFailedRefreshSkipsDelivery(t *testing.T) {
	source := &fakeList{}
	source.set(nil, context.DeadlineExceeded)
	bus := New(source.list, nil)
	defer bus.Close()

	fn, ch := collect(t)
	unsubscribe, err := bus.Subscribe(context.Background(), "client-1", models.RoleClient, fn)
	require.NoError(t, err)
	defer unsubscribe()

	select {
	case <-ch:
		t.Fatal("delivery should have been skipped on query failure")
	case <-time.After(200 * time.Millisecond):
	}

	// The next change triggers a fresh, successful delivery.
	source.set([]models.Project{{ID: "p1"}}, nil)
	bus.NotifyChanged("p1")
	projects := waitFor(t, ch)
	require.Len(t, projects, 1)
}
