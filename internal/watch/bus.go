// Package watch delivers live project lists to observers. A subscriber
// registers a callback for one user and receives the full current result set
// once immediately, then again after every project change — the document
// store's snapshot-push contract expressed in-process over a watermill
// gochannel pub/sub.
package watch

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"vugru/internal/models"
)

const topicProjects = "projects.changed"

// ListFunc fetches the current project list for a user. The bus re-queries
// through it on every change notification.
type ListFunc func(ctx context.Context, userID string, role models.Role) ([]models.Project, error)

// Bus fans project change notifications out to per-user subscriptions.
type Bus struct {
	pubsub *gochannel.GoChannel
	list   ListFunc
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
}

// New creates a bus backed by the given list function.
func New(list ListFunc, logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		pubsub: gochannel.NewGoChannel(
			gochannel.Config{
				OutputChannelBuffer: 64,
				Persistent:          false,
			},
			watermill.NopLogger{},
		),
		list:   list,
		logger: logger,
	}
}

// NotifyChanged announces that a project was created, updated, or deleted.
// Every active subscription re-queries and redelivers its result set.
func (b *Bus) NotifyChanged(projectID string) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.mu.Unlock()

	msg := message.NewMessage(watermill.NewUUID(), []byte(projectID))
	if err := b.pubsub.Publish(topicProjects, msg); err != nil {
		b.logger.Error("publish change notification", slog.String("project", projectID), slog.String("error", err.Error()))
	}
}

// Subscribe registers a callback that receives the user's complete current
// project list on every change, starting with an immediate snapshot. A zero
// result set is delivered as an empty slice. A failed re-query is logged and
// that delivery skipped; the next change triggers a fresh one. The returned
// function cancels the subscription.
func (b *Bus) Subscribe(ctx context.Context, userID string, role models.Role, fn func([]models.Project)) (func(), error) {
	subCtx, cancel := context.WithCancel(ctx)

	messages, err := b.pubsub.Subscribe(subCtx, topicProjects)
	if err != nil {
		cancel()
		return nil, err
	}

	go func() {
		b.deliver(subCtx, userID, role, fn)
		for msg := range messages {
			msg.Ack()
			b.deliver(subCtx, userID, role, fn)
		}
	}()

	return cancel, nil
}

func (b *Bus) deliver(ctx context.Context, userID string, role models.Role, fn func([]models.Project)) {
	if ctx.Err() != nil {
		return
	}
	projects, err := b.list(ctx, userID, role)
	if err != nil {
		b.logger.Error("refresh project list", slog.String("user", userID), slog.String("error", err.Error()))
		return
	}
	if projects == nil {
		projects = []models.Project{}
	}
	fn(projects)
}

// Close shuts down the underlying pub/sub and all subscriptions.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()
	return b.pubsub.Close()
}
