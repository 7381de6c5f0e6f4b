package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vugru/internal/lifecycle"
	"vugru/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func createTestProject(t *testing.T, store *Store) models.Project {
	t.Helper()
	project, err := store.CreateProject(context.Background(), models.Project{
		ClientID:       "client-1",
		ClientName:     "Avery",
		ClientEmail:    "avery@example.com",
		ProjectName:    "Spring wedding",
		Description:    "Full day coverage",
		Date:           time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC),
		Deliverables:   []string{"wedding film", "drone footage"},
		Budget:         "To be discussed",
		Location:       "To be confirmed",
		VideographerID: "video-1",
	})
	require.NoError(t, err)
	return project
}

func TestCreateProjectAssignsIdentityAndTimestamps(t *testing.T) {
	store := openTestStore(t)
	project := createTestProject(t, store)

	assert.NotEmpty(t, project.ID)
	assert.Equal(t, models.StatusPending, project.Status)
	assert.False(t, project.CreatedAt.IsZero())
	assert.False(t, project.LastUpdate.IsZero())
	assert.Empty(t, project.LastMessage)
	assert.Empty(t, project.QuotedPrice)
	assert.Nil(t, project.IncludedServices)
	assert.Empty(t, project.Comments)
}

func TestGetProjectRoundTrip(t *testing.T) {
	store := openTestStore(t)
	created := createTestProject(t, store)

	got, err := store.GetProject(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ProjectName, got.ProjectName)
	assert.Equal(t, created.Deliverables, got.Deliverables)
	assert.Equal(t, created.ClientEmail, got.ClientEmail)
	assert.True(t, created.Date.Equal(got.Date))
}

func TestGetProjectNotFound(t *testing.T) {
	store := openTestStore(t)
	_, err := store.GetProject(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestApplyUpdateAcceptSetsQuoteFields(t *testing.T) {
	store := openTestStore(t)
	project := createTestProject(t, store)

	update := lifecycle.RespondToRequest(project, lifecycle.Response{
		Kind:              lifecycle.KindAccept,
		Message:           "Quote attached",
		QuotedPrice:       "$500",
		EstimatedDuration: "2 weeks",
	}, time.Now().UTC())

	updated, err := store.ApplyUpdate(context.Background(), project.ID, update)
	require.NoError(t, err)
	assert.Equal(t, models.StatusQuoted, updated.Status)
	assert.Equal(t, "Quote attached", updated.LastMessage)
	assert.Equal(t, "$500", updated.QuotedPrice)
	assert.Equal(t, "2 weeks", updated.EstimatedDuration)
	assert.Equal(t, project.Deliverables, updated.IncludedServices)
	assert.True(t, updated.LastUpdate.After(project.CreatedAt) || updated.LastUpdate.Equal(project.CreatedAt))
}

func TestApplyUpdateDeclineKeepsQuoteFields(t *testing.T) {
	store := openTestStore(t)
	project := createTestProject(t, store)
	ctx := context.Background()

	accept := lifecycle.RespondToRequest(project, lifecycle.Response{
		Kind:              lifecycle.KindAccept,
		QuotedPrice:       "$750",
		EstimatedDuration: "3 weeks",
	}, time.Now().UTC())
	_, err := store.ApplyUpdate(ctx, project.ID, accept)
	require.NoError(t, err)

	decline := lifecycle.DecideQuote(false, time.Now().UTC())
	updated, err := store.ApplyUpdate(ctx, project.ID, decline)
	require.NoError(t, err)

	assert.Equal(t, models.StatusDeclined, updated.Status)
	assert.Equal(t, lifecycle.QuoteDeclinedMessage, updated.LastMessage)
	// Quote fields are untouched, not cleared.
	assert.Equal(t, "$750", updated.QuotedPrice)
	assert.Equal(t, "3 weeks", updated.EstimatedDuration)
}

func TestApplyUpdateMissingProject(t *testing.T) {
	store := openTestStore(t)
	_, err := store.ApplyUpdate(context.Background(), "missing", lifecycle.DecideQuote(true, time.Now()))
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestAddCommentPreservesInsertionOrder(t *testing.T) {
	store := openTestStore(t)
	project := createTestProject(t, store)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)

	for i, text := range []string{"first note", "second note", "third note"} {
		_, err := store.AddComment(ctx, project.ID, models.Comment{
			ID:        text,
			Text:      text,
			Author:    "Avery",
			AuthorID:  "client-1",
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}

	got, err := store.GetProject(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, got.Comments, 3)
	assert.Equal(t, "first note", got.Comments[0].Text)
	assert.Equal(t, "second note", got.Comments[1].Text)
	assert.Equal(t, "third note", got.Comments[2].Text)
	assert.True(t, got.LastUpdate.After(project.LastUpdate))
}

func TestAddCommentMissingProject(t *testing.T) {
	store := openTestStore(t)
	_, err := store.AddComment(context.Background(), "missing", models.Comment{ID: "c1", Text: "hello", CreatedAt: time.Now()})
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestDeleteProjectCascadesToComments(t *testing.T) {
	store := openTestStore(t)
	project := createTestProject(t, store)
	ctx := context.Background()

	_, err := store.AddComment(ctx, project.ID, models.Comment{ID: "c1", Text: "note", Author: "Avery", AuthorID: "client-1", CreatedAt: time.Now().UTC()})
	require.NoError(t, err)

	require.NoError(t, store.DeleteProject(ctx, project.ID))

	_, err = store.GetProject(ctx, project.ID)
	assert.ErrorIs(t, err, ErrProjectNotFound)

	comments, err := store.listComments(ctx, project.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	assert.ErrorIs(t, store.DeleteProject(ctx, project.ID), ErrProjectNotFound)
}

func TestListProjectsForFiltersByRole(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	createTestProject(t, store)

	clientView, err := store.ListProjectsFor(ctx, "client-1", models.RoleClient)
	require.NoError(t, err)
	assert.Len(t, clientView, 1)

	videoView, err := store.ListProjectsFor(ctx, "video-1", models.RoleVideographer)
	require.NoError(t, err)
	assert.Len(t, videoView, 1)

	stranger, err := store.ListProjectsFor(ctx, "someone-else", models.RoleClient)
	require.NoError(t, err)
	assert.Empty(t, stranger)
}

func TestUsersByRole(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, err := store.CreateUser(ctx, models.User{
		Name:  "Avery",
		Email: "avery@example.com",
		Role:  models.RoleClient,
	}, "hash-a")
	require.NoError(t, err)

	video, err := store.CreateUser(ctx, models.User{
		Name:        "Dana",
		Email:       "dana@example.com",
		Role:        models.RoleVideographer,
		Specialties: []string{"weddings", "events"},
		Rating:      4.8,
	}, "hash-b")
	require.NoError(t, err)

	videographers, err := store.ListUsersByRole(ctx, models.RoleVideographer)
	require.NoError(t, err)
	require.Len(t, videographers, 1)
	assert.Equal(t, video.ID, videographers[0].ID)
	assert.Equal(t, []string{"weddings", "events"}, videographers[0].Specialties)
}

func TestGetUserByEmail(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	created, err := store.CreateUser(ctx, models.User{
		Name:  "Avery",
		Email: "Avery@Example.com",
		Role:  models.RoleClient,
	}, "stored-hash")
	require.NoError(t, err)

	user, hash, err := store.GetUserByEmail(ctx, "avery@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
	assert.Equal(t, "stored-hash", hash)

	_, _, err = store.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
