package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/engagement-backend/internal/domain/valueobject"
	"github.com/ignatzorin/engagement-backend/internal/models"
	"github.com/ignatzorin/engagement-backend/internal/pkg/apperror"
)

func postFeedback(t *testing.T, repo *FeedbackRepository, deliverableID, authorID uuid.UUID, parentID *uuid.UUID, body string) *models.FeedbackItem {
	t.Helper()
	item := &models.FeedbackItem{
		DeliverableID: deliverableID,
		AuthorID:      authorID,
		ParentID:      parentID,
		Kind:          valueobject.FeedbackKindComment,
		Body:          body,
	}
	require.NoError(t, repo.Create(context.Background(), item))
	return item
}

func TestFeedbackRepository_Thread(t *testing.T) {
	conn := testDB(t)
	f := startedEngagement(t, conn, false)
	version := submitVersion(t, conn, f, "v1")
	repo := NewFeedbackRepository(conn)
	ctx := context.Background()

	first := postFeedback(t, repo, version.ID, f.ClientID, nil, "Первый")
	second := postFeedback(t, repo, version.ID, f.ClientID, nil, "Второй")
	replyA := postFeedback(t, repo, version.ID, f.FreelancerID, &first.ID, "Ответ A")
	replyB := postFeedback(t, repo, version.ID, f.ClientID, &first.ID, "Ответ B")

	items, total, err := repo.ListThread(ctx, version.ID, true, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, items, 2)
	assert.Equal(t, second.ID, items[0].ID)
	assert.Equal(t, first.ID, items[1].ID)
	require.Len(t, items[1].Replies, 2)
	assert.Equal(t, replyA.ID, items[1].Replies[0].ID)
	assert.Equal(t, replyB.ID, items[1].Replies[1].ID)
	assert.Empty(t, items[0].Replies)

	unresolved, err := repo.CountUnresolved(ctx, version.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, unresolved)

	_, err = repo.SetResolved(ctx, replyA.ID, true)
	require.NoError(t, err)
	_, err = repo.SetResolved(ctx, second.ID, true)
	require.NoError(t, err)

	items, total, err = repo.ListThread(ctx, version.ID, false, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	require.Len(t, items[0].Replies, 1)
	assert.Equal(t, replyB.ID, items[0].Replies[0].ID)

	unresolved, err = repo.CountUnresolved(ctx, version.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, unresolved)
}

func TestFeedbackRepository_ParentFromOtherDeliverable(t *testing.T) {
	conn := testDB(t)
	f := startedEngagement(t, conn, false)
	v1 := submitVersion(t, conn, f, "v1")
	v2 := submitVersion(t, conn, f, "v2")
	repo := NewFeedbackRepository(conn)

	parent := postFeedback(t, repo, v1.ID, f.ClientID, nil, "К первой версии")

	err := repo.Create(context.Background(), &models.FeedbackItem{
		DeliverableID: v2.ID,
		AuthorID:      f.ClientID,
		ParentID:      &parent.ID,
		Kind:          valueobject.FeedbackKindComment,
		Body:          "Ответ не туда",
	})
	assert.ErrorIs(t, err, apperror.ErrUnknownParent)

	missing := uuid.New()
	err = repo.Create(context.Background(), &models.FeedbackItem{
		DeliverableID: v2.ID,
		AuthorID:      f.ClientID,
		ParentID:      &missing,
		Kind:          valueobject.FeedbackKindComment,
		Body:          "Ответ в пустоту",
	})
	assert.ErrorIs(t, err, apperror.ErrUnknownParent)
}

func TestFeedbackRepository_ResolveKeepsTimestamp(t *testing.T) {
	conn := testDB(t)
	f := startedEngagement(t, conn, false)
	version := submitVersion(t, conn, f, "v1")
	repo := NewFeedbackRepository(conn)
	ctx := context.Background()
	item := postFeedback(t, repo, version.ID, f.ClientID, nil, "Проверить отступы")

	resolved, err := repo.SetResolved(ctx, item.ID, true)
	require.NoError(t, err)
	require.NotNil(t, resolved.ResolvedAt)

	again, err := repo.SetResolved(ctx, item.ID, true)
	require.NoError(t, err)
	assert.True(t, resolved.ResolvedAt.Equal(*again.ResolvedAt))

	reopened, err := repo.SetResolved(ctx, item.ID, false)
	require.NoError(t, err)
	assert.False(t, reopened.IsResolved)
	assert.Nil(t, reopened.ResolvedAt)

	_, err = repo.SetResolved(ctx, uuid.New(), true)
	assert.ErrorIs(t, err, apperror.ErrFeedbackNotFound)
}
