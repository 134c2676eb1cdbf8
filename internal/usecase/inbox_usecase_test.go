package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hiawto/internal/domain/entity"
	"hiawto/internal/domain/service"
)

func TestInboxSummarySumsUnreadAcrossThreads(t *testing.T) {
	threadRepo := newFakeThreadRepo()
	ctx := context.Background()
	require.NoError(t, threadRepo.Create(ctx, &entity.Thread{
		ID: "t1", Participants: []string{"alice", "bob"}, Type: entity.ThreadTypeDirect,
		UnreadCounts: map[string]int{"alice": 2, "bob": 7},
	}))
	require.NoError(t, threadRepo.Create(ctx, &entity.Thread{
		ID: "t2", Participants: []string{"alice", "carol"}, Type: entity.ThreadTypeDirect,
		UnreadCounts: map[string]int{"alice": 3},
		Typing:       map[string]bool{"carol": true},
	}))
	require.NoError(t, threadRepo.Create(ctx, &entity.Thread{
		ID: "t3", Participants: []string{"alice", "dave"}, Type: entity.ThreadTypeDirect,
		UnreadCounts: map[string]int{},
		Typing:       map[string]bool{"alice": true}, // own typing must not count
	}))

	uc := NewInboxUseCase(threadRepo, newFakeUserRepo(), &fakeAssistant{})

	summary, err := uc.GetSummary(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 5, summary.TotalUnread)
	assert.Equal(t, 2, summary.ThreadUnreads["t1"])
	assert.Equal(t, 3, summary.ThreadUnreads["t2"])
	assert.NotContains(t, summary.ThreadUnreads, "t3")
	assert.Equal(t, 1, summary.TypingThreads["t2"])
	assert.NotContains(t, summary.TypingThreads, "t3")
}

func TestTypingUsersExcludesSelf(t *testing.T) {
	threadRepo := newFakeThreadRepo()
	ctx := context.Background()
	require.NoError(t, threadRepo.Create(ctx, &entity.Thread{
		ID: "t1", Participants: []string{"alice", "bob"}, Type: entity.ThreadTypeDirect,
		Typing: map[string]bool{"alice": true, "bob": true},
	}))
	bob := &entity.User{ID: "bob", Username: "bob"}
	uc := NewInboxUseCase(threadRepo, newFakeUserRepo(bob), &fakeAssistant{})

	users, err := uc.TypingUsers(ctx, "alice", "t1")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "bob", users[0].ID)
}

func TestSearchFiltersToOwnThreads(t *testing.T) {
	threadRepo := newFakeThreadRepo()
	ctx := context.Background()
	require.NoError(t, threadRepo.Create(ctx, &entity.Thread{
		ID: "mine", Participants: []string{"alice", "bob"}, Type: entity.ThreadTypeDirect,
	}))
	require.NoError(t, threadRepo.Create(ctx, &entity.Thread{
		ID: "theirs", Participants: []string{"carol", "dave"}, Type: entity.ThreadTypeDirect,
	}))

	assistant := &fakeAssistant{hits: []service.SearchHit{
		{ThreadID: "mine", MessageID: "m1", Score: 0.9, Text: "lease terms"},
		{ThreadID: "theirs", MessageID: "m2", Score: 0.8, Text: "lease terms"},
		{ThreadID: "deleted", MessageID: "m3", Score: 0.7, Text: "lease terms"},
	}}
	uc := NewInboxUseCase(threadRepo, newFakeUserRepo(), assistant)

	hits, err := uc.Search(ctx, "alice", "lease")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "mine", hits[0].ThreadID)
	assert.Equal(t, "lease", assistant.lastQuery)
}

func TestSearchEmptyQueryShortCircuits(t *testing.T) {
	assistant := &fakeAssistant{}
	uc := NewInboxUseCase(newFakeThreadRepo(), newFakeUserRepo(), assistant)

	hits, err := uc.Search(context.Background(), "alice", "")
	require.NoError(t, err)
	assert.Empty(t, hits)
	assert.Empty(t, assistant.lastQuery)
}
