package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hiawto/internal/domain/entity"
	ws "hiawto/internal/infrastructure/websocket"
	"hiawto/pkg/errors"
	"hiawto/pkg/swipe"
)

func newTestUsers() (*entity.User, *entity.User) {
	now := time.Now().Add(-30 * 24 * time.Hour)
	alice := &entity.User{ID: "alice", Email: "alice@example.com", Username: "alice", Role: entity.RoleBuyer, Status: "active", CreatedAt: now}
	bob := &entity.User{ID: "bob", Email: "bob@example.com", Username: "bob", Role: entity.RoleSeller, Status: "active", CreatedAt: now}
	return alice, bob
}

func newMessagingFixture(t *testing.T) (*MessagingUseCase, *fakeThreadRepo, *fakeUserRepo, *fakeListingRepo) {
	t.Helper()
	alice, bob := newTestUsers()
	threadRepo := newFakeThreadRepo()
	userRepo := newFakeUserRepo(alice, bob)
	listingRepo := newFakeListingRepo()
	uc := NewMessagingUseCase(threadRepo, userRepo, listingRepo, &fakeAssistant{draft: "Sounds good!"}, ws.NewManager())
	return uc, threadRepo, userRepo, listingRepo
}

func TestEnsureThreadCreatesNewEveryTime(t *testing.T) {
	uc, _, _, _ := newMessagingFixture(t)
	ctx := context.Background()

	first, err := uc.EnsureThread(ctx, "alice", EnsureThreadInput{OtherUserID: "bob"})
	require.NoError(t, err)
	second, err := uc.EnsureThread(ctx, "alice", EnsureThreadInput{OtherUserID: "bob"})
	require.NoError(t, err)

	// Same participants, still two distinct threads.
	assert.NotEqual(t, first.ID, second.ID)
	assert.ElementsMatch(t, []string{"alice", "bob"}, first.Participants)
}

func TestEnsureThreadReturnsExistingByID(t *testing.T) {
	uc, _, _, _ := newMessagingFixture(t)
	ctx := context.Background()

	created, err := uc.EnsureThread(ctx, "alice", EnsureThreadInput{OtherUserID: "bob"})
	require.NoError(t, err)

	found, err := uc.EnsureThread(ctx, "alice", EnsureThreadInput{ThreadID: created.ID})
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = uc.EnsureThread(ctx, "alice", EnsureThreadInput{ThreadID: "missing"})
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", err.(*errors.AppError).Code)
}

func TestEnsureThreadRejectsOutsiders(t *testing.T) {
	uc, _, _, _ := newMessagingFixture(t)
	ctx := context.Background()

	created, err := uc.EnsureThread(ctx, "alice", EnsureThreadInput{OtherUserID: "bob"})
	require.NoError(t, err)

	userRepoAdd(t, uc, &entity.User{ID: "mallory", Username: "mallory", Role: entity.RoleBuyer, Status: "active"})
	_, err = uc.EnsureThread(ctx, "mallory", EnsureThreadInput{ThreadID: created.ID})
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", err.(*errors.AppError).Code)
}

func userRepoAdd(t *testing.T, uc *MessagingUseCase, user *entity.User) {
	t.Helper()
	require.NoError(t, uc.userRepo.Create(context.Background(), user))
}

func TestSendMessageIncompleteInputIsSilentlyIgnored(t *testing.T) {
	uc, threadRepo, _, _ := newMessagingFixture(t)
	ctx := context.Background()

	thread, err := uc.EnsureThread(ctx, "alice", EnsureThreadInput{OtherUserID: "bob"})
	require.NoError(t, err)

	msg, err := uc.SendMessage(ctx, "alice", SendMessageInput{ThreadID: "", Text: "hi"})
	require.NoError(t, err)
	assert.Nil(t, msg)

	msg, err = uc.SendMessage(ctx, "alice", SendMessageInput{ThreadID: thread.ID, Text: "   "})
	require.NoError(t, err)
	assert.Nil(t, msg)

	_, total, err := threadRepo.ListMessages(ctx, thread.ID, 0, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestSendMessageBumpsRecipientUnreadOnly(t *testing.T) {
	uc, threadRepo, _, _ := newMessagingFixture(t)
	ctx := context.Background()

	thread, err := uc.EnsureThread(ctx, "alice", EnsureThreadInput{OtherUserID: "bob"})
	require.NoError(t, err)

	_, err = uc.SendMessage(ctx, "alice", SendMessageInput{ThreadID: thread.ID, Text: "hello"})
	require.NoError(t, err)
	_, err = uc.SendMessage(ctx, "alice", SendMessageInput{ThreadID: thread.ID, Text: "anyone home?"})
	require.NoError(t, err)

	stored, err := threadRepo.GetByID(ctx, thread.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.UnreadCounts["bob"])
	assert.Equal(t, 0, stored.UnreadCounts["alice"])
	assert.Equal(t, "anyone home?", stored.LastMessageText)
	require.NotNil(t, stored.LastMessageAt)
}

func TestSendMessageStripsMarkup(t *testing.T) {
	uc, _, _, _ := newMessagingFixture(t)
	ctx := context.Background()

	thread, err := uc.EnsureThread(ctx, "alice", EnsureThreadInput{OtherUserID: "bob"})
	require.NoError(t, err)

	msg, err := uc.SendMessage(ctx, "alice", SendMessageInput{
		ThreadID: thread.ID,
		Text:     `<script>alert(1)</script>see the unit today?`,
	})
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, "see the unit today?", msg.Text)
	assert.Contains(t, msg.SeenBy, "alice")
}

func TestMessagesOrderedOldestFirst(t *testing.T) {
	uc, _, _, _ := newMessagingFixture(t)
	ctx := context.Background()

	thread, err := uc.EnsureThread(ctx, "alice", EnsureThreadInput{OtherUserID: "bob"})
	require.NoError(t, err)

	for _, text := range []string{"one", "two", "three"} {
		_, err := uc.SendMessage(ctx, "alice", SendMessageInput{ThreadID: thread.ID, Text: text})
		require.NoError(t, err)
	}

	messages, total, err := uc.ListMessages(ctx, "bob", thread.ID, 0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, messages, 3)
	assert.Equal(t, "one", messages[0].Text)
	assert.Equal(t, "three", messages[2].Text)
}

func TestMarkThreadSeenZeroesUnread(t *testing.T) {
	uc, threadRepo, _, _ := newMessagingFixture(t)
	ctx := context.Background()

	thread, err := uc.EnsureThread(ctx, "alice", EnsureThreadInput{OtherUserID: "bob"})
	require.NoError(t, err)
	_, err = uc.SendMessage(ctx, "alice", SendMessageInput{ThreadID: thread.ID, Text: "ping"})
	require.NoError(t, err)

	require.NoError(t, uc.MarkThreadSeen(ctx, "bob", thread.ID))

	stored, err := threadRepo.GetByID(ctx, thread.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.UnreadCounts["bob"])
}

func TestSetTypingHasNoTTL(t *testing.T) {
	uc, threadRepo, _, _ := newMessagingFixture(t)
	ctx := context.Background()

	thread, err := uc.EnsureThread(ctx, "alice", EnsureThreadInput{OtherUserID: "bob"})
	require.NoError(t, err)

	require.NoError(t, uc.SetTyping(ctx, "alice", thread.ID, true))

	stored, err := threadRepo.GetByID(ctx, thread.ID)
	require.NoError(t, err)
	assert.True(t, stored.Typing["alice"])

	require.NoError(t, uc.SetTyping(ctx, "alice", thread.ID, false))
	stored, err = threadRepo.GetByID(ctx, thread.ID)
	require.NoError(t, err)
	assert.False(t, stored.Typing["alice"])
}

func TestReactToMessageToggles(t *testing.T) {
	uc, _, _, _ := newMessagingFixture(t)
	ctx := context.Background()

	thread, err := uc.EnsureThread(ctx, "alice", EnsureThreadInput{OtherUserID: "bob"})
	require.NoError(t, err)
	msg, err := uc.SendMessage(ctx, "alice", SendMessageInput{ThreadID: thread.ID, Text: "deal?"})
	require.NoError(t, err)

	require.NoError(t, uc.ReactToMessage(ctx, "bob", thread.ID, msg.ID, "👍"))
	stored, err := uc.threadRepo.GetMessageByID(ctx, thread.ID, msg.ID)
	require.NoError(t, err)
	require.Len(t, stored.Reactions["👍"], 1)
	assert.Equal(t, "bob", stored.Reactions["👍"][0].UID)

	require.NoError(t, uc.ReactToMessage(ctx, "bob", thread.ID, msg.ID, "👍"))
	stored, err = uc.threadRepo.GetMessageByID(ctx, thread.ID, msg.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Reactions["👍"])
}

func TestResolveSwipeThresholds(t *testing.T) {
	uc, threadRepo, _, _ := newMessagingFixture(t)
	ctx := context.Background()

	thread, err := uc.EnsureThread(ctx, "alice", EnsureThreadInput{OtherUserID: "bob"})
	require.NoError(t, err)

	// Short drag snaps back, nothing happens.
	action, err := uc.ResolveSwipe(ctx, "alice", thread.ID, 30)
	require.NoError(t, err)
	assert.Equal(t, swipe.ActionNone, action)

	// Long right swipe marks unread for the swiping user.
	action, err = uc.ResolveSwipe(ctx, "alice", thread.ID, 80)
	require.NoError(t, err)
	assert.Equal(t, swipe.ActionMarkUnread, action)
	stored, err := threadRepo.GetByID(ctx, thread.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.UnreadCounts["alice"])

	// Mid-range left swipe only reveals the delete affordance.
	action, err = uc.ResolveSwipe(ctx, "alice", thread.ID, -80)
	require.NoError(t, err)
	assert.Equal(t, swipe.ActionRevealDelete, action)
	_, err = threadRepo.GetByID(ctx, thread.ID)
	require.NoError(t, err)

	// Past the commit point the thread goes away.
	action, err = uc.ResolveSwipe(ctx, "alice", thread.ID, -150)
	require.NoError(t, err)
	assert.Equal(t, swipe.ActionDelete, action)
	_, err = threadRepo.GetByID(ctx, thread.ID)
	require.Error(t, err)
}

func TestDeleteThreadRemovesMessages(t *testing.T) {
	uc, threadRepo, _, _ := newMessagingFixture(t)
	ctx := context.Background()

	thread, err := uc.EnsureThread(ctx, "alice", EnsureThreadInput{OtherUserID: "bob"})
	require.NoError(t, err)
	_, err = uc.SendMessage(ctx, "alice", SendMessageInput{ThreadID: thread.ID, Text: "bye"})
	require.NoError(t, err)

	require.NoError(t, uc.DeleteThread(ctx, "alice", thread.ID, false))

	_, err = threadRepo.GetByID(ctx, thread.ID)
	require.Error(t, err)
	msgs, total, err := threadRepo.ListMessages(ctx, thread.ID, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, msgs)
	assert.Zero(t, total)
}

func TestDraftReplyHonorsCancellation(t *testing.T) {
	alice, bob := newTestUsers()
	threadRepo := newFakeThreadRepo()
	userRepo := newFakeUserRepo(alice, bob)
	assistant := &fakeAssistant{draft: "slow", delay: time.Second}
	uc := NewMessagingUseCase(threadRepo, userRepo, newFakeListingRepo(), assistant, ws.NewManager())
	ctx := context.Background()

	thread, err := uc.EnsureThread(ctx, "alice", EnsureThreadInput{OtherUserID: "bob"})
	require.NoError(t, err)
	_, err = uc.SendMessage(ctx, "alice", SendMessageInput{ThreadID: thread.ID, Text: "is the unit still open?"})
	require.NoError(t, err)

	cancelCtx, cancel := context.WithCancel(ctx)
	cancel()
	_, err = uc.DraftReply(cancelCtx, "bob", thread.ID)
	require.Error(t, err)
	assert.Equal(t, "CANCELLED", err.(*errors.AppError).Code)
}

func TestDraftReplyReturnsDraft(t *testing.T) {
	uc, _, _, _ := newMessagingFixture(t)
	ctx := context.Background()

	thread, err := uc.EnsureThread(ctx, "alice", EnsureThreadInput{OtherUserID: "bob"})
	require.NoError(t, err)
	_, err = uc.SendMessage(ctx, "alice", SendMessageInput{ThreadID: thread.ID, Text: "is the unit still open?"})
	require.NoError(t, err)

	draft, err := uc.DraftReply(ctx, "bob", thread.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sounds good!", draft)
}
