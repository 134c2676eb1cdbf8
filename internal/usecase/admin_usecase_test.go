package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hiawto/internal/domain/entity"
)

func seedThread(t *testing.T, repo *fakeThreadRepo, id, threadType string, participants ...string) {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), &entity.Thread{
		ID:           id,
		Participants: participants,
		Type:         threadType,
		UnreadCounts: map[string]int{},
	}))
}

func TestBulkDeleteThreadsSkipsMissingIDs(t *testing.T) {
	threadRepo := newFakeThreadRepo()
	seedThread(t, threadRepo, "t1", entity.ThreadTypeDirect, "alice", "bob")
	seedThread(t, threadRepo, "t2", entity.ThreadTypeDirect, "alice", "carol")

	uc := NewAdminUseCase(threadRepo, newFakeListingRepo(), newFakeUserRepo(), newFakeFraudReviewRepo())

	// "ghost" never existed; the batch still completes.
	result, err := uc.BulkDeleteThreads(context.Background(), []string{"t1", "ghost", "t2"})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Requested)
	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, []string{"ghost"}, result.Skipped)

	_, total, err := threadRepo.ListAll(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestBulkDeleteThreadsIdempotentOnRepeat(t *testing.T) {
	threadRepo := newFakeThreadRepo()
	seedThread(t, threadRepo, "t1", entity.ThreadTypeDirect, "alice", "bob")

	uc := NewAdminUseCase(threadRepo, newFakeListingRepo(), newFakeUserRepo(), newFakeFraudReviewRepo())
	ids := []string{"t1"}

	first, err := uc.BulkDeleteThreads(context.Background(), ids)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Succeeded)

	// Second click on a stale admin page.
	second, err := uc.BulkDeleteThreads(context.Background(), ids)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Succeeded)
	assert.Equal(t, []string{"t1"}, second.Skipped)
}

func TestAssignSupportThreads(t *testing.T) {
	threadRepo := newFakeThreadRepo()
	seedThread(t, threadRepo, "s1", entity.ThreadTypeSupport, "alice")
	seedThread(t, threadRepo, "d1", entity.ThreadTypeDirect, "alice", "bob")

	agent := &entity.User{ID: "agent1", Username: "agent1", Role: entity.RoleAgent, Status: "active"}
	uc := NewAdminUseCase(threadRepo, newFakeListingRepo(), newFakeUserRepo(agent), newFakeFraudReviewRepo())

	result, err := uc.AssignSupportThreads(context.Background(), []string{"s1", "d1"}, "agent1")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, []string{"d1"}, result.Skipped)

	thread, err := threadRepo.GetByID(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "agent1", thread.AssignedTo)
}

func TestAssignSupportThreadsRejectsNonAgent(t *testing.T) {
	buyer := &entity.User{ID: "buyer1", Username: "buyer1", Role: entity.RoleBuyer, Status: "active"}
	uc := NewAdminUseCase(newFakeThreadRepo(), newFakeListingRepo(), newFakeUserRepo(buyer), newFakeFraudReviewRepo())

	_, err := uc.AssignSupportThreads(context.Background(), []string{"s1"}, "buyer1")
	require.Error(t, err)
}

func TestModerateListing(t *testing.T) {
	listing := &entity.Listing{ID: "l1", SellerID: "bob", Status: entity.ListingStatusPendingReview}
	listingRepo := newFakeListingRepo(listing)
	uc := NewAdminUseCase(newFakeThreadRepo(), listingRepo, newFakeUserRepo(), newFakeFraudReviewRepo())
	ctx := context.Background()

	approved, err := uc.ModerateListing(ctx, "admin1", "l1", "approve")
	require.NoError(t, err)
	assert.Equal(t, entity.ListingStatusActive, approved.Status)

	flagged, err := uc.ModerateListing(ctx, "admin1", "l1", "flag")
	require.NoError(t, err)
	assert.Equal(t, entity.ListingStatusFlagged, flagged.Status)

	restored, err := uc.ModerateListing(ctx, "admin1", "l1", "unflag")
	require.NoError(t, err)
	assert.Equal(t, entity.ListingStatusActive, restored.Status)

	_, err = uc.ModerateListing(ctx, "admin1", "l1", "approve")
	require.Error(t, err)

	_, err = uc.ModerateListing(ctx, "admin1", "l1", "launch")
	require.Error(t, err)
}

func TestSuspendUser(t *testing.T) {
	target := &entity.User{ID: "bob", Username: "bob", Role: entity.RoleSeller, Status: "active"}
	admin := &entity.User{ID: "admin1", Username: "admin1", Role: entity.RoleAdmin, Status: "active"}
	uc := NewAdminUseCase(newFakeThreadRepo(), newFakeListingRepo(), newFakeUserRepo(target, admin), newFakeFraudReviewRepo())
	ctx := context.Background()

	suspended, err := uc.SuspendUser(ctx, "admin1", "bob", true)
	require.NoError(t, err)
	assert.Equal(t, "suspended", suspended.Status)

	restored, err := uc.SuspendUser(ctx, "admin1", "bob", false)
	require.NoError(t, err)
	assert.Equal(t, "active", restored.Status)

	_, err = uc.SuspendUser(ctx, "admin1", "admin1", true)
	require.Error(t, err)

	_, err = uc.SuspendUser(ctx, "admin2", "admin1", true)
	require.Error(t, err)
}

func TestGetAnalytics(t *testing.T) {
	now := time.Now()
	listingRepo := newFakeListingRepo(
		&entity.Listing{ID: "l1", Status: entity.ListingStatusActive},
		&entity.Listing{ID: "l2", Status: entity.ListingStatusActive},
		&entity.Listing{ID: "l3", Status: entity.ListingStatusDraft},
	)
	userRepo := newFakeUserRepo(
		&entity.User{ID: "u1", CreatedAt: now.AddDate(0, 0, -2)},
		&entity.User{ID: "u2", CreatedAt: now.AddDate(0, 0, -20)},
		&entity.User{ID: "u3", CreatedAt: now.AddDate(0, 0, -90)},
	)
	threadRepo := newFakeThreadRepo()
	seedThread(t, threadRepo, "t1", entity.ThreadTypeDirect, "u1", "u2")
	require.NoError(t, threadRepo.CreateMessage(context.Background(), &entity.Message{ThreadID: "t1", SenderID: "u1", Text: "hi"}))
	require.NoError(t, threadRepo.CreateMessage(context.Background(), &entity.Message{ThreadID: "t1", SenderID: "u2", Text: "hello"}))

	reviewRepo := newFakeFraudReviewRepo()
	require.NoError(t, reviewRepo.Create(context.Background(), &entity.FraudReview{ID: "fr1", Status: entity.FraudReviewPending}))
	require.NoError(t, reviewRepo.Create(context.Background(), &entity.FraudReview{ID: "fr2", Status: entity.FraudReviewCleared}))

	uc := NewAdminUseCase(threadRepo, listingRepo, userRepo, reviewRepo)

	summary, err := uc.GetAnalytics(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, summary.ListingsByStatus[entity.ListingStatusActive])
	assert.EqualValues(t, 1, summary.ListingsByStatus[entity.ListingStatusDraft])
	assert.EqualValues(t, 1, summary.TotalThreads)
	assert.EqualValues(t, 2, summary.TotalMessages)
	assert.EqualValues(t, 1, summary.OpenFraudReviews)
	assert.EqualValues(t, 1, summary.NewUsers7d)
	assert.EqualValues(t, 2, summary.NewUsers30d)
}
