package usecase

import (
	"context"
	"log"
	"time"

	"hiawto/internal/domain/entity"
	"hiawto/internal/domain/repository"
	"hiawto/pkg/errors"
)

type AdminUseCase struct {
	threadRepo  repository.ThreadRepository
	listingRepo repository.ListingRepository
	userRepo    repository.UserRepository
	reviewRepo  repository.FraudReviewRepository
}

func NewAdminUseCase(
	threadRepo repository.ThreadRepository,
	listingRepo repository.ListingRepository,
	userRepo repository.UserRepository,
	reviewRepo repository.FraudReviewRepository,
) *AdminUseCase {
	return &AdminUseCase{
		threadRepo:  threadRepo,
		listingRepo: listingRepo,
		userRepo:    userRepo,
		reviewRepo:  reviewRepo,
	}
}

type BulkResult struct {
	Requested int      `json:"requested"`
	Succeeded int      `json:"succeeded"`
	Skipped   []string `json:"skipped,omitempty"`
}

// BulkDeleteThreads deletes threads one at a time. IDs that no longer exist
// are skipped and reported, not treated as failures: a second click on a
// stale admin screen should finish cleanly.
func (uc *AdminUseCase) BulkDeleteThreads(ctx context.Context, threadIDs []string) (*BulkResult, error) {
	result := &BulkResult{Requested: len(threadIDs)}

	for _, id := range threadIDs {
		if _, err := uc.threadRepo.GetByID(ctx, id); err != nil {
			log.Printf("BulkDeleteThreads: thread %s not found, skipping", id)
			result.Skipped = append(result.Skipped, id)
			continue
		}
		if err := uc.threadRepo.Delete(ctx, id); err != nil {
			log.Printf("BulkDeleteThreads: failed to delete thread %s: %v", id, err)
			result.Skipped = append(result.Skipped, id)
			continue
		}
		result.Succeeded++
	}

	log.Printf("BulkDeleteThreads: %d/%d deleted", result.Succeeded, result.Requested)
	return result, nil
}

// AssignSupportThreads routes a batch of support threads to an agent.
func (uc *AdminUseCase) AssignSupportThreads(ctx context.Context, threadIDs []string, agentID string) (*BulkResult, error) {
	agent, err := uc.userRepo.GetByID(ctx, agentID)
	if err != nil {
		return nil, errors.NotFound("Agent", err)
	}
	if agent.Role != entity.RoleAgent && agent.Role != entity.RoleAdmin {
		return nil, errors.BadRequest("Assignee must be an agent or admin", nil)
	}

	result := &BulkResult{Requested: len(threadIDs)}
	for _, id := range threadIDs {
		thread, err := uc.threadRepo.GetByID(ctx, id)
		if err != nil {
			result.Skipped = append(result.Skipped, id)
			continue
		}
		if thread.Type != entity.ThreadTypeSupport {
			log.Printf("AssignSupportThreads: thread %s is not a support thread, skipping", id)
			result.Skipped = append(result.Skipped, id)
			continue
		}
		if err := uc.threadRepo.SetAssignee(ctx, id, agentID); err != nil {
			log.Printf("AssignSupportThreads: failed to assign thread %s: %v", id, err)
			result.Skipped = append(result.Skipped, id)
			continue
		}
		result.Succeeded++
	}

	return result, nil
}

// ListAllThreads is the admin inbox view across every user.
func (uc *AdminUseCase) ListAllThreads(ctx context.Context, limit, offset int) ([]*entity.Thread, int64, error) {
	return uc.threadRepo.ListAll(ctx, limit, offset)
}

// ModerateListing moves a listing through the review pipeline.
// Allowed decisions: approve (pending_review -> active), flag, unflag.
func (uc *AdminUseCase) ModerateListing(ctx context.Context, adminID, listingID, decision string) (*entity.Listing, error) {
	listing, err := uc.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, errors.NotFound("Listing", err)
	}

	var newStatus string
	switch decision {
	case "approve":
		if listing.Status != entity.ListingStatusPendingReview {
			return nil, errors.BadRequest("Only listings pending review can be approved", nil)
		}
		newStatus = entity.ListingStatusActive
	case "flag":
		newStatus = entity.ListingStatusFlagged
	case "unflag":
		if listing.Status != entity.ListingStatusFlagged {
			return nil, errors.BadRequest("Listing is not flagged", nil)
		}
		newStatus = entity.ListingStatusActive
	default:
		return nil, errors.BadRequest("Unknown moderation decision", nil)
	}

	if err := uc.listingRepo.SetStatus(ctx, listingID, newStatus); err != nil {
		return nil, err
	}

	log.Printf("Listing %s moderated by %s: %s -> %s", listingID, adminID, listing.Status, newStatus)
	listing.Status = newStatus
	return listing, nil
}

// SetFeatured toggles the featured flag used by the browse page.
func (uc *AdminUseCase) SetFeatured(ctx context.Context, listingID string, featured bool) (*entity.Listing, error) {
	listing, err := uc.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, errors.NotFound("Listing", err)
	}

	listing.Featured = featured
	listing.UpdatedAt = time.Now()
	if err := uc.listingRepo.Update(ctx, listing); err != nil {
		return nil, err
	}

	return listing, nil
}

// SuspendUser blocks or restores an account.
func (uc *AdminUseCase) SuspendUser(ctx context.Context, adminID, userID string, suspended bool) (*entity.User, error) {
	if adminID == userID {
		return nil, errors.BadRequest("You cannot suspend your own account", nil)
	}

	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, errors.NotFound("User", err)
	}
	if user.Role == entity.RoleAdmin {
		return nil, errors.Forbidden("Admin accounts cannot be suspended", nil)
	}

	if suspended {
		user.Status = "suspended"
	} else {
		user.Status = "active"
	}
	user.UpdatedAt = time.Now()

	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("User %s %s by admin %s", userID, user.Status, adminID)
	return user, nil
}

type AnalyticsSummary struct {
	ListingsByStatus map[string]int64 `json:"listings_by_status"`
	TotalThreads     int64            `json:"total_threads"`
	TotalMessages    int64            `json:"total_messages"`
	OpenFraudReviews int64            `json:"open_fraud_reviews"`
	NewUsers7d       int64            `json:"new_users_7d"`
	NewUsers30d      int64            `json:"new_users_30d"`
	GeneratedAt      time.Time        `json:"generated_at"`
}

// GetAnalytics builds the admin dashboard summary.
func (uc *AdminUseCase) GetAnalytics(ctx context.Context) (*AnalyticsSummary, error) {
	listingCounts, err := uc.listingRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	_, totalThreads, err := uc.threadRepo.ListAll(ctx, 1, 0)
	if err != nil {
		return nil, err
	}

	totalMessages, err := uc.threadRepo.CountMessages(ctx)
	if err != nil {
		return nil, err
	}

	openReviews, err := uc.reviewRepo.CountByStatus(ctx, entity.FraudReviewPending)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	weekly, err := uc.userRepo.CountCreatedSince(ctx, now.AddDate(0, 0, -7))
	if err != nil {
		return nil, err
	}
	monthly, err := uc.userRepo.CountCreatedSince(ctx, now.AddDate(0, 0, -30))
	if err != nil {
		return nil, err
	}

	return &AnalyticsSummary{
		ListingsByStatus: listingCounts,
		TotalThreads:     totalThreads,
		TotalMessages:    totalMessages,
		OpenFraudReviews: openReviews,
		NewUsers7d:       weekly,
		NewUsers30d:      monthly,
		GeneratedAt:      now,
	}, nil
}
