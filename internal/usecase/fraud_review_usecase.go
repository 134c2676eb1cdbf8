package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"strings"
	"time"

	"hiawto/internal/domain/entity"
	"hiawto/internal/domain/repository"
	"hiawto/pkg/errors"
)

type FraudReviewUseCase struct {
	reviewRepo  repository.FraudReviewRepository
	listingRepo repository.ListingRepository
	userRepo    repository.UserRepository
}

func NewFraudReviewUseCase(
	reviewRepo repository.FraudReviewRepository,
	listingRepo repository.ListingRepository,
	userRepo repository.UserRepository,
) *FraudReviewUseCase {
	return &FraudReviewUseCase{
		reviewRepo:  reviewRepo,
		listingRepo: listingRepo,
		userRepo:    userRepo,
	}
}

var scamKeywords = []string{
	"wire transfer", "western union", "gift card", "no lease needed",
	"send deposit", "overseas", "cash only asap",
}

// AnalyzeListing scores a listing for fraud signals and opens a pending
// review when the score warrants one.
func (uc *FraudReviewUseCase) AnalyzeListing(ctx context.Context, listingID string) (*entity.FraudReview, error) {
	listing, err := uc.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, errors.NotFound("Listing", err)
	}

	seller, err := uc.userRepo.GetByID(ctx, listing.SellerID)
	if err != nil {
		return nil, errors.NotFound("Seller", err)
	}

	review := &entity.FraudReview{
		EntityType: "listing",
		EntityID:   listingID,
		Flags:      []string{},
		Reasons:    []string{},
		Status:     entity.FraudReviewPending,
	}

	// 1. NEW SELLER RISK
	if time.Since(seller.CreatedAt) < 7*24*time.Hour {
		review.Score += 0.2
		review.Flags = append(review.Flags, "new_seller")
		review.Reasons = append(review.Reasons, "Seller account created less than 7 days ago")
	}

	// 2. PRICE ANOMALIES
	if listing.Price > 0 && listing.Price < 10000 {
		review.Score += 0.3
		review.Flags = append(review.Flags, "suspicious_price")
		review.Reasons = append(review.Reasons, "Sale price far below plausible market value")
	}
	if listing.Rent > 0 && listing.Rent < 200 {
		review.Score += 0.3
		review.Flags = append(review.Flags, "suspicious_rent")
		review.Reasons = append(review.Reasons, "Monthly rent far below plausible market value")
	}
	if listing.Price > 0 && listing.Rent > 0 && listing.Rent > listing.Price {
		review.Score += 0.4
		review.Flags = append(review.Flags, "inconsistent_pricing")
		review.Reasons = append(review.Reasons, "Monthly rent exceeds total sale price")
	}

	// 3. SCAM LANGUAGE
	description := strings.ToLower(listing.Description)
	for _, keyword := range scamKeywords {
		if strings.Contains(description, keyword) {
			review.Score += 0.25
			review.Flags = append(review.Flags, "scam_keyword")
			review.Reasons = append(review.Reasons, fmt.Sprintf("Description contains %q", keyword))
			break
		}
	}

	// 4. BARE LISTING
	if len(listing.Photos) == 0 && listing.Status == entity.ListingStatusActive {
		review.Score += 0.15
		review.Flags = append(review.Flags, "no_photos")
		review.Reasons = append(review.Reasons, "Active listing has no photos")
	}

	// 5. SELLER ACCOUNT STATE
	if seller.Status != "active" {
		review.Score += 0.2
		review.Flags = append(review.Flags, "inactive_seller")
		review.Reasons = append(review.Reasons, "Seller account is not active")
	}

	uc.calculateRiskLevel(review)

	log.Printf("Fraud analysis for listing %s: Score=%.2f, Risk=%s", listingID, review.Score, review.RiskLevel)

	// Clean listings do not open a review.
	if review.Score < 0.2 {
		return review, nil
	}

	now := time.Now()
	review.CreatedAt = now
	review.UpdatedAt = now
	if err := uc.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}

	// Critical scores pull the listing from the browse page immediately.
	if review.RiskLevel == "critical" {
		if err := uc.listingRepo.SetStatus(ctx, listingID, entity.ListingStatusFlagged); err != nil {
			log.Printf("Failed to flag listing %s after critical fraud score: %v", listingID, err)
		}
	}

	return review, nil
}

func (uc *FraudReviewUseCase) calculateRiskLevel(review *entity.FraudReview) {
	if review.Score >= 0.8 {
		review.RiskLevel = "critical"
	} else if review.Score >= 0.6 {
		review.RiskLevel = "high"
	} else if review.Score >= 0.4 {
		review.RiskLevel = "medium"
	} else {
		review.RiskLevel = "low"
	}
}

func (uc *FraudReviewUseCase) ListReviews(ctx context.Context, status string, limit, offset int) ([]*entity.FraudReview, int64, error) {
	return uc.reviewRepo.ListByStatus(ctx, status, limit, offset)
}

// ResolveReview closes a pending review. A "blocked" decision also flags
// the underlying listing.
func (uc *FraudReviewUseCase) ResolveReview(ctx context.Context, adminID, reviewID, decision string) (*entity.FraudReview, error) {
	if decision != entity.FraudReviewCleared && decision != entity.FraudReviewBlocked {
		return nil, errors.BadRequest("Decision must be cleared or blocked", nil)
	}

	review, err := uc.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, errors.NotFound("Fraud review", err)
	}
	if review.Status != entity.FraudReviewPending {
		return nil, errors.Conflict("Review has already been resolved")
	}

	review.Status = decision
	review.ReviewedBy = adminID
	review.UpdatedAt = time.Now()
	if err := uc.reviewRepo.Update(ctx, review); err != nil {
		return nil, err
	}

	if decision == entity.FraudReviewBlocked && review.EntityType == "listing" {
		if err := uc.listingRepo.SetStatus(ctx, review.EntityID, entity.ListingStatusFlagged); err != nil {
			log.Printf("Failed to flag listing %s after block decision: %v", review.EntityID, err)
		}
	}

	log.Printf("Fraud review %s resolved as %s by admin %s", reviewID, decision, adminID)
	return review, nil
}

// ExportCSV renders pending and resolved reviews of one status as CSV for
// offline triage.
func (uc *FraudReviewUseCase) ExportCSV(ctx context.Context, status string) ([]byte, error) {
	reviews, _, err := uc.reviewRepo.ListByStatus(ctx, status, 0, 0)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"id", "entity_type", "entity_id", "score", "risk_level", "flags", "status", "reviewed_by", "created_at"}); err != nil {
		return nil, err
	}
	for _, review := range reviews {
		record := []string{
			review.ID,
			review.EntityType,
			review.EntityID,
			fmt.Sprintf("%.2f", review.Score),
			review.RiskLevel,
			strings.Join(review.Flags, "|"),
			review.Status,
			review.ReviewedBy,
			review.CreatedAt.Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
