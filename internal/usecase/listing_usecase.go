package usecase

import (
	"context"
	"log"
	"strings"
	"time"

	"hiawto/internal/domain/entity"
	"hiawto/internal/domain/repository"
	"hiawto/internal/domain/service"
	"hiawto/pkg/errors"
)

type ListingUseCase struct {
	listingRepo repository.ListingRepository
	userRepo    repository.UserRepository
	fileService service.FileUploadService
}

func NewListingUseCase(
	listingRepo repository.ListingRepository,
	userRepo repository.UserRepository,
	fileService service.FileUploadService,
) *ListingUseCase {
	return &ListingUseCase{
		listingRepo: listingRepo,
		userRepo:    userRepo,
		fileService: fileService,
	}
}

type CreateListingInput struct {
	Street      string  `validate:"required"`
	City        string  `validate:"required"`
	State       string  `validate:"required,len=2"`
	Zip         string  `validate:"omitempty,len=5"`
	Description string  `validate:"omitempty,max=5000"`
	Price       float64 `validate:"gte=0"`
	Rent        float64 `validate:"gte=0"`
	Beds        int     `validate:"gte=0,lte=20"`
	Baths       float64 `validate:"gte=0,lte=20"`
	SquareFeet  int     `validate:"gte=0"`
	AgentID     string
}

type UpdateListingInput struct {
	Street      *string
	City        *string
	State       *string
	Zip         *string
	Description *string
	Price       *float64
	Rent        *float64
	Beds        *int
	Baths       *float64
	SquareFeet  *int
}

type BrowseListingsInput struct {
	City     string
	State    string
	MinPrice float64
	MaxPrice float64
	MinBeds  int
	Featured bool
	Sort     string
	Limit    int
	Offset   int
}

func (uc *ListingUseCase) CreateListing(ctx context.Context, sellerID string, input CreateListingInput) (*entity.Listing, error) {
	if input.Price <= 0 && input.Rent <= 0 {
		return nil, errors.BadRequest("Listing needs a sale price or a monthly rent", nil)
	}

	if input.AgentID != "" {
		agent, err := uc.userRepo.GetByID(ctx, input.AgentID)
		if err != nil {
			return nil, errors.NotFound("Agent", err)
		}
		if agent.Role != entity.RoleAgent && agent.Role != entity.RoleAdmin {
			return nil, errors.BadRequest("Assigned agent must have the agent role", nil)
		}
	}

	now := time.Now()
	listing := &entity.Listing{
		SellerID:    sellerID,
		AgentID:     input.AgentID,
		Street:      strings.TrimSpace(input.Street),
		City:        strings.TrimSpace(input.City),
		State:       strings.ToUpper(strings.TrimSpace(input.State)),
		Zip:         strings.TrimSpace(input.Zip),
		Description: strings.TrimSpace(input.Description),
		Price:       input.Price,
		Rent:        input.Rent,
		Beds:        input.Beds,
		Baths:       input.Baths,
		SquareFeet:  input.SquareFeet,
		Photos:      []string{},
		Status:      entity.ListingStatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.listingRepo.Create(ctx, listing); err != nil {
		return nil, err
	}

	log.Printf("Listing %s created by seller %s", listing.ID, sellerID)
	return listing, nil
}

// GetListing fetches a listing and counts the view when someone other than
// the owner looks at it.
func (uc *ListingUseCase) GetListing(ctx context.Context, viewerID, listingID string) (*entity.Listing, error) {
	listing, err := uc.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, errors.NotFound("Listing", err)
	}

	if viewerID != "" && viewerID != listing.SellerID {
		if err := uc.listingRepo.IncrementViews(ctx, listingID); err != nil {
			log.Printf("Failed to count view for listing %s: %v", listingID, err)
		} else {
			listing.Views++
		}
	}

	return listing, nil
}

func (uc *ListingUseCase) UpdateListing(ctx context.Context, userID, listingID string, input UpdateListingInput) (*entity.Listing, error) {
	listing, err := uc.requireEditable(ctx, userID, listingID)
	if err != nil {
		return nil, err
	}

	if input.Street != nil {
		listing.Street = strings.TrimSpace(*input.Street)
	}
	if input.City != nil {
		listing.City = strings.TrimSpace(*input.City)
	}
	if input.State != nil {
		listing.State = strings.ToUpper(strings.TrimSpace(*input.State))
	}
	if input.Zip != nil {
		listing.Zip = strings.TrimSpace(*input.Zip)
	}
	if input.Description != nil {
		listing.Description = strings.TrimSpace(*input.Description)
	}
	if input.Price != nil {
		listing.Price = *input.Price
	}
	if input.Rent != nil {
		listing.Rent = *input.Rent
	}
	if input.Beds != nil {
		listing.Beds = *input.Beds
	}
	if input.Baths != nil {
		listing.Baths = *input.Baths
	}
	if input.SquareFeet != nil {
		listing.SquareFeet = *input.SquareFeet
	}

	if listing.Price <= 0 && listing.Rent <= 0 {
		return nil, errors.BadRequest("Listing needs a sale price or a monthly rent", nil)
	}

	listing.UpdatedAt = time.Now()
	if err := uc.listingRepo.Update(ctx, listing); err != nil {
		return nil, err
	}

	return listing, nil
}

// SubmitForReview moves a draft into the moderation queue.
func (uc *ListingUseCase) SubmitForReview(ctx context.Context, userID, listingID string) (*entity.Listing, error) {
	listing, err := uc.requireEditable(ctx, userID, listingID)
	if err != nil {
		return nil, err
	}

	if listing.Status != entity.ListingStatusDraft && listing.Status != entity.ListingStatusFlagged {
		return nil, errors.BadRequest("Only draft or flagged listings can be submitted for review", nil)
	}
	if len(listing.Photos) == 0 {
		return nil, errors.BadRequest("Add at least one photo before submitting", nil)
	}

	if err := uc.listingRepo.SetStatus(ctx, listingID, entity.ListingStatusPendingReview); err != nil {
		return nil, err
	}

	listing.Status = entity.ListingStatusPendingReview
	return listing, nil
}

// MarkClosed records the outcome of a completed deal, sold or rented.
func (uc *ListingUseCase) MarkClosed(ctx context.Context, userID, listingID, outcome string) (*entity.Listing, error) {
	if outcome != entity.ListingStatusSold && outcome != entity.ListingStatusRented {
		return nil, errors.BadRequest("Outcome must be sold or rented", nil)
	}

	listing, err := uc.requireEditable(ctx, userID, listingID)
	if err != nil {
		return nil, err
	}
	if listing.Status != entity.ListingStatusActive {
		return nil, errors.BadRequest("Only active listings can be closed", nil)
	}

	if err := uc.listingRepo.SetStatus(ctx, listingID, outcome); err != nil {
		return nil, err
	}

	listing.Status = outcome
	return listing, nil
}

func (uc *ListingUseCase) BrowseListings(ctx context.Context, input BrowseListingsInput) ([]*entity.Listing, int64, error) {
	filter := map[string]interface{}{
		"status": entity.ListingStatusActive,
	}
	if input.City != "" {
		filter["city"] = input.City
	}
	if input.State != "" {
		filter["state"] = strings.ToUpper(input.State)
	}
	if input.MinPrice > 0 {
		filter["minPrice"] = input.MinPrice
	}
	if input.MaxPrice > 0 {
		filter["maxPrice"] = input.MaxPrice
	}
	if input.MinBeds > 0 {
		filter["minBeds"] = input.MinBeds
	}
	if input.Featured {
		filter["featured"] = true
	}

	return uc.listingRepo.List(ctx, filter, input.Sort, input.Limit, input.Offset)
}

func (uc *ListingUseCase) SearchListings(ctx context.Context, query string, limit, offset int) ([]*entity.Listing, int64, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*entity.Listing{}, 0, nil
	}
	return uc.listingRepo.SearchByAddress(ctx, query, limit, offset)
}

func (uc *ListingUseCase) ListMyListings(ctx context.Context, sellerID, status string, limit, offset int) ([]*entity.Listing, int64, error) {
	return uc.listingRepo.ListBySellerID(ctx, sellerID, status, limit, offset)
}

// AddPhoto appends an already-uploaded photo URL to the listing's gallery.
func (uc *ListingUseCase) AddPhoto(ctx context.Context, userID, listingID, photoURL string) (*entity.Listing, error) {
	listing, err := uc.requireEditable(ctx, userID, listingID)
	if err != nil {
		return nil, err
	}

	for _, existing := range listing.Photos {
		if existing == photoURL {
			return listing, nil
		}
	}

	listing.Photos = append(listing.Photos, photoURL)
	if err := uc.listingRepo.SetPhotos(ctx, listingID, listing.Photos); err != nil {
		return nil, err
	}

	return listing, nil
}

// ReorderPhotos replaces the gallery order. The new order must be a
// permutation of the current set, nothing added or dropped.
func (uc *ListingUseCase) ReorderPhotos(ctx context.Context, userID, listingID string, photos []string) (*entity.Listing, error) {
	listing, err := uc.requireEditable(ctx, userID, listingID)
	if err != nil {
		return nil, err
	}

	if len(photos) != len(listing.Photos) {
		return nil, errors.BadRequest("Photo order must contain every current photo exactly once", nil)
	}
	current := make(map[string]int, len(listing.Photos))
	for _, url := range listing.Photos {
		current[url]++
	}
	for _, url := range photos {
		if current[url] == 0 {
			return nil, errors.BadRequest("Photo order must contain every current photo exactly once", nil)
		}
		current[url]--
	}

	listing.Photos = photos
	if err := uc.listingRepo.SetPhotos(ctx, listingID, photos); err != nil {
		return nil, err
	}

	return listing, nil
}

// RemovePhoto drops a photo from the gallery and best-effort deletes the
// blob. A failed blob delete is logged, never surfaced: the gallery update
// already happened and an orphaned object is harmless.
func (uc *ListingUseCase) RemovePhoto(ctx context.Context, userID, listingID, photoURL string) (*entity.Listing, error) {
	listing, err := uc.requireEditable(ctx, userID, listingID)
	if err != nil {
		return nil, err
	}

	found := false
	remaining := make([]string, 0, len(listing.Photos))
	for _, url := range listing.Photos {
		if url == photoURL && !found {
			found = true
			continue
		}
		remaining = append(remaining, url)
	}
	if !found {
		return nil, errors.NotFound("Photo", nil)
	}

	listing.Photos = remaining
	if err := uc.listingRepo.SetPhotos(ctx, listingID, remaining); err != nil {
		return nil, err
	}

	if err := uc.fileService.DeleteFile(ctx, photoURL); err != nil {
		log.Printf("Failed to delete photo blob %s: %v", photoURL, err)
	}

	return listing, nil
}

// DeleteListing soft-deletes. Photo blobs are kept so the listing can be
// restored by support if a seller deletes by mistake.
func (uc *ListingUseCase) DeleteListing(ctx context.Context, userID, listingID string, isAdmin bool) error {
	listing, err := uc.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return errors.NotFound("Listing", err)
	}
	if !isAdmin && listing.SellerID != userID {
		return errors.Forbidden("You can only delete your own listings", nil)
	}

	if err := uc.listingRepo.SoftDelete(ctx, listingID); err != nil {
		return err
	}

	log.Printf("Listing %s deleted by user %s", listingID, userID)
	return nil
}

func (uc *ListingUseCase) requireEditable(ctx context.Context, userID, listingID string) (*entity.Listing, error) {
	listing, err := uc.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, errors.NotFound("Listing", err)
	}

	if listing.SellerID != userID && listing.AgentID != userID {
		user, err := uc.userRepo.GetByID(ctx, userID)
		if err != nil || user.Role != entity.RoleAdmin {
			return nil, errors.Forbidden("You can only modify your own listings", nil)
		}
	}

	return listing, nil
}
