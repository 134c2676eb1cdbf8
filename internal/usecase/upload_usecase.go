package usecase

import (
	"context"
	"log"
	"time"

	"hiawto/internal/domain/entity"
	"hiawto/internal/domain/repository"
	"hiawto/internal/domain/service"
	"hiawto/internal/infrastructure/imaging"
	"hiawto/internal/infrastructure/ratelimit"
	"hiawto/internal/infrastructure/uploader"
	"hiawto/pkg/errors"
)

// UploadUseCase fronts the photo queue. Photos go through one at a time;
// enqueueing returns immediately and the status endpoint reports progress.
type UploadUseCase struct {
	queue          *uploader.Queue
	listingRepo    repository.ListingRepository
	fileRepo       repository.FileMetadataRepository
	rateLimiter    *ratelimit.RateLimiter
	maxUploadBytes int64
}

func NewUploadUseCase(
	storage service.FileUploadService,
	listingRepo repository.ListingRepository,
	fileRepo repository.FileMetadataRepository,
	queueOpts uploader.Options,
	maxUploadBytes int64,
) *UploadUseCase {
	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	uc := &UploadUseCase{
		listingRepo:    listingRepo,
		fileRepo:       fileRepo,
		rateLimiter:    rateLimiter,
		maxUploadBytes: maxUploadBytes,
	}
	uc.queue = uploader.NewQueue(storage, queueOpts, uc.onUploadComplete)
	return uc
}

// EnqueuePhoto validates ownership and puts the photo in line. The returned
// view carries the queue item ID the client polls and cancels with.
func (uc *UploadUseCase) EnqueuePhoto(ctx context.Context, userID, listingID, filename string, data []byte, crop *imaging.CropRect) (*uploader.ItemView, error) {
	if len(data) == 0 {
		return nil, errors.BadRequest("File is empty", nil)
	}
	if uc.maxUploadBytes > 0 && int64(len(data)) > uc.maxUploadBytes {
		return nil, errors.BadRequest("File exceeds the maximum upload size", nil)
	}

	allowed, waitTime := uc.rateLimiter.Allow(userID, "upload_photo")
	if !allowed {
		return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before uploading more photos", waitTime)
	}

	listing, err := uc.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, errors.NotFound("Listing", err)
	}
	if listing.SellerID != userID && listing.AgentID != userID {
		return nil, errors.Forbidden("You can only upload photos to your own listings", nil)
	}

	view := uc.queue.Enqueue(listingID, userID, filename, data, crop)
	log.Printf("Photo %s queued for listing %s by user %s", view.ID, listingID, userID)
	return view, nil
}

// QueueStatus lists the caller-visible queue items for one listing.
func (uc *UploadUseCase) QueueStatus(listingID string) []uploader.ItemView {
	return uc.queue.Snapshot(listingID)
}

// CancelUpload stops a queued or active item. Cancelling an item that is
// still queued guarantees no storage request is ever made for it.
func (uc *UploadUseCase) CancelUpload(id string) error {
	if !uc.queue.Cancel(id) {
		return errors.NotFound("Upload", nil)
	}
	return nil
}

// AcknowledgeError clears a failed item after the client saw the error.
func (uc *UploadUseCase) AcknowledgeError(id string) error {
	if !uc.queue.Acknowledge(id) {
		return errors.NotFound("Upload", nil)
	}
	return nil
}

// onUploadComplete appends the finished photo to the listing gallery and
// records file metadata. Runs on the queue worker goroutine.
func (uc *UploadUseCase) onUploadComplete(ctx context.Context, item *uploader.Item, result *service.UploadResult) error {
	listing, err := uc.listingRepo.GetByID(ctx, item.ListingID)
	if err != nil {
		return err
	}

	photos := append(listing.Photos, result.URL)
	if err := uc.listingRepo.SetPhotos(ctx, item.ListingID, photos); err != nil {
		return err
	}

	metadata := &entity.FileMetadata{
		URL:        result.URL,
		ObjectName: result.ObjectName,
		EntityType: "listing",
		EntityID:   item.ListingID,
		UploadedBy: item.UploadedBy,
		Filename:   item.Filename,
		FileType:   "image/jpeg",
		FileSize:   result.Size,
		IsPublic:   true,
		CreatedAt:  time.Now(),
	}
	if err := uc.fileRepo.Create(ctx, metadata); err != nil {
		log.Printf("Failed to record file metadata for %s: %v", result.URL, err)
	}

	return nil
}
