package usecase

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hiawto/internal/domain/entity"
	"hiawto/internal/infrastructure/uploader"
)

func smallJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func newUploadFixture(t *testing.T) (*UploadUseCase, *fakeListingRepo) {
	t.Helper()
	listingRepo := newFakeListingRepo(&entity.Listing{
		ID: "l1", SellerID: "bob", Status: entity.ListingStatusDraft, Photos: []string{},
	})
	uc := NewUploadUseCase(&fakeFileService{}, listingRepo, newFakeFileMetadataRepo(), uploader.Options{
		TargetBytes:  1 << 20,
		MaxDimension: 2048,
		Folder:       "listings",
	}, 10<<20)
	return uc, listingRepo
}

func TestEnqueuePhotoValidatesOwnership(t *testing.T) {
	uc, _ := newUploadFixture(t)
	ctx := context.Background()
	data := smallJPEG(t)

	_, err := uc.EnqueuePhoto(ctx, "alice", "l1", "p.jpg", data, nil)
	require.Error(t, err)

	_, err = uc.EnqueuePhoto(ctx, "bob", "missing", "p.jpg", data, nil)
	require.Error(t, err)

	_, err = uc.EnqueuePhoto(ctx, "bob", "l1", "p.jpg", nil, nil)
	require.Error(t, err)

	view, err := uc.EnqueuePhoto(ctx, "bob", "l1", "p.jpg", data, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, view.ID)
}

func TestEnqueuePhotoRejectsOversizedFile(t *testing.T) {
	listingRepo := newFakeListingRepo(&entity.Listing{ID: "l1", SellerID: "bob", Photos: []string{}})
	uc := NewUploadUseCase(&fakeFileService{}, listingRepo, newFakeFileMetadataRepo(), uploader.Options{}, 16)

	_, err := uc.EnqueuePhoto(context.Background(), "bob", "l1", "p.jpg", make([]byte, 64), nil)
	require.Error(t, err)
}

func TestCompletedUploadAppendsToGallery(t *testing.T) {
	uc, listingRepo := newUploadFixture(t)
	ctx := context.Background()

	view, err := uc.EnqueuePhoto(ctx, "bob", "l1", "p.jpg", smallJPEG(t), nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		listing, err := listingRepo.GetByID(ctx, "l1")
		return err == nil && len(listing.Photos) == 1
	}, 2*time.Second, 10*time.Millisecond)

	// Done items leave the queue once acknowledged by the snapshot cycle.
	for _, item := range uc.QueueStatus("l1") {
		assert.NotEqual(t, uploader.StatusError, item.Status)
	}
	_ = view
}

func TestCancelUnknownUpload(t *testing.T) {
	uc, _ := newUploadFixture(t)
	require.Error(t, uc.CancelUpload("nope"))
	require.Error(t, uc.AcknowledgeError("nope"))
}
