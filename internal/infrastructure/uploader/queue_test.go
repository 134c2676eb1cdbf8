package uploader

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hiawto/internal/domain/service"
)

// blockingStorage holds every upload until released, so tests can observe
// in-flight state.
type blockingStorage struct {
	mu       sync.Mutex
	calls    int
	started  chan string
	release  chan struct{}
	failNext bool
}

func newBlockingStorage() *blockingStorage {
	return &blockingStorage{
		started: make(chan string, 16),
		release: make(chan struct{}, 16),
	}
}

func (s *blockingStorage) UploadFile(ctx context.Context, file io.Reader, size int64, fileType, folder string, isPublic bool, progress service.ProgressFunc) (*service.UploadResult, error) {
	s.mu.Lock()
	s.calls++
	fail := s.failNext
	s.failNext = false
	s.mu.Unlock()

	s.started <- folder

	select {
	case <-s.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if fail {
		return nil, errors.New("storage unavailable")
	}

	data, _ := io.ReadAll(file)
	if progress != nil {
		progress(int64(len(data)), int64(len(data)))
	}

	return &service.UploadResult{
		URL:        "https://storage.googleapis.com/test-bucket/" + folder + "/photo.jpg",
		ObjectName: folder + "/photo.jpg",
		Size:       int64(len(data)),
	}, nil
}

func (s *blockingStorage) DeleteFile(ctx context.Context, fileURL string) error { return nil }

func (s *blockingStorage) GenerateSignedUploadURL(ctx context.Context, fileType, folder string, isPublic bool) (string, error) {
	return "", nil
}

func (s *blockingStorage) Close() error { return nil }

func (s *blockingStorage) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Large target so raw payloads skip the image pipeline in tests.
func newTestQueue(storage service.FileUploadService, onComplete CompletionFunc) *Queue {
	return NewQueue(storage, Options{TargetBytes: 1 << 20, Folder: "listings"}, onComplete)
}

func countByStatus(views []ItemView, status Status) int {
	n := 0
	for _, v := range views {
		if v.Status == status {
			n++
		}
	}
	return n
}

func TestQueueProcessesSerially(t *testing.T) {
	storage := newBlockingStorage()
	q := newTestQueue(storage, nil)

	q.Enqueue("listing-1", "user-1", "a.jpg", []byte("aaa"), nil)
	q.Enqueue("listing-1", "user-1", "b.jpg", []byte("bbb"), nil)
	q.Enqueue("listing-1", "user-1", "c.jpg", []byte("ccc"), nil)

	// First item reaches the storage layer
	<-storage.started

	views := q.Snapshot("")
	assert.Equal(t, 1, countByStatus(views, StatusUploading), "exactly one item in flight")
	assert.Equal(t, 2, countByStatus(views, StatusQueued))

	// Release the first; the second starts, still one at a time
	storage.release <- struct{}{}
	<-storage.started

	views = q.Snapshot("")
	assert.Equal(t, 1, countByStatus(views, StatusUploading))

	storage.release <- struct{}{}
	<-storage.started
	storage.release <- struct{}{}

	require.Eventually(t, func() bool {
		return len(q.Snapshot("")) == 0
	}, 2*time.Second, 10*time.Millisecond, "queue drains after all uploads complete")

	assert.Equal(t, 3, storage.callCount())
}

func TestCancelQueuedItemMakesNoStorageCall(t *testing.T) {
	storage := newBlockingStorage()
	q := newTestQueue(storage, nil)

	q.Enqueue("listing-1", "user-1", "a.jpg", []byte("aaa"), nil)
	queued := q.Enqueue("listing-1", "user-1", "b.jpg", []byte("bbb"), nil)

	<-storage.started // first is in flight

	require.True(t, q.Cancel(queued.ID))

	storage.release <- struct{}{}

	require.Eventually(t, func() bool {
		return len(q.Snapshot("")) == 0
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, 1, storage.callCount(), "cancelled queued item never hit storage")
}

func TestCancelActiveUploadRemovesItem(t *testing.T) {
	storage := newBlockingStorage()
	q := newTestQueue(storage, nil)

	active := q.Enqueue("listing-1", "user-1", "a.jpg", []byte("aaa"), nil)
	q.Enqueue("listing-1", "user-1", "b.jpg", []byte("bbb"), nil)

	<-storage.started

	// Item removed immediately, without waiting for the upload to unwind
	require.True(t, q.Cancel(active.ID))
	for _, v := range q.Snapshot("") {
		assert.NotEqual(t, active.ID, v.ID)
	}

	// The worker moves on to the next item
	<-storage.started
	storage.release <- struct{}{}

	require.Eventually(t, func() bool {
		return len(q.Snapshot("")) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestUploadErrorMarksItem(t *testing.T) {
	storage := newBlockingStorage()
	storage.failNext = true
	q := newTestQueue(storage, nil)

	item := q.Enqueue("listing-1", "user-1", "a.jpg", []byte("aaa"), nil)

	<-storage.started
	storage.release <- struct{}{}

	require.Eventually(t, func() bool {
		views := q.Snapshot("")
		return len(views) == 1 && views[0].Status == StatusError
	}, 2*time.Second, 10*time.Millisecond)

	views := q.Snapshot("")
	assert.Equal(t, "storage unavailable", views[0].Error)

	// Acknowledging drops the failed item
	require.True(t, q.Acknowledge(item.ID))
	assert.Empty(t, q.Snapshot(""))
}

func TestCompletionReceivesResult(t *testing.T) {
	storage := newBlockingStorage()

	var mu sync.Mutex
	var gotListing, gotURL string
	q := newTestQueue(storage, func(ctx context.Context, item *Item, result *service.UploadResult) error {
		mu.Lock()
		defer mu.Unlock()
		gotListing = item.ListingID
		gotURL = result.URL
		return nil
	})

	q.Enqueue("listing-9", "user-1", "a.jpg", []byte("aaa"), nil)

	<-storage.started
	storage.release <- struct{}{}

	require.Eventually(t, func() bool {
		return len(q.Snapshot("")) == 0
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "listing-9", gotListing)
	assert.Contains(t, gotURL, "https://storage.googleapis.com/")
}

func TestCompletionErrorMarksItem(t *testing.T) {
	storage := newBlockingStorage()
	q := newTestQueue(storage, func(ctx context.Context, item *Item, result *service.UploadResult) error {
		return errors.New("listing gone")
	})

	q.Enqueue("listing-1", "user-1", "a.jpg", []byte("aaa"), nil)

	<-storage.started
	storage.release <- struct{}{}

	require.Eventually(t, func() bool {
		views := q.Snapshot("")
		return len(views) == 1 && views[0].Status == StatusError
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSnapshotFiltersByListing(t *testing.T) {
	storage := newBlockingStorage()
	q := newTestQueue(storage, nil)

	q.Enqueue("listing-1", "user-1", "a.jpg", []byte("aaa"), nil)
	q.Enqueue("listing-2", "user-1", "b.jpg", []byte("bbb"), nil)

	<-storage.started

	assert.Len(t, q.Snapshot("listing-2"), 1)
	assert.Len(t, q.Snapshot(""), 2)

	storage.release <- struct{}{}
	<-storage.started
	storage.release <- struct{}{}

	require.Eventually(t, func() bool {
		return len(q.Snapshot("")) == 0
	}, 2*time.Second, 10*time.Millisecond)
}
