// Package uploader runs the listing photo pipeline: optional crop, downscale,
// iterative JPEG compression, then a storage upload with progress reporting.
// Items are processed strictly one at a time; a boolean in-flight guard is
// checked before dequeuing the next item, so the queue is serial by
// construction, not a worker pool.
package uploader

import (
	"bytes"
	"context"
	"sync"

	"github.com/google/uuid"

	"hiawto/internal/domain/service"
	"hiawto/internal/infrastructure/imaging"
	"hiawto/pkg/logger"
)

type Status string

const (
	StatusQueued    Status = "queued"
	StatusUploading Status = "uploading"
	StatusDone      Status = "done"
	StatusError     Status = "error"
)

// Item is one queued photo. It lives only in memory; a restart loses the
// queue and there is no resume.
type Item struct {
	ID         string
	ListingID  string
	UploadedBy string
	Filename   string
	Crop       *imaging.CropRect

	data []byte

	Status   Status
	Progress int // 0..100
	URL      string
	Err      string

	cancel context.CancelFunc
}

// ItemView is a read-only snapshot for status endpoints.
type ItemView struct {
	ID         string `json:"id"`
	ListingID  string `json:"listing_id"`
	Filename   string `json:"filename"`
	Status     Status `json:"status"`
	Progress   int    `json:"progress"`
	URL        string `json:"url,omitempty"`
	Error      string `json:"error,omitempty"`
}

// CompletionFunc runs after a successful upload, before the item leaves the
// queue. It is where the photo URL is appended to the listing.
type CompletionFunc func(ctx context.Context, item *Item, result *service.UploadResult) error

type Options struct {
	TargetBytes  int64
	MaxDimension int
	Folder       string
}

type Queue struct {
	storage    service.FileUploadService
	onComplete CompletionFunc
	opts       Options

	mu        sync.Mutex
	items     map[string]*Item
	order     []string
	uploading bool
}

func NewQueue(storage service.FileUploadService, opts Options, onComplete CompletionFunc) *Queue {
	return &Queue{
		storage:    storage,
		onComplete: onComplete,
		opts:       opts,
		items:      make(map[string]*Item),
	}
}

// Enqueue adds a photo to the queue and starts the worker if idle.
func (q *Queue) Enqueue(listingID, uploadedBy, filename string, data []byte, crop *imaging.CropRect) *ItemView {
	item := &Item{
		ID:         uuid.New().String(),
		ListingID:  listingID,
		UploadedBy: uploadedBy,
		Filename:   filename,
		Crop:       crop,
		data:       data,
		Status:     StatusQueued,
	}

	q.mu.Lock()
	q.items[item.ID] = item
	q.order = append(q.order, item.ID)
	q.mu.Unlock()

	q.maybeStartNext()

	view := snapshotItem(item)
	return &view
}

// Cancel removes an item. A queued item leaves without any storage call; the
// active item's upload context is cancelled and the item is removed without
// waiting for confirmation that in-flight bytes stopped.
func (q *Queue) Cancel(id string) bool {
	q.mu.Lock()
	item, ok := q.items[id]
	if !ok {
		q.mu.Unlock()
		return false
	}
	cancel := item.cancel
	q.removeLocked(id)
	q.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	return true
}

// Acknowledge drops an item that finished in the error state.
func (q *Queue) Acknowledge(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	item, ok := q.items[id]
	if !ok || item.Status != StatusError {
		return false
	}
	q.removeLocked(id)
	return true
}

// Snapshot returns the queue state for a listing; an empty listingID returns
// everything.
func (q *Queue) Snapshot(listingID string) []ItemView {
	q.mu.Lock()
	defer q.mu.Unlock()

	views := make([]ItemView, 0, len(q.order))
	for _, id := range q.order {
		item, ok := q.items[id]
		if !ok {
			continue
		}
		if listingID != "" && item.ListingID != listingID {
			continue
		}
		views = append(views, snapshotItem(item))
	}
	return views
}

func snapshotItem(item *Item) ItemView {
	return ItemView{
		ID:        item.ID,
		ListingID: item.ListingID,
		Filename:  item.Filename,
		Status:    item.Status,
		Progress:  item.Progress,
		URL:       item.URL,
		Error:     item.Err,
	}
}

func (q *Queue) removeLocked(id string) {
	delete(q.items, id)
	for i, queued := range q.order {
		if queued == id {
			q.order = append(q.order[:i], q.order[i+1:]...)
			break
		}
	}
}

// maybeStartNext dequeues the oldest queued item unless an upload is already
// in flight.
func (q *Queue) maybeStartNext() {
	q.mu.Lock()
	if q.uploading {
		q.mu.Unlock()
		return
	}

	var next *Item
	for _, id := range q.order {
		if item, ok := q.items[id]; ok && item.Status == StatusQueued {
			next = item
			break
		}
	}
	if next == nil {
		q.mu.Unlock()
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	next.Status = StatusUploading
	next.cancel = cancel
	q.uploading = true
	q.mu.Unlock()

	go q.process(ctx, next)
}

func (q *Queue) process(ctx context.Context, item *Item) {
	defer func() {
		q.mu.Lock()
		q.uploading = false
		q.mu.Unlock()
		q.maybeStartNext()
	}()

	payload, err := q.prepare(item)
	if err != nil {
		logger.Error("Photo pipeline failed for item %s (listing %s): %v", item.ID, item.ListingID, err)
		q.fail(item, err)
		return
	}

	result, err := q.storage.UploadFile(ctx, bytes.NewReader(payload), int64(len(payload)), "image/jpeg", q.opts.Folder, true, func(transferred, total int64) {
		q.mu.Lock()
		if current, ok := q.items[item.ID]; ok && total > 0 {
			current.Progress = int(transferred * 100 / total)
		}
		q.mu.Unlock()
	})
	if err != nil {
		if ctx.Err() != nil {
			// Cancelled mid-flight; the item is already gone from the queue
			logger.Info("Upload cancelled for item %s", item.ID)
			return
		}
		logger.Error("Upload failed for item %s (listing %s): %v", item.ID, item.ListingID, err)
		q.fail(item, err)
		return
	}

	if q.onComplete != nil {
		if err := q.onComplete(ctx, item, result); err != nil {
			logger.Error("Completion failed for item %s (listing %s): %v", item.ID, item.ListingID, err)
			q.fail(item, err)
			return
		}
	}

	q.mu.Lock()
	if current, ok := q.items[item.ID]; ok {
		current.Status = StatusDone
		current.Progress = 100
		current.URL = result.URL
		q.removeLocked(item.ID)
	}
	q.mu.Unlock()
}

// prepare runs crop, downscale and compression. Payloads under the target
// with no crop request pass through untouched.
func (q *Queue) prepare(item *Item) ([]byte, error) {
	if item.Crop == nil && q.opts.TargetBytes > 0 && int64(len(item.data)) <= q.opts.TargetBytes {
		return item.data, nil
	}

	img, err := imaging.Decode(item.data)
	if err != nil {
		return nil, err
	}

	if item.Crop != nil {
		img, err = imaging.Crop(img, *item.Crop)
		if err != nil {
			return nil, err
		}
	}

	img = imaging.Downscale(img, q.opts.MaxDimension)

	payload, _, err := imaging.CompressJPEG(img, q.opts.TargetBytes)
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func (q *Queue) fail(item *Item, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if current, ok := q.items[item.ID]; ok {
		current.Status = StatusError
		current.Err = err.Error()
	}
}
