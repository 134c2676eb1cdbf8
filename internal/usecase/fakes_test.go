package usecase

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"hiawto/internal/domain/entity"
	"hiawto/internal/domain/service"
	"hiawto/pkg/errors"
)

type fakeThreadRepo struct {
	mu       sync.Mutex
	threads  map[string]*entity.Thread
	messages map[string][]*entity.Message // threadID -> ordered ascending
}

func newFakeThreadRepo() *fakeThreadRepo {
	return &fakeThreadRepo{
		threads:  make(map[string]*entity.Thread),
		messages: make(map[string][]*entity.Message),
	}
}

func (r *fakeThreadRepo) Create(ctx context.Context, thread *entity.Thread) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if thread.ID == "" {
		thread.ID = uuid.New().String()
	}
	r.threads[thread.ID] = thread
	return nil
}

func (r *fakeThreadRepo) GetByID(ctx context.Context, id string) (*entity.Thread, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	thread, ok := r.threads[id]
	if !ok {
		return nil, errors.NotFound("Thread", nil)
	}
	return thread, nil
}

func (r *fakeThreadRepo) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*entity.Thread, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*entity.Thread
	for _, t := range r.threads {
		if t.HasParticipant(userID) {
			result = append(result, t)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, int64(len(result)), nil
}

func (r *fakeThreadRepo) ListAll(ctx context.Context, limit, offset int) ([]*entity.Thread, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*entity.Thread
	for _, t := range r.threads {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, int64(len(result)), nil
}

func (r *fakeThreadRepo) CountMessages(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total int64
	for _, msgs := range r.messages {
		total += int64(len(msgs))
	}
	return total, nil
}

func (r *fakeThreadRepo) Update(ctx context.Context, thread *entity.Thread) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.threads[thread.ID]; !ok {
		return errors.NotFound("Thread", nil)
	}
	r.threads[thread.ID] = thread
	return nil
}

func (r *fakeThreadRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.threads[id]; !ok {
		return errors.NotFound("Thread", nil)
	}
	delete(r.threads, id)
	delete(r.messages, id)
	return nil
}

func (r *fakeThreadRepo) SetLastMessage(ctx context.Context, threadID, text string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	thread, ok := r.threads[threadID]
	if !ok {
		return errors.NotFound("Thread", nil)
	}
	thread.LastMessageText = text
	thread.LastMessageAt = &at
	return nil
}

func (r *fakeThreadRepo) IncrementUnread(ctx context.Context, threadID, recipientUID string, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	thread, ok := r.threads[threadID]
	if !ok {
		return errors.NotFound("Thread", nil)
	}
	if thread.UnreadCounts == nil {
		thread.UnreadCounts = make(map[string]int)
	}
	thread.UnreadCounts[recipientUID] += delta
	return nil
}

func (r *fakeThreadRepo) ClearUnread(ctx context.Context, threadID, uid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	thread, ok := r.threads[threadID]
	if !ok {
		return errors.NotFound("Thread", nil)
	}
	if thread.UnreadCounts == nil {
		thread.UnreadCounts = make(map[string]int)
	}
	thread.UnreadCounts[uid] = 0
	return nil
}

func (r *fakeThreadRepo) SetTyping(ctx context.Context, threadID, uid string, isTyping bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	thread, ok := r.threads[threadID]
	if !ok {
		return errors.NotFound("Thread", nil)
	}
	if thread.Typing == nil {
		thread.Typing = make(map[string]bool)
	}
	thread.Typing[uid] = isTyping
	return nil
}

func (r *fakeThreadRepo) SetAssignee(ctx context.Context, threadID, uid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	thread, ok := r.threads[threadID]
	if !ok {
		return errors.NotFound("Thread", nil)
	}
	thread.AssignedTo = uid
	return nil
}

func (r *fakeThreadRepo) CreateMessage(ctx context.Context, message *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	r.messages[message.ThreadID] = append(r.messages[message.ThreadID], message)
	return nil
}

func (r *fakeThreadRepo) GetMessageByID(ctx context.Context, threadID, messageID string) (*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages[threadID] {
		if m.ID == messageID {
			return m, nil
		}
	}
	return nil, errors.NotFound("Message", nil)
}

func (r *fakeThreadRepo) ListMessages(ctx context.Context, threadID string, limit, offset int) ([]*entity.Message, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.messages[threadID]
	total := int64(len(all))
	start := offset
	if start > len(all) {
		start = len(all)
	}
	end := len(all)
	if limit > 0 && start+limit < end {
		end = start + limit
	}
	return all[start:end], total, nil
}

func (r *fakeThreadRepo) UpdateMessage(ctx context.Context, threadID string, message *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, m := range r.messages[threadID] {
		if m.ID == message.ID {
			r.messages[threadID][i] = message
			return nil
		}
	}
	return errors.NotFound("Message", nil)
}

func (r *fakeThreadRepo) MarkMessageSeen(ctx context.Context, threadID, messageID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages[threadID] {
		if m.ID == messageID {
			m.SeenBy = append(m.SeenBy, userID)
			return nil
		}
	}
	return nil
}

func (r *fakeThreadRepo) MarkMessageDelivered(ctx context.Context, threadID, messageID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages[threadID] {
		if m.ID == messageID {
			m.DeliveredTo = append(m.DeliveredTo, userID)
			return nil
		}
	}
	return nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func newFakeUserRepo(users ...*entity.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*entity.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, errors.NotFound("User", nil)
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return errors.NotFound("User", nil)
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) ListByRole(ctx context.Context, role string, limit int) ([]*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*entity.User
	for _, u := range r.users {
		if u.Role == role {
			result = append(result, u)
		}
	}
	return result, nil
}

func (r *fakeUserRepo) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, u := range r.users {
		if u.CreatedAt.After(since) {
			count++
		}
	}
	return count, nil
}

type fakeListingRepo struct {
	mu       sync.Mutex
	listings map[string]*entity.Listing
}

func newFakeListingRepo(listings ...*entity.Listing) *fakeListingRepo {
	r := &fakeListingRepo{listings: make(map[string]*entity.Listing)}
	for _, l := range listings {
		r.listings[l.ID] = l
	}
	return r
}

func (r *fakeListingRepo) Create(ctx context.Context, listing *entity.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if listing.ID == "" {
		listing.ID = uuid.New().String()
	}
	r.listings[listing.ID] = listing
	return nil
}

func (r *fakeListingRepo) GetByID(ctx context.Context, id string) (*entity.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	listing, ok := r.listings[id]
	if !ok || listing.DeletedAt != nil {
		return nil, errors.NotFound("Listing", nil)
	}
	return listing, nil
}

func (r *fakeListingRepo) List(ctx context.Context, filter map[string]interface{}, sort string, limit, offset int) ([]*entity.Listing, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*entity.Listing
	for _, l := range r.listings {
		if l.DeletedAt != nil {
			continue
		}
		if status, ok := filter["status"].(string); ok && l.Status != status {
			continue
		}
		if city, ok := filter["city"].(string); ok && l.City != city {
			continue
		}
		result = append(result, l)
	}
	return result, int64(len(result)), nil
}

func (r *fakeListingRepo) SearchByAddress(ctx context.Context, query string, limit, offset int) ([]*entity.Listing, int64, error) {
	return r.List(ctx, map[string]interface{}{}, "", limit, offset)
}

func (r *fakeListingRepo) ListBySellerID(ctx context.Context, sellerID string, status string, limit, offset int) ([]*entity.Listing, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*entity.Listing
	for _, l := range r.listings {
		if l.DeletedAt != nil || l.SellerID != sellerID {
			continue
		}
		if status != "" && l.Status != status {
			continue
		}
		result = append(result, l)
	}
	return result, int64(len(result)), nil
}

func (r *fakeListingRepo) Update(ctx context.Context, listing *entity.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.listings[listing.ID]; !ok {
		return errors.NotFound("Listing", nil)
	}
	r.listings[listing.ID] = listing
	return nil
}

func (r *fakeListingRepo) SetPhotos(ctx context.Context, id string, photos []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	listing, ok := r.listings[id]
	if !ok {
		return errors.NotFound("Listing", nil)
	}
	listing.Photos = photos
	return nil
}

func (r *fakeListingRepo) SetStatus(ctx context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	listing, ok := r.listings[id]
	if !ok {
		return errors.NotFound("Listing", nil)
	}
	listing.Status = status
	return nil
}

func (r *fakeListingRepo) IncrementViews(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	listing, ok := r.listings[id]
	if !ok {
		return errors.NotFound("Listing", nil)
	}
	listing.Views++
	return nil
}

func (r *fakeListingRepo) SoftDelete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	listing, ok := r.listings[id]
	if !ok {
		return errors.NotFound("Listing", nil)
	}
	now := time.Now()
	listing.DeletedAt = &now
	return nil
}

func (r *fakeListingRepo) CountByStatus(ctx context.Context) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int64)
	for _, l := range r.listings {
		if l.DeletedAt == nil {
			counts[l.Status]++
		}
	}
	return counts, nil
}

type fakeFraudReviewRepo struct {
	mu      sync.Mutex
	reviews map[string]*entity.FraudReview
}

func newFakeFraudReviewRepo() *fakeFraudReviewRepo {
	return &fakeFraudReviewRepo{reviews: make(map[string]*entity.FraudReview)}
}

func (r *fakeFraudReviewRepo) Create(ctx context.Context, review *entity.FraudReview) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if review.ID == "" {
		review.ID = uuid.New().String()
	}
	r.reviews[review.ID] = review
	return nil
}

func (r *fakeFraudReviewRepo) GetByID(ctx context.Context, id string) (*entity.FraudReview, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	review, ok := r.reviews[id]
	if !ok {
		return nil, errors.NotFound("FraudReview", nil)
	}
	return review, nil
}

func (r *fakeFraudReviewRepo) ListByStatus(ctx context.Context, status string, limit, offset int) ([]*entity.FraudReview, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*entity.FraudReview
	for _, review := range r.reviews {
		if status == "" || review.Status == status {
			result = append(result, review)
		}
	}
	return result, int64(len(result)), nil
}

func (r *fakeFraudReviewRepo) Update(ctx context.Context, review *entity.FraudReview) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reviews[review.ID]; !ok {
		return errors.NotFound("FraudReview", nil)
	}
	r.reviews[review.ID] = review
	return nil
}

func (r *fakeFraudReviewRepo) CountByStatus(ctx context.Context, status string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, review := range r.reviews {
		if review.Status == status {
			count++
		}
	}
	return count, nil
}

type fakeFileMetadataRepo struct {
	mu    sync.Mutex
	files map[string]*entity.FileMetadata
}

func newFakeFileMetadataRepo() *fakeFileMetadataRepo {
	return &fakeFileMetadataRepo{files: make(map[string]*entity.FileMetadata)}
}

func (r *fakeFileMetadataRepo) Create(ctx context.Context, metadata *entity.FileMetadata) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if metadata.ID == "" {
		metadata.ID = uuid.New().String()
	}
	r.files[metadata.ID] = metadata
	return nil
}

func (r *fakeFileMetadataRepo) GetByID(ctx context.Context, id string) (*entity.FileMetadata, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	file, ok := r.files[id]
	if !ok {
		return nil, errors.NotFound("File", nil)
	}
	return file, nil
}

func (r *fakeFileMetadataRepo) GetByURL(ctx context.Context, url string) (*entity.FileMetadata, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.files {
		if f.URL == url {
			return f, nil
		}
	}
	return nil, errors.NotFound("File", nil)
}

func (r *fakeFileMetadataRepo) ListByEntity(ctx context.Context, entityType, entityID string) ([]*entity.FileMetadata, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*entity.FileMetadata
	for _, f := range r.files {
		if f.EntityType == entityType && f.EntityID == entityID {
			result = append(result, f)
		}
	}
	return result, nil
}

func (r *fakeFileMetadataRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.files, id)
	return nil
}

type fakeAssistant struct {
	draft     string
	hits      []service.SearchHit
	err       error
	lastQuery string
	delay     time.Duration
}

func (a *fakeAssistant) DraftReply(ctx context.Context, messages []*entity.Message) (string, error) {
	if a.delay > 0 {
		select {
		case <-time.After(a.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if a.err != nil {
		return "", a.err
	}
	return a.draft, nil
}

func (a *fakeAssistant) SearchMessages(ctx context.Context, query string) ([]service.SearchHit, error) {
	a.lastQuery = query
	if a.err != nil {
		return nil, a.err
	}
	return a.hits, nil
}

type fakeFileService struct {
	mu       sync.Mutex
	uploads  int
	deletes  []string
	failNext bool
}

func (s *fakeFileService) UploadFile(ctx context.Context, file io.Reader, size int64, fileType, folder string, isPublic bool, progress service.ProgressFunc) (*service.UploadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads++
	return &service.UploadResult{
		URL:        fmt.Sprintf("https://storage.googleapis.com/bucket/photo-%d.jpg", s.uploads),
		ObjectName: fmt.Sprintf("photo-%d.jpg", s.uploads),
		Size:       size,
	}, nil
}

func (s *fakeFileService) DeleteFile(ctx context.Context, fileURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failNext {
		s.failNext = false
		return fmt.Errorf("storage unavailable")
	}
	s.deletes = append(s.deletes, fileURL)
	return nil
}

func (s *fakeFileService) GenerateSignedUploadURL(ctx context.Context, fileType, folder string, isPublic bool) (string, error) {
	return "https://signed.example/upload", nil
}

func (s *fakeFileService) Close() error { return nil }
