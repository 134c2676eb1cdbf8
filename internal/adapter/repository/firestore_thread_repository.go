package repository

import (
	"context"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"hiawto/internal/domain/entity"
	"hiawto/internal/domain/repository"
	"hiawto/pkg/errors"
)

type firestoreThreadRepository struct {
	client *firestore.Client
}

func NewFirestoreThreadRepository(client *firestore.Client) repository.ThreadRepository {
	return &firestoreThreadRepository{
		client: client,
	}
}

func (r *firestoreThreadRepository) Create(ctx context.Context, thread *entity.Thread) error {
	if thread.ID == "" {
		thread.ID = uuid.New().String()
	}

	now := time.Now()
	thread.CreatedAt = now
	thread.UpdatedAt = now
	if thread.UnreadCounts == nil {
		thread.UnreadCounts = make(map[string]int)
	}
	if thread.Typing == nil {
		thread.Typing = make(map[string]bool)
	}

	_, err := r.client.Collection("threads").Doc(thread.ID).Set(ctx, thread)
	if err != nil {
		return errors.Internal("Failed to create thread", err)
	}

	return nil
}

func (r *firestoreThreadRepository) GetByID(ctx context.Context, id string) (*entity.Thread, error) {
	doc, err := r.client.Collection("threads").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Thread", err)
		}
		return nil, errors.Internal("Failed to get thread", err)
	}

	var thread entity.Thread
	if err := doc.DataTo(&thread); err != nil {
		return nil, errors.Internal("Failed to parse thread data", err)
	}

	return &thread, nil
}

func (r *firestoreThreadRepository) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*entity.Thread, int64, error) {
	query := r.client.Collection("threads").Where("participants", "array-contains", userID).OrderBy("updatedAt", firestore.Desc)

	allDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		log.Printf("Firestore error while fetching threads for user %s: %v", userID, err)
		return nil, 0, errors.Internal("Failed to fetch threads", err)
	}

	total := int64(len(allDocs))

	// Pagination in-memory, one Firestore round trip
	start := offset
	if start > len(allDocs) {
		start = len(allDocs)
	}
	end := len(allDocs)
	if limit > 0 && limit != -1 && start+limit < end {
		end = start + limit
	}

	var threads []*entity.Thread
	for i := start; i < end; i++ {
		var thread entity.Thread
		if err := allDocs[i].DataTo(&thread); err != nil {
			log.Printf("Error parsing thread data for user %s: %v", userID, err)
			continue // Skip bad data instead of failing
		}
		threads = append(threads, &thread)
	}

	return threads, total, nil
}

func (r *firestoreThreadRepository) ListAll(ctx context.Context, limit, offset int) ([]*entity.Thread, int64, error) {
	query := r.client.Collection("threads").OrderBy("updatedAt", firestore.Desc)

	allDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, 0, errors.Internal("Failed to fetch threads", err)
	}

	total := int64(len(allDocs))

	start := offset
	if start > len(allDocs) {
		start = len(allDocs)
	}
	end := len(allDocs)
	if limit > 0 && start+limit < end {
		end = start + limit
	}

	var threads []*entity.Thread
	for i := start; i < end; i++ {
		var thread entity.Thread
		if err := allDocs[i].DataTo(&thread); err != nil {
			continue
		}
		threads = append(threads, &thread)
	}

	return threads, total, nil
}

func (r *firestoreThreadRepository) Update(ctx context.Context, thread *entity.Thread) error {
	thread.UpdatedAt = time.Now()

	_, err := r.client.Collection("threads").Doc(thread.ID).Set(ctx, thread)
	if err != nil {
		return errors.Internal("Failed to update thread", err)
	}

	return nil
}

// Delete removes the messages subcollection first, then the thread document.
// Deleting only the parent would leave the messages orphaned in Firestore.
func (r *firestoreThreadRepository) Delete(ctx context.Context, id string) error {
	bulkWriter := r.client.BulkWriter(ctx)

	iter := r.client.Collection("threads").Doc(id).Collection("messages").Documents(ctx)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return errors.Internal("Failed to iterate messages for deletion", err)
		}
		if _, err := bulkWriter.Delete(doc.Ref); err != nil {
			return errors.Internal("Failed to schedule message deletion", err)
		}
	}
	bulkWriter.End()

	_, err := r.client.Collection("threads").Doc(id).Delete(ctx)
	if err != nil {
		return errors.Internal("Failed to delete thread", err)
	}

	return nil
}

func (r *firestoreThreadRepository) SetLastMessage(ctx context.Context, threadID, text string, at time.Time) error {
	_, err := r.client.Collection("threads").Doc(threadID).Update(ctx, []firestore.Update{
		{Path: "lastMessageText", Value: text},
		{Path: "lastMessageAt", Value: at},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		return errors.Internal("Failed to update thread last message", err)
	}
	return nil
}

// IncrementUnread is a server-side atomic increment. Two concurrent senders
// cannot lose an update here.
func (r *firestoreThreadRepository) IncrementUnread(ctx context.Context, threadID, recipientUID string, delta int) error {
	_, err := r.client.Collection("threads").Doc(threadID).Update(ctx, []firestore.Update{
		{Path: "unreadCounts." + recipientUID, Value: firestore.Increment(delta)},
	})
	if err != nil {
		return errors.Internal("Failed to increment unread count", err)
	}
	return nil
}

func (r *firestoreThreadRepository) ClearUnread(ctx context.Context, threadID, uid string) error {
	_, err := r.client.Collection("threads").Doc(threadID).Update(ctx, []firestore.Update{
		{Path: "unreadCounts." + uid, Value: 0},
	})
	if err != nil {
		return errors.Internal("Failed to clear unread count", err)
	}
	return nil
}

func (r *firestoreThreadRepository) SetTyping(ctx context.Context, threadID, uid string, isTyping bool) error {
	_, err := r.client.Collection("threads").Doc(threadID).Update(ctx, []firestore.Update{
		{Path: "typing." + uid, Value: isTyping},
	})
	if err != nil {
		return errors.Internal("Failed to set typing flag", err)
	}
	return nil
}

func (r *firestoreThreadRepository) SetAssignee(ctx context.Context, threadID, uid string) error {
	_, err := r.client.Collection("threads").Doc(threadID).Update(ctx, []firestore.Update{
		{Path: "assignedTo", Value: uid},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		return errors.Internal("Failed to assign thread", err)
	}
	return nil
}

func (r *firestoreThreadRepository) CreateMessage(ctx context.Context, message *entity.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}

	message.CreatedAt = time.Now()

	_, err := r.client.Collection("threads").Doc(message.ThreadID).Collection("messages").Doc(message.ID).Set(ctx, message)
	if err != nil {
		return errors.Internal("Failed to create message", err)
	}

	// Denormalized volume counter for the admin dashboard. The message
	// itself is already stored, so a counter failure is only logged.
	_, err = r.client.Collection("threads").Doc(message.ThreadID).Update(ctx, []firestore.Update{
		{Path: "messageCount", Value: firestore.Increment(1)},
	})
	if err != nil {
		log.Printf("Warning: failed to bump message count for thread %s: %v", message.ThreadID, err)
	}

	return nil
}

// CountMessages totals the denormalized per-thread counters. Cheaper than a
// collection-group scan and close enough for a dashboard number.
func (r *firestoreThreadRepository) CountMessages(ctx context.Context) (int64, error) {
	docs, err := r.client.Collection("threads").Select("messageCount").Documents(ctx).GetAll()
	if err != nil {
		return 0, errors.Internal("Failed to count messages", err)
	}

	var total int64
	for _, doc := range docs {
		if value, err := doc.DataAt("messageCount"); err == nil {
			if count, ok := value.(int64); ok {
				total += count
			}
		}
	}

	return total, nil
}

func (r *firestoreThreadRepository) GetMessageByID(ctx context.Context, threadID, messageID string) (*entity.Message, error) {
	doc, err := r.client.Collection("threads").Doc(threadID).Collection("messages").Doc(messageID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Message", err)
		}
		return nil, errors.Internal("Failed to get message", err)
	}

	var message entity.Message
	if err := doc.DataTo(&message); err != nil {
		return nil, errors.Internal("Failed to parse message data", err)
	}
	return &message, nil
}

// ListMessages returns messages ordered by createdAt ascending; that order is
// the thread's total message order.
func (r *firestoreThreadRepository) ListMessages(ctx context.Context, threadID string, limit, offset int) ([]*entity.Message, int64, error) {
	query := r.client.Collection("threads").Doc(threadID).Collection("messages").OrderBy("createdAt", firestore.Asc)

	countDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		log.Printf("Firestore error while counting messages for thread %s: %v", threadID, err)
		return nil, 0, errors.Internal("Failed to count messages for thread", err)
	}
	total := int64(len(countDocs))

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	iter := query.Documents(ctx)
	var messages []*entity.Message

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			log.Printf("Firestore error while iterating messages for thread %s: %v", threadID, err)
			return nil, 0, errors.Internal("Failed to iterate messages", err)
		}

		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			log.Printf("Error parsing message data for thread %s: %v", threadID, err)
			return nil, 0, errors.Internal("Failed to parse message data", err)
		}

		messages = append(messages, &message)
	}

	return messages, total, nil
}

func (r *firestoreThreadRepository) UpdateMessage(ctx context.Context, threadID string, message *entity.Message) error {
	_, err := r.client.Collection("threads").Doc(threadID).Collection("messages").Doc(message.ID).Set(ctx, message)
	if err != nil {
		return errors.Internal("Failed to update message", err)
	}
	return nil
}

func (r *firestoreThreadRepository) MarkMessageSeen(ctx context.Context, threadID, messageID, userID string) error {
	return r.appendToMessageArray(ctx, threadID, messageID, userID, "seenBy")
}

func (r *firestoreThreadRepository) MarkMessageDelivered(ctx context.Context, threadID, messageID, userID string) error {
	return r.appendToMessageArray(ctx, threadID, messageID, userID, "deliveredTo")
}

func (r *firestoreThreadRepository) appendToMessageArray(ctx context.Context, threadID, messageID, userID, field string) error {
	docRef := r.client.Collection("threads").Doc(threadID).Collection("messages").Doc(messageID)
	_, err := docRef.Update(ctx, []firestore.Update{
		{Path: field, Value: firestore.ArrayUnion(userID)},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			// Message may be old or deleted, skip quietly
			log.Printf("appendToMessageArray: Message %s not found in thread %s", messageID, threadID)
			return nil
		}
		return errors.Internal("Failed to update message "+field, err)
	}
	return nil
}
