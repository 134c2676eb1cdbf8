package repository

import (
	"context"
	"time"

	"hiawto/internal/domain/entity"
)

type ThreadRepository interface {
	Create(ctx context.Context, thread *entity.Thread) error
	GetByID(ctx context.Context, id string) (*entity.Thread, error)
	ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*entity.Thread, int64, error)
	ListAll(ctx context.Context, limit, offset int) ([]*entity.Thread, int64, error)
	// CountMessages totals messages across all threads for analytics.
	CountMessages(ctx context.Context) (int64, error)
	Update(ctx context.Context, thread *entity.Thread) error
	// Delete removes the thread and its messages subcollection.
	Delete(ctx context.Context, id string) error

	// Denormalized field updates on the thread document. IncrementUnread is an
	// atomic server-side increment, not read-then-write.
	SetLastMessage(ctx context.Context, threadID, text string, at time.Time) error
	IncrementUnread(ctx context.Context, threadID, recipientUID string, delta int) error
	ClearUnread(ctx context.Context, threadID, uid string) error
	SetTyping(ctx context.Context, threadID, uid string, isTyping bool) error
	SetAssignee(ctx context.Context, threadID, uid string) error

	// Message methods
	CreateMessage(ctx context.Context, message *entity.Message) error
	GetMessageByID(ctx context.Context, threadID, messageID string) (*entity.Message, error)
	ListMessages(ctx context.Context, threadID string, limit, offset int) ([]*entity.Message, int64, error)
	UpdateMessage(ctx context.Context, threadID string, message *entity.Message) error
	MarkMessageSeen(ctx context.Context, threadID, messageID, userID string) error
	MarkMessageDelivered(ctx context.Context, threadID, messageID, userID string) error
}
