package usecase

import (
	"context"

	"hiawto/internal/domain/entity"
	"hiawto/internal/domain/repository"
	"hiawto/internal/domain/service"
	"hiawto/pkg/errors"
)

// InboxUseCase serves the aggregate views over a user's threads: unread
// totals for the badge, who is typing where, and message search.
type InboxUseCase struct {
	threadRepo repository.ThreadRepository
	userRepo   repository.UserRepository
	assistant  service.AssistantService
}

func NewInboxUseCase(
	threadRepo repository.ThreadRepository,
	userRepo repository.UserRepository,
	assistant service.AssistantService,
) *InboxUseCase {
	return &InboxUseCase{
		threadRepo: threadRepo,
		userRepo:   userRepo,
		assistant:  assistant,
	}
}

type InboxSummary struct {
	TotalUnread   int            `json:"total_unread"`
	ThreadUnreads map[string]int `json:"thread_unreads"`
	TypingThreads map[string]int `json:"typing_threads"`
}

// GetSummary sums the caller's unread counts across every thread they
// participate in. Threads where nobody else is typing are omitted from
// TypingThreads.
func (uc *InboxUseCase) GetSummary(ctx context.Context, userID string) (*InboxSummary, error) {
	threads, _, err := uc.threadRepo.ListByUserID(ctx, userID, 0, 0)
	if err != nil {
		return nil, err
	}

	summary := &InboxSummary{
		ThreadUnreads: make(map[string]int),
		TypingThreads: make(map[string]int),
	}

	for _, thread := range threads {
		unread := thread.UnreadCounts[userID]
		if unread > 0 {
			summary.TotalUnread += unread
			summary.ThreadUnreads[thread.ID] = unread
		}

		typing := 0
		for uid, active := range thread.Typing {
			if active && uid != userID {
				typing++
			}
		}
		if typing > 0 {
			summary.TypingThreads[thread.ID] = typing
		}
	}

	return summary, nil
}

// TypingUsers lists the other participants currently typing in a thread.
func (uc *InboxUseCase) TypingUsers(ctx context.Context, userID, threadID string) ([]*entity.User, error) {
	thread, err := uc.threadRepo.GetByID(ctx, threadID)
	if err != nil {
		return nil, errors.NotFound("Thread", err)
	}
	if !thread.HasParticipant(userID) {
		return nil, errors.Forbidden("You are not a participant in this thread", nil)
	}

	users := make([]*entity.User, 0)
	for uid, active := range thread.Typing {
		if !active || uid == userID {
			continue
		}
		if user, err := uc.userRepo.GetByID(ctx, uid); err == nil {
			users = append(users, user)
		}
	}

	return users, nil
}

// Search runs a semantic search over the caller's messages and filters the
// hits down to threads they actually belong to.
func (uc *InboxUseCase) Search(ctx context.Context, userID, query string) ([]service.SearchHit, error) {
	if query == "" {
		return []service.SearchHit{}, nil
	}

	hits, err := uc.assistant.SearchMessages(ctx, query)
	if err != nil {
		return nil, errors.Internal("Search failed", err)
	}

	visible := make([]service.SearchHit, 0, len(hits))
	for _, hit := range hits {
		thread, err := uc.threadRepo.GetByID(ctx, hit.ThreadID)
		if err != nil {
			continue
		}
		if thread.HasParticipant(userID) {
			visible = append(visible, hit)
		}
	}

	return visible, nil
}
