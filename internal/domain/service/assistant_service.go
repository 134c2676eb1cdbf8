package service

import (
	"context"

	"hiawto/internal/domain/entity"
)

// SearchHit is one result from the assistant's message search endpoint.
type SearchHit struct {
	ThreadID  string  `json:"threadId"`
	MessageID string  `json:"messageId"`
	Score     float64 `json:"score"`
	Text      string  `json:"text"`
}

// AssistantService is the contract of the serverless callable endpoints. Both
// calls honor ctx cancellation so a caller navigating away aborts the request.
type AssistantService interface {
	DraftReply(ctx context.Context, messages []*entity.Message) (string, error)
	SearchMessages(ctx context.Context, query string) ([]SearchHit, error)
}
