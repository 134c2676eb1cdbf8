package entity

import "time"

const (
	ThreadTypeDirect  = "direct"
	ThreadTypeSupport = "support"
)

type Thread struct {
	ID              string          `json:"id" firestore:"id"`
	Participants    []string        `json:"participants" firestore:"participants"`
	Subject         string          `json:"subject,omitempty" firestore:"subject,omitempty"`
	ListingID       string          `json:"listing_id,omitempty" firestore:"listingId,omitempty"`
	Type            string          `json:"type" firestore:"type"` // "direct", "support"
	AssignedTo      string          `json:"assigned_to,omitempty" firestore:"assignedTo,omitempty"`
	LastMessageText string          `json:"last_message_text,omitempty" firestore:"lastMessageText,omitempty"`
	LastMessageAt   *time.Time      `json:"last_message_at,omitempty" firestore:"lastMessageAt,omitempty"`
	UnreadCounts    map[string]int  `json:"unread_counts" firestore:"unreadCounts"`
	MessageCount    int64           `json:"message_count" firestore:"messageCount"`
	Typing          map[string]bool `json:"typing" firestore:"typing"`
	CreatedAt       time.Time       `json:"created_at" firestore:"createdAt"`
	UpdatedAt       time.Time       `json:"updated_at" firestore:"updatedAt"`
}

// HasParticipant reports whether uid belongs to the thread. Participants are
// fixed at creation; there is no add or remove operation.
func (t *Thread) HasParticipant(uid string) bool {
	for _, p := range t.Participants {
		if p == uid {
			return true
		}
	}
	return false
}
