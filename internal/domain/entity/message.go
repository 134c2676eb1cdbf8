package entity

import "time"

const (
	MessageTypeText   = "text"
	MessageTypeSystem = "system"
)

type Reaction struct {
	UID  string `json:"uid" firestore:"uid"`
	Name string `json:"name" firestore:"name"`
}

// Message lives in a thread's messages subcollection. Messages are append-only
// from the product's point of view: text is never edited, only seenBy,
// deliveredTo and reactions grow after creation.
type Message struct {
	ID          string                `json:"id" firestore:"id"`
	ThreadID    string                `json:"thread_id" firestore:"threadId"`
	SenderID    string                `json:"sender_id" firestore:"senderId"`
	SenderName  string                `json:"sender_name" firestore:"senderName"`
	Text        string                `json:"text" firestore:"text"`
	Type        string                `json:"type" firestore:"type"` // "text", "system"
	SeenBy      []string              `json:"seen_by" firestore:"seenBy"`
	DeliveredTo []string              `json:"delivered_to" firestore:"deliveredTo"`
	Reactions   map[string][]Reaction `json:"reactions,omitempty" firestore:"reactions,omitempty"`
	CreatedAt   time.Time             `json:"created_at" firestore:"createdAt"`
}
