package websocket

// Client-to-server and server-to-client event types
const (
	EventPing          = "ping"
	EventPong          = "pong"
	EventNewMessage    = "new_message"
	EventTyping        = "typing"
	EventJoinThread    = "join_thread"
	EventLeaveThread   = "leave_thread"
	EventMarkSeen      = "mark_seen"
	EventSeenReceipt   = "seen_receipt"
	EventDelivered     = "delivered"
	EventPresence      = "presence"
	EventInboxUpdate   = "inbox_update"
	EventReaction      = "reaction"
	EventError         = "error"
)

// Envelope is the wire format for every websocket event
type Envelope struct {
	Type      string      `json:"type"`
	ThreadID  string      `json:"thread_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
}

type TypingData struct {
	ThreadID string `json:"thread_id"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	IsTyping bool   `json:"is_typing"`
}

type MarkSeenData struct {
	ThreadID  string `json:"thread_id"`
	MessageID string `json:"message_id"`
}

type SeenReceiptData struct {
	ThreadID  string `json:"thread_id"`
	MessageID string `json:"message_id"`
	SeenBy    string `json:"seen_by"`
}

type PresenceData struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	IsOnline bool   `json:"is_online"`
	LastSeen string `json:"last_seen"`
}

type JoinThreadData struct {
	ThreadID string `json:"thread_id"`
}

type InboxUpdateData struct {
	ThreadID        string `json:"thread_id"`
	LastMessageText string `json:"last_message_text"`
	LastMessageAt   string `json:"last_message_at"`
	SenderID        string `json:"sender_id"`
	SenderName      string `json:"sender_name"`
}
