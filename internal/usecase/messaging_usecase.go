package usecase

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"hiawto/internal/domain/entity"
	"hiawto/internal/domain/repository"
	"hiawto/internal/domain/service"
	"hiawto/internal/infrastructure/ratelimit"
	ws "hiawto/internal/infrastructure/websocket"
	"hiawto/pkg/errors"
	"hiawto/pkg/swipe"
)

type MessagingUseCase struct {
	threadRepo  repository.ThreadRepository
	userRepo    repository.UserRepository
	listingRepo repository.ListingRepository
	assistant   service.AssistantService
	wsManager   *ws.Manager
	rateLimiter *ratelimit.RateLimiter
	sanitizer   *bluemonday.Policy
}

func NewMessagingUseCase(
	threadRepo repository.ThreadRepository,
	userRepo repository.UserRepository,
	listingRepo repository.ListingRepository,
	assistant service.AssistantService,
	wsManager *ws.Manager,
) *MessagingUseCase {
	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	return &MessagingUseCase{
		threadRepo:  threadRepo,
		userRepo:    userRepo,
		listingRepo: listingRepo,
		assistant:   assistant,
		wsManager:   wsManager,
		rateLimiter: rateLimiter,
		sanitizer:   bluemonday.StrictPolicy(),
	}
}

type EnsureThreadInput struct {
	ThreadID    string
	OtherUserID string
	ListingID   string
	Subject     string
	Type        string // "direct" or "support"
}

type SendMessageInput struct {
	ThreadID string
	Text     string
	Type     string // "text" or "system"
}

type ThreadResponse struct {
	*entity.Thread
	Listing   *entity.Listing `json:"listing,omitempty"`
	OtherUser *entity.User    `json:"otherUser,omitempty"`
}

type MessageResponse struct {
	*entity.Message
	Sender *entity.User `json:"sender,omitempty"`
}

// EnsureThread returns the thread identified by input.ThreadID, or creates a
// brand new one when no ID is supplied. Creation never dedupes: two calls
// without an ID yield two distinct threads even for the same participants.
func (uc *MessagingUseCase) EnsureThread(ctx context.Context, userID string, input EnsureThreadInput) (*entity.Thread, error) {
	if input.ThreadID != "" {
		thread, err := uc.threadRepo.GetByID(ctx, input.ThreadID)
		if err != nil {
			return nil, errors.NotFound("Thread", err)
		}
		if !thread.HasParticipant(userID) {
			return nil, errors.Forbidden("You are not a participant in this thread", nil)
		}
		return thread, nil
	}

	allowed, waitTime := uc.rateLimiter.Allow(userID, "create_thread")
	if !allowed {
		log.Printf("EnsureThread Rate Limited: User %s must wait %v", userID, waitTime)
		return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before starting another conversation", waitTime)
	}

	threadType := input.Type
	if threadType == "" {
		threadType = entity.ThreadTypeDirect
	}

	participants := []string{userID}
	if input.OtherUserID != "" {
		if input.OtherUserID == userID {
			return nil, errors.BadRequest("Cannot start a thread with yourself", nil)
		}
		if _, err := uc.userRepo.GetByID(ctx, input.OtherUserID); err != nil {
			return nil, errors.NotFound("Recipient", err)
		}
		participants = append(participants, input.OtherUserID)
	} else if threadType != entity.ThreadTypeSupport {
		return nil, errors.BadRequest("Recipient is required for direct threads", nil)
	}

	if input.ListingID != "" {
		if _, err := uc.listingRepo.GetByID(ctx, input.ListingID); err != nil {
			return nil, errors.NotFound("Listing", err)
		}
	}

	now := time.Now()
	thread := &entity.Thread{
		Participants: participants,
		Subject:      strings.TrimSpace(input.Subject),
		ListingID:    input.ListingID,
		Type:         threadType,
		UnreadCounts: make(map[string]int),
		Typing:       make(map[string]bool),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := uc.threadRepo.Create(ctx, thread); err != nil {
		return nil, err
	}

	log.Printf("Thread %s created by user %s (type=%s)", thread.ID, userID, threadType)
	return thread, nil
}

// SendMessage persists a message and fans it out to the thread room. A call
// with a missing thread ID or blank text is silently ignored and returns
// (nil, nil) so half-filled composer submissions never surface as errors.
func (uc *MessagingUseCase) SendMessage(ctx context.Context, userID string, input SendMessageInput) (*entity.Message, error) {
	if input.ThreadID == "" || strings.TrimSpace(input.Text) == "" {
		log.Printf("SendMessage skipped: incomplete input from user %s", userID)
		return nil, nil
	}

	allowed, waitTime := uc.rateLimiter.Allow(userID, "send_message")
	if !allowed {
		log.Printf("SendMessage Rate Limited: User %s must wait %v", userID, waitTime)
		return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before sending another message", waitTime)
	}

	thread, err := uc.threadRepo.GetByID(ctx, input.ThreadID)
	if err != nil {
		return nil, errors.NotFound("Thread", err)
	}
	if !thread.HasParticipant(userID) {
		return nil, errors.Forbidden("You are not a participant in this thread", nil)
	}

	sender, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, errors.NotFound("Sender", err)
	}

	msgType := input.Type
	if msgType == "" {
		msgType = entity.MessageTypeText
	}

	text := uc.sanitizer.Sanitize(strings.TrimSpace(input.Text))

	now := time.Now()
	message := &entity.Message{
		ThreadID:   input.ThreadID,
		SenderID:   userID,
		SenderName: sender.Username,
		Text:       text,
		Type:       msgType,
		SeenBy:     []string{userID},
		CreatedAt:  now,
	}

	if err := uc.threadRepo.CreateMessage(ctx, message); err != nil {
		return nil, err
	}

	if err := uc.threadRepo.SetLastMessage(ctx, thread.ID, text, now); err != nil {
		log.Printf("SendMessage: failed to update thread preview: %v", err)
	}

	// Unread counts bump atomically per recipient so concurrent senders
	// never clobber each other's increments.
	for _, participantID := range thread.Participants {
		if participantID == userID {
			continue
		}
		if err := uc.threadRepo.IncrementUnread(ctx, thread.ID, participantID, 1); err != nil {
			log.Printf("SendMessage: failed to bump unread for %s: %v", participantID, err)
		}
	}

	thread.LastMessageText = text
	thread.LastMessageAt = &now

	uc.broadcastToThread(thread, userID, ws.EventNewMessage, message)
	uc.notifyInbox(thread, userID)

	log.Printf("Message %s sent to thread %s by user %s", message.ID, thread.ID, userID)
	return message, nil
}

// SetTyping flips the sender's typing flag on the thread. There is no TTL:
// the flag stays until the author clears it or sends the message.
func (uc *MessagingUseCase) SetTyping(ctx context.Context, userID, threadID string, typing bool) error {
	allowed, _ := uc.rateLimiter.Allow(userID, "typing")
	if !allowed {
		return nil
	}

	thread, err := uc.threadRepo.GetByID(ctx, threadID)
	if err != nil {
		return errors.NotFound("Thread", err)
	}
	if !thread.HasParticipant(userID) {
		return errors.Forbidden("You are not a participant in this thread", nil)
	}

	if err := uc.threadRepo.SetTyping(ctx, threadID, userID, typing); err != nil {
		return err
	}

	uc.broadcastToThread(thread, userID, ws.EventTyping, ws.TypingData{
		ThreadID: threadID,
		UserID:   userID,
		IsTyping: typing,
	})
	return nil
}

// MarkThreadSeen zeroes the caller's unread count for the thread and marks
// the latest messages as seen.
func (uc *MessagingUseCase) MarkThreadSeen(ctx context.Context, userID, threadID string) error {
	thread, err := uc.threadRepo.GetByID(ctx, threadID)
	if err != nil {
		return errors.NotFound("Thread", err)
	}
	if !thread.HasParticipant(userID) {
		return errors.Forbidden("You are not a participant in this thread", nil)
	}

	if err := uc.threadRepo.ClearUnread(ctx, threadID, userID); err != nil {
		return err
	}

	uc.broadcastToThread(thread, userID, ws.EventSeenReceipt, ws.SeenReceiptData{
		ThreadID: threadID,
		SeenBy:   userID,
	})
	return nil
}

func (uc *MessagingUseCase) MarkMessageSeen(ctx context.Context, userID, threadID, messageID string) error {
	thread, err := uc.threadRepo.GetByID(ctx, threadID)
	if err != nil {
		return errors.NotFound("Thread", err)
	}
	if !thread.HasParticipant(userID) {
		return errors.Forbidden("You are not a participant in this thread", nil)
	}

	return uc.threadRepo.MarkMessageSeen(ctx, threadID, messageID, userID)
}

func (uc *MessagingUseCase) MarkMessageDelivered(ctx context.Context, userID, threadID, messageID string) error {
	thread, err := uc.threadRepo.GetByID(ctx, threadID)
	if err != nil {
		return errors.NotFound("Thread", err)
	}
	if !thread.HasParticipant(userID) {
		return errors.Forbidden("You are not a participant in this thread", nil)
	}

	return uc.threadRepo.MarkMessageDelivered(ctx, threadID, messageID, userID)
}

// ListMessages returns messages ordered oldest first.
func (uc *MessagingUseCase) ListMessages(ctx context.Context, userID, threadID string, limit, offset int) ([]MessageResponse, int64, error) {
	thread, err := uc.threadRepo.GetByID(ctx, threadID)
	if err != nil {
		return nil, 0, errors.NotFound("Thread", err)
	}
	if !thread.HasParticipant(userID) {
		return nil, 0, errors.Forbidden("You are not a participant in this thread", nil)
	}

	messages, total, err := uc.threadRepo.ListMessages(ctx, threadID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	senders := make(map[string]*entity.User)
	responses := make([]MessageResponse, 0, len(messages))
	for _, message := range messages {
		sender, ok := senders[message.SenderID]
		if !ok {
			sender, err = uc.userRepo.GetByID(ctx, message.SenderID)
			if err != nil {
				sender = nil
			}
			senders[message.SenderID] = sender
		}
		responses = append(responses, MessageResponse{Message: message, Sender: sender})
	}

	return responses, total, nil
}

func (uc *MessagingUseCase) GetThread(ctx context.Context, userID, threadID string) (*ThreadResponse, error) {
	thread, err := uc.threadRepo.GetByID(ctx, threadID)
	if err != nil {
		return nil, errors.NotFound("Thread", err)
	}
	if !thread.HasParticipant(userID) {
		return nil, errors.Forbidden("You are not a participant in this thread", nil)
	}

	return uc.decorateThread(ctx, userID, thread), nil
}

func (uc *MessagingUseCase) GetUserThreads(ctx context.Context, userID string, limit, offset int) ([]ThreadResponse, int64, error) {
	threads, total, err := uc.threadRepo.ListByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ThreadResponse, 0, len(threads))
	for _, thread := range threads {
		responses = append(responses, *uc.decorateThread(ctx, userID, thread))
	}

	return responses, total, nil
}

func (uc *MessagingUseCase) ReactToMessage(ctx context.Context, userID, threadID, messageID, reaction string) error {
	thread, err := uc.threadRepo.GetByID(ctx, threadID)
	if err != nil {
		return errors.NotFound("Thread", err)
	}
	if !thread.HasParticipant(userID) {
		return errors.Forbidden("You are not a participant in this thread", nil)
	}

	message, err := uc.threadRepo.GetMessageByID(ctx, threadID, messageID)
	if err != nil {
		return errors.NotFound("Message", err)
	}

	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return errors.NotFound("User", err)
	}

	if message.Reactions == nil {
		message.Reactions = make(map[string][]entity.Reaction)
	}

	// Toggle: reacting twice with the same emoji removes the reaction.
	existing := message.Reactions[reaction]
	removed := false
	for i, r := range existing {
		if r.UID == userID {
			message.Reactions[reaction] = append(existing[:i], existing[i+1:]...)
			removed = true
			break
		}
	}
	if !removed {
		message.Reactions[reaction] = append(existing, entity.Reaction{UID: userID, Name: user.Username})
	}
	if len(message.Reactions[reaction]) == 0 {
		delete(message.Reactions, reaction)
	}

	if err := uc.threadRepo.UpdateMessage(ctx, threadID, message); err != nil {
		return err
	}

	uc.broadcastToThread(thread, "", ws.EventReaction, message)
	return nil
}

// DeleteThread removes the thread and all of its messages. Only a
// participant or an admin may delete.
func (uc *MessagingUseCase) DeleteThread(ctx context.Context, userID, threadID string, isAdmin bool) error {
	thread, err := uc.threadRepo.GetByID(ctx, threadID)
	if err != nil {
		return errors.NotFound("Thread", err)
	}
	if !isAdmin && !thread.HasParticipant(userID) {
		return errors.Forbidden("You are not a participant in this thread", nil)
	}

	if err := uc.threadRepo.Delete(ctx, threadID); err != nil {
		return err
	}

	log.Printf("Thread %s deleted by user %s", threadID, userID)
	uc.notifyInbox(thread, "")
	return nil
}

// ResolveSwipe maps a horizontal drag distance released over an inbox row to
// its effect: a long right swipe marks the thread unread, a long left swipe
// past the commit point deletes it, a shorter left swipe only reveals the
// delete affordance and changes nothing server side.
func (uc *MessagingUseCase) ResolveSwipe(ctx context.Context, userID, threadID string, delta float64) (swipe.Action, error) {
	action := swipe.Resolve(delta)

	switch action {
	case swipe.ActionMarkUnread:
		thread, err := uc.threadRepo.GetByID(ctx, threadID)
		if err != nil {
			return swipe.ActionNone, errors.NotFound("Thread", err)
		}
		if !thread.HasParticipant(userID) {
			return swipe.ActionNone, errors.Forbidden("You are not a participant in this thread", nil)
		}
		if thread.UnreadCounts[userID] == 0 {
			if err := uc.threadRepo.IncrementUnread(ctx, threadID, userID, 1); err != nil {
				return swipe.ActionNone, err
			}
		}
	case swipe.ActionDelete:
		if err := uc.DeleteThread(ctx, userID, threadID, false); err != nil {
			return swipe.ActionNone, err
		}
	}

	return action, nil
}

// DraftReply asks the assistant to compose a reply from recent thread
// history. The caller's context is honored so closing the composer aborts
// the request.
func (uc *MessagingUseCase) DraftReply(ctx context.Context, userID, threadID string) (string, error) {
	thread, err := uc.threadRepo.GetByID(ctx, threadID)
	if err != nil {
		return "", errors.NotFound("Thread", err)
	}
	if !thread.HasParticipant(userID) {
		return "", errors.Forbidden("You are not a participant in this thread", nil)
	}

	messages, _, err := uc.threadRepo.ListMessages(ctx, threadID, 50, 0)
	if err != nil {
		return "", err
	}
	if len(messages) == 0 {
		return "", errors.BadRequest("Thread has no messages to draft from", nil)
	}

	draft, err := uc.assistant.DraftReply(ctx, messages)
	if err != nil {
		if ctx.Err() != nil {
			return "", errors.New("CANCELLED", "Draft request was cancelled", 499, ctx.Err())
		}
		return "", errors.Internal("Failed to generate draft", err)
	}

	return draft, nil
}

func (uc *MessagingUseCase) decorateThread(ctx context.Context, userID string, thread *entity.Thread) *ThreadResponse {
	resp := &ThreadResponse{Thread: thread}

	if thread.ListingID != "" {
		if listing, err := uc.listingRepo.GetByID(ctx, thread.ListingID); err == nil {
			resp.Listing = listing
		}
	}

	for _, participantID := range thread.Participants {
		if participantID == userID {
			continue
		}
		if other, err := uc.userRepo.GetByID(ctx, participantID); err == nil {
			resp.OtherUser = other
		}
		break
	}

	return resp
}

func (uc *MessagingUseCase) broadcastToThread(thread *entity.Thread, excludeUserID, eventType string, data interface{}) {
	envelope := ws.Envelope{
		Type:      eventType,
		ThreadID:  thread.ID,
		Data:      data,
		Timestamp: time.Now().Format(time.RFC3339),
	}

	payload, err := json.Marshal(envelope)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", eventType, err)
		return
	}

	uc.wsManager.SendToThreadRoom(thread.ID, payload, excludeUserID)
}

func (uc *MessagingUseCase) notifyInbox(thread *entity.Thread, excludeUserID string) {
	data := ws.InboxUpdateData{
		ThreadID:        thread.ID,
		LastMessageText: thread.LastMessageText,
	}
	if thread.LastMessageAt != nil {
		data.LastMessageAt = thread.LastMessageAt.Format(time.RFC3339)
	}

	envelope := ws.Envelope{
		Type:      ws.EventInboxUpdate,
		ThreadID:  thread.ID,
		Data:      data,
		Timestamp: time.Now().Format(time.RFC3339),
	}

	payload, err := json.Marshal(envelope)
	if err != nil {
		log.Printf("Failed to marshal inbox update: %v", err)
		return
	}

	for _, participantID := range thread.Participants {
		if participantID == excludeUserID {
			continue
		}
		uc.wsManager.SendToUser(participantID, payload)
	}
}
