package functions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"hiawto/internal/domain/entity"
	"hiawto/internal/domain/service"
)

// Client calls the hosted assistant functions over HTTPS. Requests carry
// the caller's context so an in-flight draft can be abandoned.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

type draftRequest struct {
	Messages []draftMessage `json:"messages"`
}

type draftMessage struct {
	SenderID string `json:"senderId"`
	Text     string `json:"text"`
}

type draftResponse struct {
	Draft string `json:"draft"`
}

func (c *Client) DraftReply(ctx context.Context, messages []*entity.Message) (string, error) {
	req := draftRequest{Messages: make([]draftMessage, 0, len(messages))}
	for _, m := range messages {
		req.Messages = append(req.Messages, draftMessage{
			SenderID: m.SenderID,
			Text:     m.Text,
		})
	}

	var resp draftResponse
	if err := c.post(ctx, "/draftReply", req, &resp); err != nil {
		return "", err
	}

	return resp.Draft, nil
}

type searchRequest struct {
	Query string `json:"query"`
}

type searchResponse struct {
	Hits []service.SearchHit `json:"hits"`
}

func (c *Client) SearchMessages(ctx context.Context, query string) ([]service.SearchHit, error) {
	var resp searchResponse
	if err := c.post(ctx, "/searchMessages", searchRequest{Query: query}, &resp); err != nil {
		return nil, err
	}

	return resp.Hits, nil
}

func (c *Client) post(ctx context.Context, path string, payload, result interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %v", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to execute request: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("Assistant function error (%s): %s", path, string(body))
		return fmt.Errorf("assistant function error: %s", string(body))
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to parse response: %v", err)
	}

	return nil
}

var _ service.AssistantService = (*Client)(nil)
