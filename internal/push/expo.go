package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	chat_errors "github.com/emanuuele/girls-chat-api/pkg/errors"
)

// DefaultPushURL is Expo's push HTTP endpoint.
const DefaultPushURL = "https://exp.host/--/api/v2/push/send"

// ChunkSize is the maximum number of notifications Expo accepts per request.
const ChunkSize = 100

// Message is one push notification in Expo's wire format.
type Message struct {
	To       string                 `json:"to"`
	Title    string                 `json:"title,omitempty"`
	Sound    string                 `json:"sound,omitempty"`
	Body     string                 `json:"body"`
	Data     map[string]interface{} `json:"data,omitempty"`
	Priority string                 `json:"priority,omitempty"`
}

// IsExpoPushToken reports whether a token has Expo's push token shape.
// Tokens failing this check are skipped before a request is ever made.
func IsExpoPushToken(token string) bool {
	if !strings.HasSuffix(token, "]") {
		return false
	}
	return strings.HasPrefix(token, "ExponentPushToken[") || strings.HasPrefix(token, "ExpoPushToken[")
}

// Chunk splits messages into provider-sized groups. Each group is sent as an
// independent request; one failing group never blocks the others.
func Chunk(messages []Message, size int) [][]Message {
	if size <= 0 {
		size = ChunkSize
	}
	var chunks [][]Message
	for start := 0; start < len(messages); start += size {
		end := start + size
		if end > len(messages) {
			end = len(messages)
		}
		chunks = append(chunks, messages[start:end])
	}
	return chunks
}

// Client talks to the Expo push API.
type Client struct {
	url         string
	accessToken string
	httpClient  *http.Client
}

func NewClient(url, accessToken string) *Client {
	if url == "" {
		url = DefaultPushURL
	}
	return &Client{
		url:         url,
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
	}
}

type ticketResponse struct {
	Data []struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"data"`
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

// SendChunk posts one chunk of notifications. A non-OK status, a top-level
// API error, or a rejected ticket all surface as an error to the caller.
func (c *Client) SendChunk(ctx context.Context, chunk []Message) error {
	if len(chunk) == 0 {
		return nil
	}

	body, err := json.Marshal(chunk)
	if err != nil {
		return fmt.Errorf("failed to marshal push chunk: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: expo push returned status %d", chat_errors.ErrDeliveryFailed, resp.StatusCode)
	}

	var tickets ticketResponse
	if err := json.NewDecoder(resp.Body).Decode(&tickets); err != nil {
		return fmt.Errorf("failed to decode expo response: %w", err)
	}
	if len(tickets.Errors) > 0 {
		return fmt.Errorf("%w: %s: %s", chat_errors.ErrDeliveryFailed, tickets.Errors[0].Code, tickets.Errors[0].Message)
	}
	for _, ticket := range tickets.Data {
		if ticket.Status == "error" {
			return fmt.Errorf("%w: ticket rejected: %s", chat_errors.ErrDeliveryFailed, ticket.Message)
		}
	}
	return nil
}
