package telegram

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
)

// Client delivers share summaries to a Telegram chat. It satisfies the
// report package's ShareSink.
type Client struct {
	token      string
	chatID     int64
	httpClient *http.Client
}

func NewClient(token string, chatID int64) *Client {
	return &Client{
		token:  token,
		chatID: chatID,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Configured reports whether the client can actually deliver messages.
func (c *Client) Configured() bool {
	return c.token != "" && c.chatID != 0
}

type sendMessageReq struct {
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`
}

func (c *Client) Send(text string) error {
	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", c.token)

	jsonBody, err := json.Marshal(sendMessageReq{ChatID: c.chatID, Text: text})
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Post(url, "application/json", bytes.NewBuffer(jsonBody))
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body []byte
		if resp.Body != nil {
			body, _ = io.ReadAll(resp.Body)
		}
		return fmt.Errorf("telegram api returned %s: %s", resp.Status, string(body))
	}
	return nil
}
