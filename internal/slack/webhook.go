package slack

import (
	"context"
	"fmt"
	"net/http"

	"github.com/theopenlane/httpsling"
)

// Message is a Slack webhook payload
type Message struct {
	// Text is shown in notifications and by clients that cannot render blocks
	Text   string  `json:"text"`
	Blocks []Block `json:"blocks,omitempty"`
}

// Block is a Block Kit layout block
type Block struct {
	// Type is header, section, context or divider
	Type   string       `json:"type"`
	Text   *TextObject  `json:"text,omitempty"`
	Fields []TextObject `json:"fields,omitempty"`
}

// TextObject is a plain_text or mrkdwn text element
type TextObject struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Send posts msg to the webhook
func (c *Client) Send(ctx context.Context, msg Message) error {
	requester := httpsling.MustNew(
		httpsling.URL(c.webhookURL),
		httpsling.Post(),
		httpsling.JSONBody(msg),
		httpsling.WithHTTPClient(c.httpClient),
	)

	resp, err := requester.SendWithContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotificationFailed, err)
	}
	defer resp.Body.Close() //nolint:errcheck // response body close error is non-critical

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	return nil
}
