package mailparse

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/jaytaylor/html2text"
	"github.com/jhillyerd/enmime"
	"github.com/rs/zerolog/log"
)

// Message is the part of an email the scanner cares about
type Message struct {
	Subject string `json:"subject"`
	// Sender is the bare address of the first From entry
	Sender string `json:"sender"`
	// Text is the plain body, converted from HTML when the message has no text part
	Text string `json:"text"`
	HTML string `json:"html,omitempty"`
	// Headers is the header block rendered one "Key: value" line per value
	Headers string `json:"headers"`
	// URLs are the links found in the HTML anchors and the plain body, first occurrence order
	URLs []string `json:"urls"`
}

// ReadMessage parses an RFC 5322 message
func ReadMessage(r io.Reader) (Message, error) {
	env, err := enmime.ReadEnvelope(r)
	if err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrReadMessage, err)
	}

	msg := Message{
		Subject: env.GetHeader("Subject"),
		Sender:  sender(env),
		Text:    strings.TrimSpace(env.Text),
		HTML:    env.HTML,
		Headers: headerBlock(env),
	}

	if msg.Text == "" && msg.HTML != "" {
		msg.Text = PlainText(msg.HTML)
	}

	if msg.Headers == "" && msg.Text == "" {
		return Message{}, ErrEmptyMessage
	}

	msg.URLs = mergeURLs(AnchorURLs(msg.HTML), ExtractURLs(msg.Text))

	return msg, nil
}

// PlainText converts an HTML body to readable text, returning the input unchanged when it
// cannot be converted
func PlainText(body string) string {
	text, err := html2text.FromString(body, html2text.Options{OmitLinks: true})
	if err != nil {
		log.Debug().Err(err).Msg("html to text conversion failed")

		return body
	}

	return strings.TrimSpace(text)
}

func sender(env *enmime.Envelope) string {
	addrs, err := env.AddressList("From")
	if err == nil && len(addrs) > 0 {
		return strings.ToLower(addrs[0].Address)
	}

	return strings.TrimSpace(env.GetHeader("From"))
}

func headerBlock(env *enmime.Envelope) string {
	keys := env.GetHeaderKeys()
	slices.Sort(keys)

	var b strings.Builder

	for _, k := range keys {
		for _, v := range env.GetHeaderValues(k) {
			b.WriteString(k)
			b.WriteString(": ")
			b.WriteString(v)
			b.WriteString("\n")
		}
	}

	return b.String()
}
