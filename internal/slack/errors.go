package slack

import "errors"

var (
	// ErrMissingWebhookURL is returned when no incoming webhook is configured
	ErrMissingWebhookURL = errors.New("slack webhook URL is required")
	// ErrNotificationFailed is returned when a scan alert cannot be delivered
	ErrNotificationFailed = errors.New("slack notification failed")
	// ErrUnexpectedStatus is returned when the webhook answers with a non-2xx status
	ErrUnexpectedStatus = errors.New("unexpected slack webhook response status")
)
