// Package ingest implements the webhook-to-state reconciliation pipeline:
// extracting message, status, and contact sub-events from a normalized
// payload and applying each to the store with idempotent, upsert-based
// semantics while broadcasting the same deltas to realtime subscribers.
//
// This file centralizes service-level error values so they can be returned
// consistently and checked by callers. Translation into HTTP responses is
// performed at the handler layer.
package ingest

import "errors"

var (
	// ErrMissingMessageID is returned when an inbound message event lacks
	// its provider id. The item is skipped; the rest of the payload is
	// still processed.
	ErrMissingMessageID = errors.New("message event has no id")

	// ErrMissingStatusID is returned when a status event lacks its
	// correlation id.
	ErrMissingStatusID = errors.New("status event has no id")

	// ErrInvalidStatus is returned when a status event carries a delivery
	// state outside the known set.
	ErrInvalidStatus = errors.New("unknown delivery status")

	// ErrEmptyBody is returned when a locally sent message has no content.
	ErrEmptyBody = errors.New("message body is empty")

	// ErrMissingConversation is returned when a locally sent message does
	// not name a conversation.
	ErrMissingConversation = errors.New("conversation id is required")
)
