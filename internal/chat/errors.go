package chat

import "errors"

var (
	// ErrNotAuthorized is returned when the caller does not own the
	// targeted conversation or message.
	ErrNotAuthorized = errors.New("not authorized")
	// ErrConversationNotFound is returned for unknown conversation IDs.
	ErrConversationNotFound = errors.New("conversation not found")
	// ErrMessageNotFound is returned for unknown message IDs.
	ErrMessageNotFound = errors.New("message not found")
	// ErrEmptyContent is returned when a submission carries no text.
	ErrEmptyContent = errors.New("content is required")
	// ErrAttachmentStorage is returned when storing an attachment fails;
	// no message is created in that case.
	ErrAttachmentStorage = errors.New("attachment storage failed")
)
