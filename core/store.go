package core

import (
	"context"
	"errors"

	"chainchat/model"
)

// ErrMessageNotFound is returned by MessageStore lookups for ids that
// were never persisted or have since been deleted.
var ErrMessageNotFound = errors.New("core: message not found")

// MessageStore is the durable home of individual chat messages. The
// ledger and the broadcast path only depend on this interface.
type MessageStore interface {
	// InsertMessage persists the message and returns its assigned id.
	InsertMessage(ctx context.Context, msg *model.Message) (int64, error)

	// MessageByID returns the message with the given id, or
	// ErrMessageNotFound.
	MessageByID(ctx context.Context, id int64) (*model.Message, error)

	// ListMessages returns all messages in insertion order.
	ListMessages(ctx context.Context) ([]*model.Message, error)
}
