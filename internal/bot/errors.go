package bot

import "errors"

var (
	// ErrMalformedUpdate means the update has neither a message nor a callback
	ErrMalformedUpdate = errors.New("malformed update: no message data")
	// ErrNoText means the message carries no text (stickers, photos) and is ignored
	ErrNoText = errors.New("message has no text")
	// ErrUnknownTemplate means a template key has no definition
	ErrUnknownTemplate = errors.New("unknown template")
	// ErrDelivery wraps every failed outbound call
	ErrDelivery = errors.New("delivery failed")
	// ErrPrimaryDelivery means the reply to the sender could not be delivered
	ErrPrimaryDelivery = errors.New("primary reply not delivered")
)
