package client

import "errors"

var (
	// ErrNotConnected is returned for operations that require an
	// established session.
	ErrNotConnected = errors.New("client: not connected")

	// ErrAlreadyConnected is returned when Login is called twice.
	ErrAlreadyConnected = errors.New("client: already connected")

	// ErrUnknownRecipient is returned when the target of a message is
	// absent from the cached registry snapshot. No send is attempted.
	ErrUnknownRecipient = errors.New("client: unknown recipient")

	// ErrRecipientUnavailable is returned when a synchronous send is
	// rejected because the recipient went offline after the last
	// snapshot refresh. The message is not retried on the broadcast
	// path.
	ErrRecipientUnavailable = errors.New("client: recipient no longer available for synchronous delivery")
)
