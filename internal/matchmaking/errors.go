package matchmaking

import "errors"

var (
	// ErrUnderspecifiedIdentity is returned when neither a handle nor a
	// numeric ID can be derived for the requester or the partner. The call
	// performs no mutation.
	ErrUnderspecifiedIdentity = errors.New("either handle or telegram id should be specified")

	// ErrSelfMatch is returned when the resolved partner is the requester.
	// The call performs no mutation.
	ErrSelfMatch = errors.New("cannot match a user with themselves")
)
