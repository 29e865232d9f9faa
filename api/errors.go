package api

import "github.com/pkg/errors"

// Return-code style sentinel errors, per spec.md section 6: "Return
// codes: 0 success; non-zero failure with codes including failure,
// no-callback-set variants (generic, connect, terminate, user-auth)."
// Producer APIs return these synchronously and never via callbacks
// (spec.md section 7 "Propagation").
var (
	ErrFailure              = errors.New("api: operation failed")
	ErrNoCallbackSet        = errors.New("api: no callback registered")
	ErrNoConnectCallback    = errors.New("api: no connect-accept callback registered")
	ErrNoTerminateCallback  = errors.New("api: no terminate callback registered")
	ErrNoUserAuthCallback   = errors.New("api: no user-authenticate callback registered")
	ErrDuplicateConnect     = errors.New("api: host:service already bound to a live session")
	ErrQueueFull            = errors.New("api: queue full")
	ErrUnknownSession       = errors.New("api: unknown session")
)
