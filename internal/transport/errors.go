package transport

import "errors"

var (
	ErrPeerUnavailable = errors.New("peer unavailable")
)
