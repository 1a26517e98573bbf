package transport

import "errors"

// ErrClosed is returned when sending on a connection that has been closed.
var ErrClosed = errors.New("transport: connection closed")
