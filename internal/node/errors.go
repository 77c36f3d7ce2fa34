package node

import "errors"

var (
	// ErrNotRunning reports that the event loop has not been started. The
	// control methods (Start, RequestStop, RequestRestart, Connect,
	// Disconnect, Discover) return no error, so no method of Node returns it.
	ErrNotRunning = errors.New("node: not running")

	// ErrAlreadyRunning is returned by Run if called while another call to
	// Run on the same Node is still active.
	ErrAlreadyRunning = errors.New("node: already running")

	// ErrPeerUnknown reports a peer id that is not in the connected index.
	// Disconnect returns no error, so no method of Node returns it.
	ErrPeerUnknown = errors.New("node: peer not connected")
)
