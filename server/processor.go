package server

import "context"

// A RequestProcessor serves the client requests a transport subsystem has
// buffered. A single call may drain many requests. Implementations read and
// write the process image through its bounds-checked accessors, consult
// Server.ValidateRequest before applying any request, and report every
// mutation to the server's ChangeTracker.
//
// The server never runs two invocations concurrently. The context is
// cancelled when the server stops.
type RequestProcessor interface {
	ProcessRequests(ctx context.Context) error
}

// RequestProcessorFunc adapts a function to the RequestProcessor interface.
type RequestProcessorFunc func(ctx context.Context) error

// ProcessRequests calls f.
func (f RequestProcessorFunc) ProcessRequests(ctx context.Context) error {
	return f(ctx)
}
