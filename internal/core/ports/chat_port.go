package ports

import "context"

// ChatPort is the interface for the chat transport integration.
type ChatPort interface {
	// Connect establishes the connection to the chat network.
	Connect(ctx context.Context) error

	// Disconnect closes the connection.
	Disconnect() error

	// IsConnected checks if the client is connected.
	IsConnected() bool

	// Start listening for messages until the context is cancelled.
	Start(ctx context.Context) error
}
