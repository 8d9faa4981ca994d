package queue

import "context"

// Client sends messages to a queue backend.
type Client interface {
	Send(ctx context.Context, msg Message) error
}

// Consumer receives and deletes messages; the worker poll loop uses it.
type Consumer interface {
	Receive(ctx context.Context, max int) ([]Received, error)
	Delete(ctx context.Context, receiptHandle string) error
}

// Received is a raw queue delivery awaiting parse and acknowledgment.
type Received struct {
	Body          string
	ReceiptHandle string
}
