package service

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	aggdomain "friendlyeats/agg-svc/internal/domain"

	"github.com/segmentio/kafka-go"
)

// Consumer feeds the change topic into a dispatcher. Offsets are committed
// after every message whatever the outcome; redelivery is left to the
// producer side and the updaters are idempotent against it.
type Consumer struct {
	Reader     MessageReader
	Dispatcher ChangeDispatcher
	// RetryDelay is the pause after a failed fetch.
	RetryDelay time.Duration
}

const DefaultFetchRetryDelay = time.Second

func NewConsumer(reader MessageReader, dispatcher ChangeDispatcher) *Consumer {
	return &Consumer{
		Reader:     reader,
		Dispatcher: dispatcher,
		RetryDelay: DefaultFetchRetryDelay,
	}
}

// Start blocks until ctx is cancelled or the reader is closed.
func (c *Consumer) Start(ctx context.Context) {
	log.Println("Starting Aggregation Service consumer...")
	for {
		message, err := c.Reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				log.Println("Aggregation Service consumer stopped")
				return
			}
			log.Printf("Error reading message: %v", err)
			select {
			case <-ctx.Done():
				log.Println("Aggregation Service consumer stopped")
				return
			case <-time.After(c.RetryDelay):
			}
			continue
		}

		if err := c.ProcessMessage(ctx, message); err != nil {
			log.Printf("Error processing change %s: %v", message.Key, err)
		}

		if err := c.Reader.CommitMessages(ctx, message); err != nil {
			log.Printf("Error committing offset %d: %v", message.Offset, err)
		}
	}
}

func (c *Consumer) ProcessMessage(ctx context.Context, message kafka.Message) error {
	change, err := aggdomain.ParseChange(message.Value)
	if err != nil {
		return err
	}
	return c.Dispatcher.Dispatch(ctx, change)
}
