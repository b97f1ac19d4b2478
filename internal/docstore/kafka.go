package docstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
)

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaChangeSink publishes change events keyed by document path, so all
// changes of one document land on the same partition in commit order.
type KafkaChangeSink struct {
	Writer MessageWriter
}

func NewKafkaChangeSink(writer MessageWriter) *KafkaChangeSink {
	return &KafkaChangeSink{Writer: writer}
}

func (p *KafkaChangeSink) Publish(ctx context.Context, changes []Change) error {
	msgs := make([]kafka.Message, 0, len(changes))
	for _, change := range changes {
		payload, err := json.Marshal(change)
		if err != nil {
			return fmt.Errorf("failed to encode change %s: %w", change.Ref().Path(), err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(change.Ref().Path()),
			Value: payload,
		})
	}
	return p.Writer.WriteMessages(ctx, msgs...)
}

var _ ChangeSink = (*KafkaChangeSink)(nil)
