package domain

import (
	"encoding/json"
	"errors"
	"fmt"

	"friendlyeats/internal/docstore"
)

var ErrEmptyChange = errors.New("change event has neither before nor after snapshot")

// ParseChange decodes one change event as published by docstore.KafkaChangeSink
// or pushed to the HTTP ingress.
func ParseChange(value []byte) (docstore.Change, error) {
	var change docstore.Change
	if err := json.Unmarshal(value, &change); err != nil {
		return docstore.Change{}, fmt.Errorf("failed to decode change event: %w", err)
	}
	if err := change.Ref().Validate(); err != nil {
		return docstore.Change{}, err
	}
	if change.Kind() == 0 {
		return docstore.Change{}, fmt.Errorf("%s: %w", change.Ref().Path(), ErrEmptyChange)
	}
	return change, nil
}
