package shared

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Sequencer issues document numbers for a prefix.
type Sequencer interface {
	Next(ctx context.Context, prefix string) (string, error)
}

// SequenceStore issues human-readable document numbers (ORD-001, INV-002, ...)
// backed by Redis counters so numbers stay monotonic across processes.
type SequenceStore struct {
	client *redis.Client
}

// NewSequenceStore constructs a SequenceStore.
func NewSequenceStore(client *redis.Client) *SequenceStore {
	return &SequenceStore{client: client}
}

// Next returns the next document number for the given prefix.
func (s *SequenceStore) Next(ctx context.Context, prefix string) (string, error) {
	n, err := s.client.Incr(ctx, s.key(prefix)).Result()
	if err != nil {
		return "", fmt.Errorf("shared: next sequence %s: %w", prefix, err)
	}
	return fmt.Sprintf("%s-%03d", prefix, n), nil
}

// Ensure advances the counter so the next issued number follows existing data.
func (s *SequenceStore) Ensure(ctx context.Context, prefix string, atLeast int64) error {
	key := s.key(prefix)
	current, err := s.client.Get(ctx, key).Int64()
	if err != nil && err != redis.Nil {
		return err
	}
	if current >= atLeast {
		return nil
	}
	return s.client.Set(ctx, key, atLeast, 0).Err()
}

func (s *SequenceStore) key(prefix string) string {
	return "seq:" + prefix
}

var _ Sequencer = (*SequenceStore)(nil)
