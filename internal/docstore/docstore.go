package docstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrBadFilter signals an unsupported filter operator.
var ErrBadFilter = errors.New("docstore: unsupported filter operator")

// Document is a schemaless record. The "id" key is reserved and filled
// in by the store on reads.
type Document map[string]any

// Filter narrows a listing to documents whose field satisfies op value.
// Supported operators: == != > >= < <=.
type Filter struct {
	Field string
	Op    string
	Value any
}

// Backend persists raw documents per collection.
type Backend interface {
	Fetch(ctx context.Context, collection string) ([]Document, error)
	Get(ctx context.Context, collection, id string) (Document, error)
	Insert(ctx context.Context, collection, id string, doc Document) error
	Update(ctx context.Context, collection, id string, doc Document) error
	Delete(ctx context.Context, collection, id string) error
}

// Store is a generic document wrapper with change notifications over
// redis pub/sub. Screens that have no dedicated module can persist
// through it.
type Store struct {
	backend Backend
	client  *redis.Client
	logger  *slog.Logger
	now     func() time.Time
}

// NewStore constructs a Store. client may be nil to disable
// notifications.
func NewStore(backend Backend, client *redis.Client, logger *slog.Logger) *Store {
	return &Store{
		backend: backend,
		client:  client,
		logger:  logger,
		now:     time.Now,
	}
}

// List returns the documents of a collection matching every filter,
// ordered by orderBy descending when set.
func (s *Store) List(ctx context.Context, collection string, filters []Filter, orderBy string) ([]Document, error) {
	for _, f := range filters {
		if !validOp(f.Op) {
			return nil, fmt.Errorf("%w: %q", ErrBadFilter, f.Op)
		}
	}

	docs, err := s.backend.Fetch(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("docstore: fetch %s: %w", collection, err)
	}

	var result []Document
	for _, doc := range docs {
		if matchesAll(doc, filters) {
			result = append(result, doc)
		}
	}
	if orderBy != "" {
		sort.SliceStable(result, func(i, j int) bool {
			return compare(result[i][orderBy], result[j][orderBy]) > 0
		})
	}
	return result, nil
}

// Get loads one document by id.
func (s *Store) Get(ctx context.Context, collection, id string) (Document, error) {
	return s.backend.Get(ctx, collection, id)
}

// Insert stores a new document and returns its generated id. Both
// timestamps are stamped.
func (s *Store) Insert(ctx context.Context, collection string, doc Document) (string, error) {
	id := uuid.NewString()
	stamped := make(Document, len(doc)+2)
	for k, v := range doc {
		stamped[k] = v
	}
	now := s.now().UTC()
	stamped["createdAt"] = now
	stamped["updatedAt"] = now

	if err := s.backend.Insert(ctx, collection, id, stamped); err != nil {
		return "", fmt.Errorf("docstore: insert into %s: %w", collection, err)
	}
	s.notify(ctx, collection, "insert", id)
	return id, nil
}

// Update merges partial onto an existing document and bumps updatedAt.
func (s *Store) Update(ctx context.Context, collection, id string, partial Document) error {
	existing, err := s.backend.Get(ctx, collection, id)
	if err != nil {
		return err
	}
	for k, v := range partial {
		if k == "id" || k == "createdAt" {
			continue
		}
		existing[k] = v
	}
	existing["updatedAt"] = s.now().UTC()
	delete(existing, "id")

	if err := s.backend.Update(ctx, collection, id, existing); err != nil {
		return fmt.Errorf("docstore: update %s/%s: %w", collection, id, err)
	}
	s.notify(ctx, collection, "update", id)
	return nil
}

// Delete removes a document.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if err := s.backend.Delete(ctx, collection, id); err != nil {
		return err
	}
	s.notify(ctx, collection, "delete", id)
	return nil
}

// Subscribe delivers the current matching snapshot, then a fresh
// snapshot after every change to the collection. The returned function
// ends the subscription.
func (s *Store) Subscribe(ctx context.Context, collection string, filters []Filter, orderBy string, fn func([]Document)) (func(), error) {
	if s.client == nil {
		return nil, errors.New("docstore: notifications are not configured")
	}
	for _, f := range filters {
		if !validOp(f.Op) {
			return nil, fmt.Errorf("%w: %q", ErrBadFilter, f.Op)
		}
	}

	snapshot, err := s.List(ctx, collection, filters, orderBy)
	if err != nil {
		return nil, err
	}
	fn(snapshot)

	pubsub := s.client.Subscribe(ctx, channelFor(collection))
	go func() {
		for range pubsub.Channel() {
			docs, err := s.List(ctx, collection, filters, orderBy)
			if err != nil {
				s.logger.Warn("docstore snapshot reload failed",
					slog.String("collection", collection),
					slog.Any("error", err))
				continue
			}
			fn(docs)
		}
	}()
	return func() { _ = pubsub.Close() }, nil
}

func (s *Store) notify(ctx context.Context, collection, event, id string) {
	if s.client == nil {
		return
	}
	payload := event + ":" + id
	if err := s.client.Publish(ctx, channelFor(collection), payload).Err(); err != nil {
		s.logger.Warn("docstore notify failed",
			slog.String("collection", collection),
			slog.Any("error", err))
	}
}

func channelFor(collection string) string {
	return "docstore:" + collection
}

func validOp(op string) bool {
	switch op {
	case "==", "!=", ">", ">=", "<", "<=":
		return true
	}
	return false
}

func matchesAll(doc Document, filters []Filter) bool {
	for _, f := range filters {
		c := compare(doc[f.Field], f.Value)
		switch f.Op {
		case "==":
			if c != 0 {
				return false
			}
		case "!=":
			if c == 0 {
				return false
			}
		case ">":
			if c <= 0 {
				return false
			}
		case ">=":
			if c < 0 {
				return false
			}
		case "<":
			if c >= 0 {
				return false
			}
		case "<=":
			if c > 0 {
				return false
			}
		}
	}
	return true
}

// compare orders two loosely typed values. JSON decoding yields
// float64 for every number, so numeric fields compare numerically.
func compare(a, b any) int {
	if an, ok := asFloat(a); ok {
		if bn, ok := asFloat(b); ok {
			switch {
			case an < bn:
				return -1
			case an > bn:
				return 1
			}
			return 0
		}
	}
	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			return at.Compare(bt)
		}
	}
	as := fmt.Sprint(a)
	bs := fmt.Sprint(b)
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	}
	return 0
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
