// Package docstore is a small document-store abstraction over MongoDB,
// PostgreSQL JSONB and process memory. Documents are Go structs whose bson
// and json field names match, so a dotted filter path means the same thing in
// every driver.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate key")
	ErrInvalidID = errors.New("invalid document id")
)

// Meta is embedded by every stored document.
type Meta struct {
	ID        primitive.ObjectID `bson:"_id"       json:"_id"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (m *Meta) DocMeta() *Meta { return m }

// Document is implemented by any struct embedding Meta.
type Document interface {
	DocMeta() *Meta
}

// Filter matches documents whose value at each dotted path equals the given
// value. A nil or empty filter matches everything.
type Filter map[string]any

// Fields are top-level fields replaced by an update.
type Fields map[string]any

type Sort struct {
	Field string
	Desc  bool
}

// NewestFirst orders by creation time, most recent first.
var NewestFirst = Sort{Field: "createdAt", Desc: true}

type Collection interface {
	// Find decodes all matching documents into out, a pointer to a slice.
	Find(ctx context.Context, filter Filter, sort Sort, out any) error
	FindOne(ctx context.Context, filter Filter, out any) error
	FindByID(ctx context.Context, id string, out any) error
	Insert(ctx context.Context, doc Document) error
	UpdateByID(ctx context.Context, id string, set Fields) error
	DeleteByID(ctx context.Context, id string) error
}

type Store interface {
	Collection(name string) Collection
	// EnsureCollection declares a collection and the fields whose values
	// must be unique across its documents.
	EnsureCollection(ctx context.Context, name string, unique ...string) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Options selects and configures a driver.
type Options struct {
	Driver        string
	MongoURI      string
	MongoDatabase string
	PostgresDSN   string
}

// Open connects to the configured driver and verifies it is reachable.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case "memory":
		return NewMemory(), nil
	case "mongo":
		return OpenMongo(ctx, opts.MongoURI, opts.MongoDatabase)
	case "postgres":
		return OpenPostgres(ctx, opts.PostgresDSN)
	default:
		return nil, fmt.Errorf("docstore: unknown driver %q", opts.Driver)
	}
}

// ParseID validates a hex document id.
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}

// ValidID reports whether id is a well-formed document id.
func ValidID(id string) bool {
	_, err := ParseID(id)
	return err == nil
}

// stamp assigns an id and timestamps to a document about to be inserted.
// Times are truncated to milliseconds so every driver round-trips them equally.
func stamp(doc Document) *Meta {
	m := doc.DocMeta()
	now := time.Now().UTC().Truncate(time.Millisecond)
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = m.CreatedAt
	}
	return m
}

var (
	namePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)
	pathPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)
)

func checkName(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("docstore: invalid collection name %q", name)
	}
	return nil
}

func checkPath(path string) error {
	if !pathPattern.MatchString(path) {
		return fmt.Errorf("docstore: invalid field path %q", path)
	}
	return nil
}

// nest turns dotted filter paths into a nested document.
func nest(filter Filter) map[string]any {
	out := map[string]any{}
	for path, v := range filter {
		parts := strings.Split(path, ".")
		cur := out
		for _, p := range parts[:len(parts)-1] {
			next, ok := cur[p].(map[string]any)
			if !ok {
				next = map[string]any{}
				cur[p] = next
			}
			cur = next
		}
		cur[parts[len(parts)-1]] = v
	}
	return out
}
