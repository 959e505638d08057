// Package gallery records generated compositions so they can be listed and
// reproduced later.
//
// A [Record] holds only what is needed to replay a run: the configuration
// and the seed. The pixels are regenerated on demand, which the artifact
// cache usually makes free.
//
// Backends implement [Store]: [MemoryStore] for tests and single-process
// servers, [FileStore] for a local directory, and [MongoStore] for a shared
// MongoDB collection.
package gallery

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/mondrian/pkg/config"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("gallery: record not found")

// DefaultListLimit bounds List when the caller passes zero.
const DefaultListLimit = 50

// Record describes one generated composition.
type Record struct {
	ID        string        `json:"id" bson:"_id"`
	CreatedAt time.Time     `json:"created_at" bson:"created_at"`
	Config    config.Config `json:"config" bson:"config"`
	Seed      uint64        `json:"seed,string" bson:"-"`
	Leaves    int           `json:"leaves" bson:"leaves"`
	Border    uint32        `json:"border" bson:"border"`
}

// NewRecord creates a record with a fresh ID. The seed is stored on the
// record, not in the embedded config.
func NewRecord(cfg config.Config, seed uint64, leaves int, border uint32) *Record {
	cfg.Seed = 0
	cfg.Output = ""
	cfg.Workers = 0
	return &Record{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Config:    cfg,
		Seed:      seed,
		Leaves:    leaves,
		Border:    border,
	}
}

// ReplayConfig returns the configuration that reproduces the record.
func (r *Record) ReplayConfig() config.Config {
	cfg := r.Config
	cfg.Seed = r.Seed
	return cfg
}

// Store persists records.
type Store interface {
	// Put inserts or replaces a record.
	Put(ctx context.Context, r *Record) error

	// Get returns ErrNotFound for unknown IDs.
	Get(ctx context.Context, id string) (*Record, error)

	// List returns up to limit records, newest first.
	List(ctx context.Context, limit int) ([]*Record, error)

	// Delete returns ErrNotFound for unknown IDs.
	Delete(ctx context.Context, id string) error

	Close() error
}

func sortNewestFirst(recs []*Record) {
	slices.SortFunc(recs, func(a, b *Record) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
