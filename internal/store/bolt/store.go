// Package bolt implements store.Repository on a bbolt file. Each entity kind
// has its own bucket holding JSON records keyed by id. Records carry an
// insertion sequence so listings keep creation order.
package bolt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/vbonduro/lostfound/internal/domain"
	"github.com/vbonduro/lostfound/internal/store"
)

var (
	bucketItems         = []byte("items")
	bucketProposals     = []byte("match_proposals")
	bucketNotifications = []byte("notifications")
	bucketUsers         = []byte("users")
	bucketEmails        = []byte("user_emails")
)

var _ store.Repository = (*Store)(nil)

type Store struct {
	db  *bolt.DB
	now func() time.Time
}

// Open opens (or creates) the bbolt database at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketItems, bucketProposals, bucketNotifications, bucketUsers, bucketEmails} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("bbolt init buckets: %w (also failed to close: %v)", err, cerr)
		}
		return nil, fmt.Errorf("bbolt init buckets: %w", err)
	}
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// record wraps a stored entity with its insertion sequence.
type record[T any] struct {
	Seq   uint64 `json:"seq"`
	Value T      `json:"value"`
}

func put[T any](b *bolt.Bucket, id string, seq uint64, v *T) error {
	data, err := json.Marshal(record[T]{Seq: seq, Value: *v})
	if err != nil {
		return fmt.Errorf("marshal %s: %w", id, err)
	}
	return b.Put([]byte(id), data)
}

// insert stores v under a fresh sequence number, refusing to overwrite.
func insert[T any](b *bolt.Bucket, id string, v *T) error {
	if b.Get([]byte(id)) != nil {
		return domain.ErrConflict
	}
	seq, err := b.NextSequence()
	if err != nil {
		return err
	}
	return put(b, id, seq, v)
}

// get decodes the record stored under id. ok is false when it is absent.
func get[T any](b *bolt.Bucket, id string) (rec record[T], ok bool, err error) {
	data := b.Get([]byte(id))
	if data == nil {
		return rec, false, nil
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, false, fmt.Errorf("unmarshal %s: %w", id, err)
	}
	return rec, true, nil
}

// update applies fn to the record stored under id, keeping its sequence.
func update[T any](b *bolt.Bucket, id string, missing error, fn func(*T)) error {
	rec, ok, err := get[T](b, id)
	if err != nil {
		return err
	}
	if !ok {
		return missing
	}
	fn(&rec.Value)
	return put(b, id, rec.Seq, &rec.Value)
}

// scan returns every value in the bucket accepted by keep, ordered by
// insertion sequence.
func scan[T any](b *bolt.Bucket, keep func(*T) bool) ([]*T, error) {
	var recs []record[T]
	err := b.ForEach(func(k, v []byte) error {
		var rec record[T]
		if err := json.Unmarshal(v, &rec); err != nil {
			return fmt.Errorf("unmarshal %s: %w", k, err)
		}
		if keep(&rec.Value) {
			recs = append(recs, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(recs, func(a, b record[T]) int {
		switch {
		case a.Seq < b.Seq:
			return -1
		case a.Seq > b.Seq:
			return 1
		}
		return 0
	})
	out := make([]*T, 0, len(recs))
	for i := range recs {
		out = append(out, &recs[i].Value)
	}
	return out, nil
}

func (s *Store) stamp(id *string, at *time.Time) {
	if *id == "" {
		*id = uuid.NewString()
	}
	if at.IsZero() {
		*at = s.now()
	}
	*at = at.UTC()
}

func (s *Store) view(ctx context.Context, fn func(tx *bolt.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(fn)
}

func (s *Store) update(ctx context.Context, fn func(tx *bolt.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(fn)
}

// wrap annotates storage failures but leaves domain errors recognisable.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var nf *domain.NotFoundError
	if errors.As(err, &nf) {
		return err
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
