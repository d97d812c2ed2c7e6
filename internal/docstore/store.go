// Package docstore is a minimal Badger-backed document store compatible
// with the wire shapes the metrics client speaks: collections of JSON
// documents with store-managed system fields, listed with equality filters,
// single-field ordering, and a result limit.
package docstore

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"maps"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/reelviewapp/reelview-server/internal/errors"
)

// Document is a stored record: caller attributes at the top level plus
// $-prefixed system fields managed by the store.
type Document map[string]any

// ID returns the store-assigned document id.
func (d Document) ID() string {
	id, _ := d["$id"].(string)
	return id
}

// defaultListLimit applies when a list carries no limit clause.
const defaultListLimit = 25

// Store wraps a Badger database instance holding documents.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

// Open opens (or creates) the document database at path. An empty path
// opens an in-memory database, used by tests.
func Open(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Disable Badger's internal logging
	if path == "" {
		opts = opts.WithInMemory(true)
	} else {
		opts.SyncWrites = true
		opts.CompactL0OnClose = true
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	if logger != nil && path != "" {
		logger.Info("document database opened", "path", path)
	}
	return &Store{db: db, logger: logger}, nil
}

// Close gracefully closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func documentKey(databaseID, collectionID, documentID string) []byte {
	return []byte("doc:" + databaseID + ":" + collectionID + ":" + documentID)
}

func collectionPrefix(databaseID, collectionID string) []byte {
	return []byte("doc:" + databaseID + ":" + collectionID + ":")
}

// Create stores a new document. An empty or "unique()" documentID gets a
// generated id. Caller-supplied $-prefixed keys are ignored; the store owns
// system fields.
func (s *Store) Create(ctx context.Context, databaseID, collectionID, documentID string, data map[string]any) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if documentID == "" || documentID == "unique()" {
		id, err := gonanoid.New()
		if err != nil {
			return nil, fmt.Errorf("generate document id: %w", err)
		}
		documentID = id
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	doc := Document{}
	for k, v := range data {
		if strings.HasPrefix(k, "$") {
			continue
		}
		doc[k] = v
	}
	doc["$id"] = documentID
	doc["$collectionId"] = collectionID
	doc["$databaseId"] = databaseID
	doc["$createdAt"] = now
	doc["$updatedAt"] = now
	doc["$permissions"] = []string{}

	key := documentKey(databaseID, collectionID, documentID)
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err == nil {
			return errors.Internal("document already exists").WithDetails(documentID)
		}
		encoded, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("marshal document: %w", err)
		}
		return txn.Set(key, encoded)
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Get fetches one document by id.
func (s *Store) Get(ctx context.Context, databaseID, collectionID, documentID string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var doc Document
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(documentKey(databaseID, collectionID, documentID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &doc)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, errors.NotFoundf("document %s not found", documentID)
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Update merges data into an existing document and bumps $updatedAt.
// System fields in data are ignored.
func (s *Store) Update(ctx context.Context, databaseID, collectionID, documentID string, data map[string]any) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := documentKey(databaseID, collectionID, documentID)
	var doc Document
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &doc)
		}); err != nil {
			return err
		}

		for k, v := range data {
			if strings.HasPrefix(k, "$") {
				continue
			}
			doc[k] = v
		}
		doc["$updatedAt"] = time.Now().UTC().Format(time.RFC3339Nano)

		encoded, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("marshal document: %w", err)
		}
		return txn.Set(key, encoded)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, errors.NotFoundf("document %s not found", documentID)
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Delete removes a document.
func (s *Store) Delete(ctx context.Context, databaseID, collectionID, documentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := documentKey(databaseID, collectionID, documentID)
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			return err
		}
		return txn.Delete(key)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return errors.NotFoundf("document %s not found", documentID)
	}
	return err
}

// List returns documents matching the query clauses. Total counts every
// match; the returned slice honors ordering and the limit clause.
func (s *Store) List(ctx context.Context, databaseID, collectionID string, queries []Query) (int, []Document, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}

	var docs []Document
	prefix := collectionPrefix(databaseID, collectionID)
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{
			Prefix:         prefix,
			PrefetchValues: true,
			PrefetchSize:   100,
		})
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var doc Document
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &doc)
			}); err != nil {
				return err
			}
			docs = append(docs, maps.Clone(doc))
		}
		return nil
	})
	if err != nil {
		return 0, nil, err
	}

	filtered := applyFilters(docs, queries)
	applyOrder(filtered, queries)
	total := len(filtered)

	limit := defaultListLimit
	for _, q := range queries {
		if q.Method == methodLimit {
			limit = q.Limit
		}
	}
	if limit < len(filtered) {
		filtered = filtered[:limit]
	}
	return total, filtered, nil
}
