// Package store persists payload documents for the API server.
//
// A stored document pairs a host-assigned name with the raw connection
// payload JSON. The server renders frames on demand from stored payloads,
// so hosts can upload once and request multiple formats later.
//
// Two implementations are provided: MemoryStore for tests and single-node
// setups, and MongoStore backed by MongoDB for deployments where documents
// must survive restarts.
package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/constelviz/constel/pkg/errors"
)

// Document is a stored connection payload.
type Document struct {
	ID        string          `json:"id" bson:"_id"`
	Name      string          `json:"name" bson:"name"`
	Payload   json.RawMessage `json:"payload" bson:"payload"`
	CreatedAt time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" bson:"updated_at"`
}

// Store persists documents. Implementations must be safe for concurrent use.
type Store interface {
	// Put stores a document. If doc.ID is empty a new ID is assigned.
	// The stored document (with ID and timestamps set) is returned.
	Put(ctx context.Context, doc Document) (Document, error)

	// Get retrieves a document by ID.
	// Returns an error with code ErrCodeDocumentNotFound if absent.
	Get(ctx context.Context, id string) (Document, error)

	// List returns all documents ordered by creation time, newest first.
	List(ctx context.Context) ([]Document, error)

	// Delete removes a document by ID.
	// Returns an error with code ErrCodeDocumentNotFound if absent.
	Delete(ctx context.Context, id string) error

	// Close releases any resources held by the store.
	Close(ctx context.Context) error
}

// =============================================================================
// MemoryStore
// =============================================================================

// MemoryStore is an in-memory Store for tests and single-node use.
// The zero value is not usable; use NewMemoryStore.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]Document
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]Document)}
}

// Put implements Store.
func (s *MemoryStore) Put(_ context.Context, doc Document) (Document, error) {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	} else if err := errors.ValidateDocumentID(doc.ID); err != nil {
		return Document{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if existing, ok := s.docs[doc.ID]; ok {
		doc.CreatedAt = existing.CreatedAt
	} else {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now
	s.docs[doc.ID] = doc
	return doc, nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, id string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[id]
	if !ok {
		return Document{}, errors.New(errors.ErrCodeDocumentNotFound, "document %q not found", id)
	}
	return doc, nil
}

// List implements Store.
func (s *MemoryStore) List(_ context.Context) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]Document, 0, len(s.docs))
	for _, d := range s.docs {
		docs = append(docs, d)
	}
	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].CreatedAt.After(docs[j].CreatedAt)
		}
		return docs[i].ID < docs[j].ID
	})
	return docs, nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[id]; !ok {
		return errors.New(errors.ErrCodeDocumentNotFound, "document %q not found", id)
	}
	delete(s.docs, id)
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close(context.Context) error { return nil }

var _ Store = (*MemoryStore)(nil)
