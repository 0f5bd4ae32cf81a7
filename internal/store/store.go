package store

import (
	"context"
	"errors"
)

// Collection names for the three logical collections.
const (
	CollectionBookings  = "bookings"
	CollectionInstances = "instances"
	CollectionCourses   = "courses"
)

// Adapter error codes carried inside domain.StoreError.
const (
	CodeGetDocument   = "GET_DOCUMENT_ERROR"
	CodeQueryDocument = "GET_DOCUMENTS_ERROR"
	CodeBatchWrite    = "BATCH_WRITE_ERROR"
)

// ErrDocumentNotFound is returned by GetDocument when the document does not
// exist. Repositories translate it into the matching domain error.
var ErrDocumentNotFound = errors.New("document not found")

// OpKind is the kind of a batch write operation
type OpKind string

const (
	OpAdd    OpKind = "add"
	OpUpdate OpKind = "update"
	OpDelete OpKind = "delete"
)

// Op is a single operation inside an atomic batch write. For OpAdd the
// DocID must be pre-allocated with NewDocID so callers can re-read the
// document after the batch commits.
type Op struct {
	Kind       OpKind
	Collection string
	DocID      string
	Data       map[string]any
}

// Where is a single field filter. Supported operators: ==, in, <, <=, >, >=.
type Where struct {
	Field string
	Op    string
	Value any
}

// Order is a single sort directive
type Order struct {
	Field string
	Desc  bool
}

// Query describes a filtered, ordered, limited collection read
type Query struct {
	Where   []Where
	OrderBy []Order
	Limit   int
}

// Document is a raw document as the store returns it. CreatedAt/UpdatedAt
// are server-assigned and surface inside Data.
type Document struct {
	ID   string
	Data map[string]any
}

// Store is the document store adapter boundary. It offers document CRUD,
// simple filtered queries, and an atomic batch-write primitive. It offers
// no cross-document transactions, uniqueness, or capacity constraints;
// those invariants belong to the caller.
type Store interface {
	// GetDocument fetches one document by id, or ErrDocumentNotFound.
	GetDocument(ctx context.Context, collection, docID string) (*Document, error)

	// QueryDocuments fetches documents matching the query.
	QueryDocuments(ctx context.Context, collection string, q Query) ([]*Document, error)

	// NewDocID allocates a fresh document id for the collection without
	// writing anything.
	NewDocID(collection string) string

	// BatchWrite applies all operations atomically: either every op takes
	// effect or none does.
	BatchWrite(ctx context.Context, ops []Op) error

	// Close releases the underlying client.
	Close() error
}
