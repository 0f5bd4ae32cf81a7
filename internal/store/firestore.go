package store

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/yogaflow/studio-booking/internal/domain"
	"github.com/yogaflow/studio-booking/pkg/retry"
)

// FirestoreConfig holds connection settings for the Firestore backend
type FirestoreConfig struct {
	ProjectID       string
	CredentialsFile string
	MaxRetries      int
	RetryInterval   time.Duration
}

// Firestore implements Store on top of Cloud Firestore
type Firestore struct {
	app    *firebase.App
	client *firestore.Client
}

// NewFirestore initializes the Firebase app and Firestore client, retrying
// transient startup failures.
func NewFirestore(ctx context.Context, cfg *FirestoreConfig) (*Firestore, error) {
	if cfg == nil {
		return nil, fmt.Errorf("firestore config is required")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	retryCfg := &retry.Config{
		MaxRetries:      cfg.MaxRetries,
		InitialInterval: cfg.RetryInterval,
	}

	var client *firestore.Client
	result := retry.Do(ctx, retryCfg, func(ctx context.Context) error {
		var cerr error
		client, cerr = app.Firestore(ctx)
		return cerr
	})
	if result.Err != nil {
		return nil, fmt.Errorf("failed to create firestore client after %d attempts: %w", result.Attempts, result.LastError)
	}

	return &Firestore{app: app, client: client}, nil
}

// AuthClient returns the Firebase Auth client for ID token verification
func (f *Firestore) AuthClient(ctx context.Context) (*auth.Client, error) {
	return f.app.Auth(ctx)
}

// GetDocument fetches one document by id
func (f *Firestore) GetDocument(ctx context.Context, collection, docID string) (*Document, error) {
	snap, err := f.client.Collection(collection).Doc(docID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrDocumentNotFound
		}
		return nil, domain.NewStoreError(CodeGetDocument, err)
	}
	return &Document{ID: snap.Ref.ID, Data: snap.Data()}, nil
}

// QueryDocuments fetches documents matching the query
func (f *Firestore) QueryDocuments(ctx context.Context, collection string, q Query) ([]*Document, error) {
	fq := f.client.Collection(collection).Query
	for _, w := range q.Where {
		fq = fq.Where(w.Field, w.Op, w.Value)
	}
	for _, o := range q.OrderBy {
		dir := firestore.Asc
		if o.Desc {
			dir = firestore.Desc
		}
		fq = fq.OrderBy(o.Field, dir)
	}
	if q.Limit > 0 {
		fq = fq.Limit(q.Limit)
	}

	var docs []*Document
	it := fq.Documents(ctx)
	defer it.Stop()
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, domain.NewStoreError(CodeQueryDocument, err)
		}
		docs = append(docs, &Document{ID: snap.Ref.ID, Data: snap.Data()})
	}
	return docs, nil
}

// NewDocID allocates a fresh document id without writing anything
func (f *Firestore) NewDocID(collection string) string {
	return f.client.Collection(collection).NewDoc().ID
}

// BatchWrite applies all operations atomically. Adds stamp createdAt and
// updatedAt with the server timestamp; updates stamp updatedAt.
func (f *Firestore) BatchWrite(ctx context.Context, ops []Op) error {
	batch := f.client.Batch()
	for _, op := range ops {
		ref := f.client.Collection(op.Collection).Doc(op.DocID)
		switch op.Kind {
		case OpAdd:
			data := copyData(op.Data)
			data["createdAt"] = firestore.ServerTimestamp
			data["updatedAt"] = firestore.ServerTimestamp
			batch.Set(ref, data)
		case OpUpdate:
			updates := make([]firestore.Update, 0, len(op.Data)+1)
			for k, v := range op.Data {
				updates = append(updates, firestore.Update{Path: k, Value: v})
			}
			updates = append(updates, firestore.Update{Path: "updatedAt", Value: firestore.ServerTimestamp})
			batch.Update(ref, updates)
		case OpDelete:
			batch.Delete(ref)
		default:
			return domain.NewStoreError(CodeBatchWrite, fmt.Errorf("unknown op kind %q", op.Kind))
		}
	}
	if _, err := batch.Commit(ctx); err != nil {
		return domain.NewStoreError(CodeBatchWrite, err)
	}
	return nil
}

// Close releases the Firestore client
func (f *Firestore) Close() error {
	return f.client.Close()
}

func copyData(data map[string]any) map[string]any {
	out := make(map[string]any, len(data)+2)
	for k, v := range data {
		out[k] = v
	}
	return out
}
