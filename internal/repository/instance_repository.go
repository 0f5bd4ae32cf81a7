package repository

import (
	"context"

	"github.com/yogaflow/studio-booking/internal/domain"
	"github.com/yogaflow/studio-booking/internal/store"
)

// Firestore rejects "in" filters with more than 30 values, so id lookups
// are chunked.
const inQueryChunk = 30

// InstanceRepository reads class instances from the document store.
// Instances carry a numeric catalog id distinct from their document id;
// lookups go through the id field.
type InstanceRepository interface {
	GetByID(ctx context.Context, instanceID int64) (*domain.ClassInstance, error)
	GetByIDs(ctx context.Context, instanceIDs []int64) ([]*domain.ClassInstance, error)
	List(ctx context.Context) ([]*domain.ClassInstance, error)
}

type storeInstanceRepository struct {
	store store.Store
}

// NewInstanceRepository creates an instance repository backed by the store
func NewInstanceRepository(s store.Store) InstanceRepository {
	return &storeInstanceRepository{store: s}
}

func (r *storeInstanceRepository) GetByID(ctx context.Context, instanceID int64) (*domain.ClassInstance, error) {
	docs, err := r.store.QueryDocuments(ctx, store.CollectionInstances, store.Query{
		Where: []store.Where{{Field: fieldID, Op: "==", Value: instanceID}},
		Limit: 1,
	})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, domain.ErrInstanceNotFound
	}
	return decodeInstance(docs[0]), nil
}

func (r *storeInstanceRepository) GetByIDs(ctx context.Context, instanceIDs []int64) ([]*domain.ClassInstance, error) {
	var instances []*domain.ClassInstance
	for _, chunk := range chunkInt64(instanceIDs, inQueryChunk) {
		docs, err := r.store.QueryDocuments(ctx, store.CollectionInstances, store.Query{
			Where: []store.Where{{Field: fieldID, Op: "in", Value: chunk}},
		})
		if err != nil {
			return nil, err
		}
		for _, doc := range docs {
			instances = append(instances, decodeInstance(doc))
		}
	}
	return instances, nil
}

func (r *storeInstanceRepository) List(ctx context.Context) ([]*domain.ClassInstance, error) {
	docs, err := r.store.QueryDocuments(ctx, store.CollectionInstances, store.Query{})
	if err != nil {
		return nil, err
	}
	instances := make([]*domain.ClassInstance, 0, len(docs))
	for _, doc := range docs {
		instances = append(instances, decodeInstance(doc))
	}
	return instances, nil
}

// InstanceBookingsOp builds the batch op that sets the instance's
// denormalized booking counter.
func InstanceBookingsOp(instanceDocID string, count int64) store.Op {
	return store.Op{
		Kind:       store.OpUpdate,
		Collection: store.CollectionInstances,
		DocID:      instanceDocID,
		Data:       map[string]any{fieldCurrentBookings: count},
	}
}

func chunkInt64(ids []int64, size int) [][]int64 {
	var chunks [][]int64
	for len(ids) > size {
		chunks = append(chunks, ids[:size])
		ids = ids[size:]
	}
	if len(ids) > 0 {
		chunks = append(chunks, ids)
	}
	return chunks
}
