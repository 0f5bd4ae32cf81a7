package repository

import (
	"context"

	"github.com/yogaflow/studio-booking/internal/domain"
	"github.com/yogaflow/studio-booking/internal/store"
)

// CourseRepository reads courses from the document store
type CourseRepository interface {
	GetByID(ctx context.Context, courseID int64) (*domain.Course, error)
	GetByIDs(ctx context.Context, courseIDs []int64) ([]*domain.Course, error)
}

type storeCourseRepository struct {
	store store.Store
}

// NewCourseRepository creates a course repository backed by the store
func NewCourseRepository(s store.Store) CourseRepository {
	return &storeCourseRepository{store: s}
}

func (r *storeCourseRepository) GetByID(ctx context.Context, courseID int64) (*domain.Course, error) {
	docs, err := r.store.QueryDocuments(ctx, store.CollectionCourses, store.Query{
		Where: []store.Where{{Field: fieldID, Op: "==", Value: courseID}},
		Limit: 1,
	})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, domain.ErrCourseNotFound
	}
	return decodeCourse(docs[0]), nil
}

func (r *storeCourseRepository) GetByIDs(ctx context.Context, courseIDs []int64) ([]*domain.Course, error) {
	var courses []*domain.Course
	for _, chunk := range chunkInt64(courseIDs, inQueryChunk) {
		docs, err := r.store.QueryDocuments(ctx, store.CollectionCourses, store.Query{
			Where: []store.Where{{Field: fieldID, Op: "in", Value: chunk}},
		})
		if err != nil {
			return nil, err
		}
		for _, doc := range docs {
			courses = append(courses, decodeCourse(doc))
		}
	}
	return courses, nil
}
