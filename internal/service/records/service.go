// Package records serves the read-only dashboard collections (beds,
// documents, tasks, vitals, staff leave, volunteers) through the shared
// filter layer.
package records

import (
	"context"

	"github.com/jwalitptl/hospital-ops/internal/filter"
	"github.com/jwalitptl/hospital-ops/internal/repository"
	apperrors "github.com/jwalitptl/hospital-ops/pkg/errors"
)

// RecordPtr constrains PT to *T implementing filter.Record.
type RecordPtr[T any] interface {
	*T
	filter.Record
}

type Lister[T any, PT RecordPtr[T]] struct {
	repo repository.ListRepository[T]
}

func NewLister[T any, PT RecordPtr[T]](repo repository.ListRepository[T]) *Lister[T, PT] {
	return &Lister[T, PT]{repo: repo}
}

func (l *Lister[T, PT]) List(ctx context.Context, c filter.Criteria) ([]PT, error) {
	items, err := l.repo.List(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	recs := make([]PT, len(items))
	for i := range items {
		recs[i] = PT(items[i])
	}
	return filter.Apply(recs, c), nil
}
