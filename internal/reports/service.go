package reports

import (
	"context"
	"fmt"
	"time"

	pkgerrors "github.com/angelmondragon/oms-backend/pkg/errors"
)

const (
	DefaultTopProductsLimit = 10
	MaxTopProductsLimit     = 100
)

type topProductsReader interface {
	TopSellingProducts(ctx context.Context, start, end time.Time, limit int) ([]TopProduct, error)
}

// Service exposes sales reports.
type Service interface {
	// TopSellingProducts ranks products by units sold; limit 0 selects the default.
	TopSellingProducts(ctx context.Context, start, end time.Time, limit int) ([]TopProduct, error)
}

type service struct {
	repo topProductsReader
}

// NewService builds the reports service.
func NewService(repo topProductsReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reports repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) TopSellingProducts(ctx context.Context, start, end time.Time, limit int) ([]TopProduct, error) {
	if start.After(end) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "start must not be after end")
	}
	if limit == 0 {
		limit = DefaultTopProductsLimit
	}
	if limit < 1 || limit > MaxTopProductsLimit {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("limit must be between 1 and %d", MaxTopProductsLimit)).
			WithDetails(map[string]int{"limit": limit})
	}

	rows, err := s.repo.TopSellingProducts(ctx, start.UTC(), end.UTC(), limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load top products")
	}
	return rows, nil
}
