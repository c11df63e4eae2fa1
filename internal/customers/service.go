package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	dbpkg "github.com/angelmondragon/oms-backend/pkg/db"
	"github.com/angelmondragon/oms-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/oms-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes customer CRUD.
type Service interface {
	Create(ctx context.Context, input CreateCustomerInput) (*models.Customer, error)
	Get(ctx context.Context, id int64) (*models.Customer, error)
	Update(ctx context.Context, id int64, input UpdateCustomerInput) (*models.Customer, error)
	Delete(ctx context.Context, id int64) error
}

type service struct {
	repo *Repository
	tx   txRunner
}

// NewService builds the customer service.
func NewService(repo *Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customers repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) Create(ctx context.Context, input CreateCustomerInput) (*models.Customer, error) {
	customer := &models.Customer{
		Email:     normalizeEmail(input.Email),
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Phone:     trimOptional(input.Phone),
	}
	if customer.Email == "" || customer.FirstName == "" || customer.LastName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email, first_name and last_name are required")
	}

	if err := s.repo.Create(ctx, customer); err != nil {
		if dbpkg.IsUniqueViolation(err, "") {
			return nil, emailTakenError(err)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create customer")
	}
	return customer, nil
}

func (s *service) Get(ctx context.Context, id int64) (*models.Customer, error) {
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError(id)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}
	return customer, nil
}

func (s *service) Update(ctx context.Context, id int64, input UpdateCustomerInput) (*models.Customer, error) {
	fields := map[string]any{}
	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		if email == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "email cannot be blank")
		}
		fields["email"] = email
	}
	if input.FirstName != nil {
		fields["first_name"] = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		fields["last_name"] = strings.TrimSpace(*input.LastName)
	}
	if input.Phone != nil {
		fields["phone"] = trimOptional(input.Phone)
	}

	var updated *models.Customer
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindByID(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFoundError(id)
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
		}
		if err := repo.Update(ctx, id, fields); err != nil {
			if dbpkg.IsUniqueViolation(err, "") {
				return emailTakenError(err)
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update customer")
		}
		customer, err := repo.FindByID(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload customer")
		}
		updated = customer
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		hasOrders, err := repo.HasOrders(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check customer orders")
		}
		if hasOrders {
			return hasOrdersError(id)
		}
		deleted, err := repo.Delete(ctx, id)
		if err != nil {
			if dbpkg.IsForeignKeyViolation(err) {
				return hasOrdersError(id)
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete customer")
		}
		if !deleted {
			return NotFoundError(id)
		}
		return nil
	})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
