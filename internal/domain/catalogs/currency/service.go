package currency

import (
	"context"

	"salescore/internal/core/apperror"
	"salescore/internal/core/scope"
	"salescore/internal/core/tx"
	"salescore/internal/domain"
)

// Service provides business logic for the Currency catalog.
type Service struct {
	*domain.CatalogService[*Currency]
	repo Repository
}

// NewService creates a new Currency service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Currency]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "currency",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)

	return svc
}

func (s *Service) prepareForCreate(ctx context.Context, sc scope.Scope, c *Currency) error {
	if c.CompanyID != sc.CompanyID {
		c.CompanyID = sc.CompanyID
	}
	if c.Code == "" {
		c.Code = c.ISOCode
	}

	existing, err := s.repo.FindByISOCode(ctx, sc, c.ISOCode)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != c.ID {
		return apperror.NewConflict("currency already exists").
			WithDetail("isoCode", c.ISOCode)
	}
	return nil
}

// FindByISOCode retrieves a currency by ISO code.
func (s *Service) FindByISOCode(ctx context.Context, sc scope.Scope, isoCode string) (*Currency, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return s.repo.FindByISOCode(ctx, sc, isoCode)
}

// GetBase retrieves the company's base currency.
func (s *Service) GetBase(ctx context.Context, sc scope.Scope) (*Currency, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return s.repo.GetBase(ctx, sc)
}
