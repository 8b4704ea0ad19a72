package product

import (
	"context"
	"fmt"
	"time"

	"salescore/internal/core/apperror"
	"salescore/internal/core/numerator"
	"salescore/internal/core/scope"
	"salescore/internal/core/tx"
	"salescore/internal/domain"
)

// Service provides business logic for the Product catalog.
type Service struct {
	*domain.CatalogService[*Product]
	repo      Repository
	numerator numerator.Generator
}

// NewService creates a new Product service.
func NewService(repo Repository, txManager tx.Manager, gen numerator.Generator) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Product]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "product",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		numerator:      gen,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)
	base.Hooks().OnBeforeUpdate(svc.prepareForUpdate)

	return svc
}

func (s *Service) prepareForCreate(ctx context.Context, sc scope.Scope, p *Product) error {
	if p.CompanyID != sc.CompanyID {
		p.CompanyID = sc.CompanyID
	}

	if p.Code == "" {
		cfg := numerator.DefaultConfig("PRD")
		cfg.IncludeYear = false
		cfg.ResetPeriod = "never"
		code, err := s.numerator.GetNextNumber(ctx, sc.CompanyID, cfg, nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		p.Code = code
	}

	return s.checkSKUUnique(ctx, sc, p)
}

func (s *Service) prepareForUpdate(ctx context.Context, sc scope.Scope, p *Product) error {
	return s.checkSKUUnique(ctx, sc, p)
}

// FindBySKU retrieves a product by SKU.
func (s *Service) FindBySKU(ctx context.Context, sc scope.Scope, sku string) (*Product, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return s.repo.FindBySKU(ctx, sc, sku)
}

func (s *Service) checkSKUUnique(ctx context.Context, sc scope.Scope, p *Product) error {
	if p.SKU == nil || *p.SKU == "" {
		return nil
	}
	existing, err := s.repo.FindBySKU(ctx, sc, *p.SKU)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != p.ID {
		return apperror.NewConflict("product with this SKU already exists").
			WithDetail("sku", *p.SKU)
	}
	return nil
}
