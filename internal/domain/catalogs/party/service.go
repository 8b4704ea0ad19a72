package party

import (
	"context"
	"fmt"
	"time"

	"salescore/internal/core/apperror"
	"salescore/internal/core/id"
	"salescore/internal/core/numerator"
	"salescore/internal/core/scope"
	"salescore/internal/core/tx"
	"salescore/internal/domain"
)

// Service provides business logic for the Party catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Party]
	repo      Repository
	numerator numerator.Generator
}

// NewService creates a new Party service.
func NewService(repo Repository, txManager tx.Manager, gen numerator.Generator) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Party]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "party",
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

// prepareForCreate handles code generation and uniqueness checks before create.
func (s *Service) prepareForCreate(ctx context.Context, sc scope.Scope, p *Party) error {
	if p.CompanyID != sc.CompanyID {
		p.CompanyID = sc.CompanyID
	}

	if p.Code == "" {
		cfg := numerator.DefaultConfig("PTY")
		cfg.IncludeYear = false
		cfg.ResetPeriod = "never"
		code, err := s.numerator.GetNextNumber(ctx, sc.CompanyID, cfg, nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		p.Code = code
	}

	return s.checkTaxNumberUnique(ctx, sc, p)
}

// prepareForUpdate handles uniqueness checks before update.
func (s *Service) prepareForUpdate(ctx context.Context, sc scope.Scope, p *Party) error {
	return s.checkTaxNumberUnique(ctx, sc, p)
}

// FindByTaxNumber retrieves a party by tax number.
func (s *Service) FindByTaxNumber(ctx context.Context, sc scope.Scope, taxNumber string) (*Party, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return s.repo.FindByTaxNumber(ctx, sc, taxNumber)
}

// checkTaxNumberUnique checks that the tax number is not used by another party.
func (s *Service) checkTaxNumberUnique(ctx context.Context, sc scope.Scope, p *Party) error {
	if p.TaxNumber == nil || *p.TaxNumber == "" {
		return nil
	}
	existing, err := s.repo.FindByTaxNumber(ctx, sc, *p.TaxNumber)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != p.ID {
		return apperror.NewConflict("party with this tax number already exists").
			WithDetail("taxNumber", *p.TaxNumber)
	}
	return nil
}

// EnsureCustomer loads a party and verifies it can act as the customer
// of a sales document.
func (s *Service) EnsureCustomer(ctx context.Context, sc scope.Scope, partyID id.ID) (*Party, error) {
	p, err := s.GetByID(ctx, sc, partyID)
	if err != nil {
		return nil, err
	}
	if !p.CanTransact() {
		return nil, apperror.NewValidation("party cannot be used on documents").
			WithDetail("partyId", partyID.String()).
			WithDetail("status", string(p.Status))
	}
	if p.Kind == KindVendor {
		return nil, apperror.NewValidation("vendor cannot be a customer").
			WithDetail("partyId", partyID.String())
	}
	return p, nil
}
