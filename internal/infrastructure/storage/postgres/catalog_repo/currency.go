package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"salescore/internal/core/apperror"
	"salescore/internal/core/scope"
	"salescore/internal/domain/catalogs/currency"
	"salescore/internal/infrastructure/storage/postgres"
)

const currencyTable = "cat_currencies"

// CurrencyRepo implements currency.Repository.
type CurrencyRepo struct {
	*BaseCatalogRepo[*currency.Currency]
}

var _ currency.Repository = (*CurrencyRepo)(nil)

// NewCurrencyRepo creates a new currency repository.
func NewCurrencyRepo(txManager *postgres.TxManager) *CurrencyRepo {
	return &CurrencyRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			currencyTable,
			postgres.ExtractDBColumns[currency.Currency](),
			func() *currency.Currency { return &currency.Currency{} },
		),
	}
}

// FindByISOCode retrieves a currency by ISO 4217 code.
func (r *CurrencyRepo) FindByISOCode(ctx context.Context, sc scope.Scope, isoCode string) (*currency.Currency, error) {
	q := r.baseSelect(sc).
		Where(squirrel.Eq{"iso_code": isoCode}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	c, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("currency", isoCode)
		}
		return nil, err
	}
	return c, nil
}

// GetBase retrieves the company's base currency.
func (r *CurrencyRepo) GetBase(ctx context.Context, sc scope.Scope) (*currency.Currency, error) {
	q := r.baseSelect(sc).
		Where(squirrel.Eq{"is_base": true}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	c, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("currency", "base")
		}
		return nil, err
	}
	return c, nil
}
