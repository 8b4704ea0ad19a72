package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"salescore/internal/core/apperror"
	"salescore/internal/core/scope"
	"salescore/internal/domain/catalogs/party"
	"salescore/internal/infrastructure/storage/postgres"
)

const partyTable = "cat_parties"

// PartyRepo implements party.Repository.
type PartyRepo struct {
	*BaseCatalogRepo[*party.Party]
}

var _ party.Repository = (*PartyRepo)(nil)

// NewPartyRepo creates a new party repository.
func NewPartyRepo(txManager *postgres.TxManager) *PartyRepo {
	return &PartyRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			partyTable,
			postgres.ExtractDBColumns[party.Party](),
			func() *party.Party { return &party.Party{} },
		),
	}
}

// FindByTaxNumber retrieves a party by tax number.
func (r *PartyRepo) FindByTaxNumber(ctx context.Context, sc scope.Scope, taxNumber string) (*party.Party, error) {
	q := r.baseSelect(sc).
		Where(squirrel.Eq{"tax_number": taxNumber}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	p, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("party", taxNumber)
		}
		return nil, err
	}
	return p, nil
}
