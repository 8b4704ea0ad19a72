package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"salescore/internal/domain/catalogs/product"
	"salescore/internal/domain/documents/invoice"
)

func TestExtractDBColumns_Product(t *testing.T) {
	cols := ExtractDBColumns[product.Product]()

	// Embedded entity.Catalog chain
	assert.Contains(t, cols, "id")
	assert.Contains(t, cols, "version")
	assert.Contains(t, cols, "deletion_mark")
	assert.Contains(t, cols, "company_id")
	assert.Contains(t, cols, "code")
	assert.Contains(t, cols, "name")

	// Product's own fields
	assert.Contains(t, cols, "sku")
	assert.Contains(t, cols, "unit_price")
	assert.Contains(t, cols, "tax_rate")
}

func TestExtractDBColumns_InvoiceSkipsLines(t *testing.T) {
	cols := ExtractDBColumns[invoice.SalesInvoice]()

	assert.Contains(t, cols, "status")
	assert.Contains(t, cols, "due_date")
	assert.Contains(t, cols, "balance_due")
	assert.Contains(t, cols, "currency_id")

	// Lines carry db:"-" and live in their own table
	assert.NotContains(t, cols, "-")
}

func TestStructToMap(t *testing.T) {
	p := &product.Product{}
	p.Code = "PRD-00001"
	p.Name = "Widget"

	m := StructToMap(p)
	assert.Equal(t, "PRD-00001", m["code"])
	assert.Equal(t, "Widget", m["name"])
	assert.NotContains(t, m, "-")
}
