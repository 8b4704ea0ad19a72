package dto

import (
	"github.com/shopspring/decimal"

	"salescore/internal/core/id"
	"salescore/internal/core/types"
	"salescore/internal/domain/catalogs/product"
)

// --- Request DTOs ---

type CreateProductRequest struct {
	Code        string          `json:"code"`
	Name        string          `json:"name" binding:"required"`
	Type        string          `json:"type" binding:"required"`
	SKU         *string         `json:"sku,omitempty"`
	Barcode     *string         `json:"barcode,omitempty"`
	UnitPrice   types.Money     `json:"unitPrice"`
	TaxRate     decimal.Decimal `json:"taxRate"`
	Unit        string          `json:"unit,omitempty"`
	Description *string         `json:"description,omitempty"`
}

func (r *CreateProductRequest) ToEntity(companyID id.ID) *product.Product {
	p := product.NewProduct(companyID, r.Code, r.Name, product.ProductType(r.Type))
	p.SKU = r.SKU
	p.Barcode = r.Barcode
	p.UnitPrice = r.UnitPrice
	p.TaxRate = r.TaxRate
	if r.Unit != "" {
		p.Unit = r.Unit
	}
	p.Description = r.Description
	return p
}

type UpdateProductRequest struct {
	Code        *string          `json:"code,omitempty"`
	Name        *string          `json:"name,omitempty"`
	Type        *string          `json:"type,omitempty"`
	SKU         *string          `json:"sku,omitempty"`
	Barcode     *string          `json:"barcode,omitempty"`
	UnitPrice   *types.Money     `json:"unitPrice,omitempty"`
	TaxRate     *decimal.Decimal `json:"taxRate,omitempty"`
	Unit        *string          `json:"unit,omitempty"`
	Description *string          `json:"description,omitempty"`
	IsActive    *bool            `json:"isActive,omitempty"`
}

func (r *UpdateProductRequest) ApplyTo(p *product.Product) {
	if r.Code != nil {
		p.Code = *r.Code
	}
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Type != nil {
		p.Type = product.ProductType(*r.Type)
	}
	if r.SKU != nil {
		p.SKU = r.SKU
	}
	if r.Barcode != nil {
		p.Barcode = r.Barcode
	}
	if r.UnitPrice != nil {
		p.UnitPrice = *r.UnitPrice
	}
	if r.TaxRate != nil {
		p.TaxRate = *r.TaxRate
	}
	if r.Unit != nil {
		p.Unit = *r.Unit
	}
	if r.Description != nil {
		p.Description = r.Description
	}
	if r.IsActive != nil {
		p.IsActive = *r.IsActive
	}
}

// --- Response DTOs ---

type ProductResponse struct {
	CatalogResponse
	Type        string          `json:"type"`
	SKU         *string         `json:"sku,omitempty"`
	Barcode     *string         `json:"barcode,omitempty"`
	UnitPrice   types.Money     `json:"unitPrice"`
	TaxRate     decimal.Decimal `json:"taxRate"`
	Unit        string          `json:"unit"`
	Description *string         `json:"description,omitempty"`
	IsActive    bool            `json:"isActive"`
}

func FromProduct(p *product.Product) *ProductResponse {
	return &ProductResponse{
		CatalogResponse: FromCatalog(p.Catalog),
		Type:            string(p.Type),
		SKU:             p.SKU,
		Barcode:         p.Barcode,
		UnitPrice:       p.UnitPrice,
		TaxRate:         p.TaxRate,
		Unit:            p.Unit,
		Description:     p.Description,
		IsActive:        p.IsActive,
	}
}

func FromProductList(items []*product.Product) []*ProductResponse {
	out := make([]*ProductResponse, len(items))
	for i, p := range items {
		out[i] = FromProduct(p)
	}
	return out
}
