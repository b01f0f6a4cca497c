package dto

import (
	"github.com/mrops-br/product-catalog-api/internal/domain"
)

// ProductRequest is the body of create and full-update requests.
// A client-supplied id is not part of the request and is dropped on decode.
type ProductRequest struct {
	Name        string  `json:"name"`
	Code        string  `json:"code"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// PatchProductRequest carries only the fields the client actually sent.
type PatchProductRequest struct {
	Name        *string  `json:"name,omitempty"`
	Code        *string  `json:"code,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
}

// ProductResponse represents the product response
type ProductResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Code        string  `json:"code"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// ToDomain converts the request into an unsaved domain Product
func (r *ProductRequest) ToDomain() *domain.Product {
	return domain.NewProduct(r.Name, r.Code, r.Description, r.Price)
}

// Apply copies the present fields onto p and leaves the rest untouched.
func (r *PatchProductRequest) Apply(p *domain.Product) {
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Code != nil {
		p.Code = *r.Code
	}
	if r.Description != nil {
		p.Description = *r.Description
	}
	if r.Price != nil {
		p.Price = *r.Price
	}
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *domain.Product) *ProductResponse {
	return &ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Code:        p.Code,
		Description: p.Description,
		Price:       p.Price,
	}
}

// ToProductResponseList converts a list of domain Products to ProductResponse list
func ToProductResponseList(products []*domain.Product) []*ProductResponse {
	responses := make([]*ProductResponse, len(products))
	for i, p := range products {
		responses[i] = ToProductResponse(p)
	}
	return responses
}
