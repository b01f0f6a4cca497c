package domain

// Product represents the catalog entity. ID is assigned by the repository on
// first save and stays stable afterwards.
type Product struct {
	ID          string
	Name        string
	Code        string
	Description string
	Price       float64
}

// NewProduct creates an unsaved product. No field is validated: empty names,
// duplicate codes and negative prices are all accepted.
func NewProduct(name, code, description string, price float64) *Product {
	return &Product{
		Name:        name,
		Code:        code,
		Description: description,
		Price:       price,
	}
}

// Equal reports whether both products refer to the same stored record.
// A product without an ID equals nothing, itself included.
func (p *Product) Equal(other *Product) bool {
	if p == nil || other == nil {
		return false
	}
	if p.ID == "" || other.ID == "" {
		return false
	}
	return p.ID == other.ID
}

// Overwrite replaces every mutable field with the values from src, zero values included.
func (p *Product) Overwrite(src *Product) {
	p.Name = src.Name
	p.Code = src.Code
	p.Description = src.Description
	p.Price = src.Price
}

// Clone returns a detached copy.
func (p *Product) Clone() *Product {
	c := *p
	return &c
}
