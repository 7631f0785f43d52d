package domain

// Product is a catalogue entry as stored by the product data owner.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       Amount
}

// Summary returns the part of the product shown on order lines.
func (p Product) Summary() *ProductSummary {
	return &ProductSummary{ProductID: p.ID, Name: p.Name, Description: p.Description}
}
