package entity

import "math"

// CartLine is one row of an identity's cart. Name, Price and Image are a snapshot
// of the product taken when the line was created and do not follow later product edits.
type CartLine struct {
	ID        string  `firestore:"id" json:"id"`               // Cart document ID; kept inside order snapshots.
	ProductID string  `firestore:"productId" json:"productId"` // Reference to the product, not ownership.
	Name      string  `firestore:"name" json:"name"`
	Price     float64 `firestore:"price" json:"price"`
	Image     string  `firestore:"image" json:"image"`
	Quantity  int64   `firestore:"quantity" json:"quantity"` // Always >= 1; a line reaching 0 is deleted.
}

// Subtotal returns price times quantity.
func (l CartLine) Subtotal() float64 {
	return l.Price * float64(l.Quantity)
}

// NewCartLine snapshots product into a fresh line with quantity 1.
func NewCartLine(product Product) CartLine {
	return CartLine{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Image:     product.Image,
		Quantity:  1,
	}
}

// Cart is the full set of lines of one identity, as last observed.
type Cart []CartLine

// FindByProduct returns the line holding productID, if any.
func (c Cart) FindByProduct(productID string) (CartLine, bool) {
	for _, line := range c {
		if line.ProductID == productID {
			return line, true
		}
	}

	return CartLine{}, false
}

// FindByID returns the line with the given document ID, if any.
func (c Cart) FindByID(lineID string) (CartLine, bool) {
	for _, line := range c {
		if line.ID == lineID {
			return line, true
		}
	}

	return CartLine{}, false
}

// Total sums every line's subtotal, rounded to cents.
func (c Cart) Total() float64 {
	var total float64
	for _, line := range c {
		total += line.Subtotal()
	}

	return RoundCents(total)
}

// Count returns the number of items across all lines.
func (c Cart) Count() int64 {
	var count int64
	for _, line := range c {
		count += line.Quantity
	}

	return count
}

// RoundCents rounds an amount to two decimal places.
func RoundCents(amount float64) float64 {
	return math.Round(amount*100) / 100
}
