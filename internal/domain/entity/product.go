package entity

import "time"

// CategoryAll is the pseudo-category that matches every product.
const CategoryAll = "All"

// DefaultProductImage is used when a listed product comes without an image.
const DefaultProductImage = "https://images.unsplash.com/photo-1553062407-98eeb64c6a62?auto=format&fit=crop&w=1000&q=80"

// Product is a public catalog entry shared by every identity.
type Product struct {
	ID          string    `firestore:"-" json:"id"`                                                // Store-assigned document ID.
	Name        string    `firestore:"name" json:"name" yaml:"name" validate:"required"`            // Display name, used for search.
	Price       float64   `firestore:"price" json:"price" yaml:"price" validate:"gt=0"`             // Unit price in USD.
	Category    string    `firestore:"category" json:"category" yaml:"category" validate:"required"` // Free-form category label.
	Image       string    `firestore:"image" json:"image" yaml:"image" validate:"omitempty,url"`    // Image URI.
	Description string    `firestore:"description" json:"description" yaml:"description"`          // Marketing copy.
	Rating      float64   `firestore:"rating" json:"rating" yaml:"rating" validate:"gte=0,lte=5"`   // Average rating, 0 to 5.
	CreatedAt   time.Time `firestore:"createdAt" json:"createdAt" yaml:"-"`                         // Server time of insertion.
}
