package repository

import "path"

// Layout builds the storefront's document paths under one application namespace.
type Layout struct {
	AppID string
}

// NewLayout creates a Layout for appID.
func NewLayout(appID string) Layout {
	return Layout{AppID: appID}
}

func (l Layout) root() string {
	return path.Join("artifacts", l.AppID)
}

// Products is the shared product collection.
func (l Layout) Products() string {
	return path.Join(l.root(), "public", "data", "products")
}

// Product is one product document.
func (l Layout) Product(productID string) string {
	return path.Join(l.Products(), productID)
}

// Profile is the profile document of identityID.
func (l Layout) Profile(identityID string) string {
	return path.Join(l.root(), "users", identityID, "account", "profile")
}

// Cart is the cart collection of identityID.
func (l Layout) Cart(identityID string) string {
	return path.Join(l.root(), "users", identityID, "cart")
}

// CartLine is one cart line document of identityID.
func (l Layout) CartLine(identityID, lineID string) string {
	return path.Join(l.Cart(identityID), lineID)
}

// Orders is the order collection of identityID.
func (l Layout) Orders(identityID string) string {
	return path.Join(l.root(), "users", identityID, "orders")
}
