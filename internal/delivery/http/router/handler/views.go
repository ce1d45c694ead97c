package handler

import (
	"strings"

	"luxe/internal/delivery/http/response"
	"luxe/internal/domain/entity"
	domainerrors "luxe/internal/domain/errors"
	"luxe/internal/usecase"

	"github.com/pkg/errors"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// formatMoney renders a USD amount the way the storefront shows prices, e.g. "$1,299.00".
func formatMoney(amount float64) string {
	printer := message.NewPrinter(language.AmericanEnglish)
	formatted := printer.Sprint(currency.Symbol(currency.USD.Amount(amount)))

	return strings.Replace(formatted, " ", "", 1)
}

type productView struct {
	entity.Product
	PriceDisplay string `json:"priceDisplay"`
}

func newProductView(product entity.Product) productView {
	return productView{Product: product, PriceDisplay: formatMoney(product.Price)}
}

func newProductViews(products []entity.Product) []productView {
	views := make([]productView, 0, len(products))
	for _, product := range products {
		views = append(views, newProductView(product))
	}

	return views
}

type cartView struct {
	Items        entity.Cart `json:"items"`
	Count        int64       `json:"count"`
	Total        float64     `json:"total"`
	TotalDisplay string      `json:"totalDisplay"`
}

func newCartView(cart entity.Cart) cartView {
	if cart == nil {
		cart = entity.Cart{}
	}
	total := cart.Total()

	return cartView{
		Items:        cart,
		Count:        cart.Count(),
		Total:        total,
		TotalDisplay: formatMoney(total),
	}
}

type orderView struct {
	entity.Order
	TotalDisplay string `json:"totalDisplay"`
}

func newOrderViews(orders []entity.Order) []orderView {
	views := make([]orderView, 0, len(orders))
	for _, order := range orders {
		views = append(views, orderView{Order: order, TotalDisplay: formatMoney(order.Total)})
	}

	return views
}

type checkoutView struct {
	*usecase.CheckoutResult
	TotalDisplay string `json:"totalDisplay"`
}

// identityView carries the ID token the client sends back as a bearer token.
type identityView struct {
	*entity.Identity
	Token string `json:"token"`
}

func newIdentityView(identity *entity.Identity) *identityView {
	if identity == nil {
		return nil
	}

	return &identityView{Identity: identity, Token: identity.IDToken}
}

type sessionView struct {
	State    usecase.SessionState `json:"state"`
	Identity *identityView        `json:"identity,omitempty"`
	Error    *response.ErrorInfo  `json:"error,omitempty"`
}

func newSessionView(view usecase.SessionView) sessionView {
	out := sessionView{State: view.State, Identity: newIdentityView(view.Identity)}
	if view.Err == nil {
		return out
	}

	out.Error = &response.ErrorInfo{Code: domainerrors.ErrInternalError.ErrorCode(), Message: view.Err.Error()}
	var appErr domainerrors.AppError
	if errors.As(view.Err, &appErr) {
		out.Error = &response.ErrorInfo{Code: appErr.ErrorCode(), Message: appErr.Message()}
	}

	return out
}
