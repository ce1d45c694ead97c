// Package impl contains the application-specific business rules implementations.
package impl

import (
	"time"

	"luxe/internal/domain/entity"
	"luxe/internal/domain/repository"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
)

// decodeFields decodes store fields into out using the firestore field names.
// Timestamps written as RFC 3339 strings by other clients decode like native ones.
func decodeFields(fields repository.Fields, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "firestore",
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
		Result:           out,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create decoder")
	}

	return errors.Wrap(decoder.Decode(map[string]any(fields)), "failed to decode document")
}

func decodeProduct(doc repository.Document) (entity.Product, error) {
	var product entity.Product
	if err := decodeFields(doc.Fields, &product); err != nil {
		return entity.Product{}, errors.Wrapf(err, "product %s", doc.ID)
	}
	product.ID = doc.ID

	return product, nil
}

func decodeCartLine(doc repository.Document) (entity.CartLine, error) {
	var line entity.CartLine
	if err := decodeFields(doc.Fields, &line); err != nil {
		return entity.CartLine{}, errors.Wrapf(err, "cart line %s", doc.ID)
	}
	line.ID = doc.ID

	return line, nil
}

func decodeOrder(doc repository.Document) (entity.Order, error) {
	var order entity.Order
	if err := decodeFields(doc.Fields, &order); err != nil {
		return entity.Order{}, errors.Wrapf(err, "order %s", doc.ID)
	}
	order.ID = doc.ID

	return order, nil
}

func decodeProfile(doc repository.Document) (*entity.Profile, error) {
	var profile entity.Profile
	if err := decodeFields(doc.Fields, &profile); err != nil {
		return nil, errors.Wrapf(err, "profile %s", doc.Path)
	}

	return &profile, nil
}

func productFields(product entity.Product) repository.Fields {
	return repository.Fields{
		"name":        product.Name,
		"price":       product.Price,
		"category":    product.Category,
		"image":       product.Image,
		"description": product.Description,
		"rating":      product.Rating,
		"createdAt":   repository.ServerTimestamp,
	}
}

func cartLineFields(line entity.CartLine) repository.Fields {
	return repository.Fields{
		"productId": line.ProductID,
		"name":      line.Name,
		"price":     line.Price,
		"image":     line.Image,
		"quantity":  line.Quantity,
	}
}

// orderFields snapshots cart verbatim, line IDs included.
func orderFields(cart entity.Cart, total float64) repository.Fields {
	items := make([]map[string]any, 0, len(cart))
	for _, line := range cart {
		item := map[string]any(cartLineFields(line))
		item["id"] = line.ID
		items = append(items, item)
	}

	return repository.Fields{
		"items":     items,
		"total":     total,
		"status":    entity.OrderStatusProcessing.String(),
		"createdAt": repository.ServerTimestamp,
	}
}

func profileFields(profile entity.Profile) repository.Fields {
	return repository.Fields{
		"name":       profile.Name,
		"email":      profile.Email,
		"memberTier": profile.MemberTier,
		"joinedAt":   repository.ServerTimestamp,
	}
}
