package admin

import (
	"strconv"
	"strings"

	"github.com/dmitrymomot/shopclient/pkg/product"
	"github.com/dmitrymomot/shopclient/pkg/validator"
)

// Draft is the transient edit buffer for one product's editable fields.
// Values are kept exactly as entered in the form and parsed only after
// validation passes, so a half-typed price round-trips through the form
// unchanged. A draft lives for the duration of one add or edit flow and is
// discarded on cancel or successful submit.
type Draft struct {
	Name          string
	Description   string
	Price         string
	Category      string
	ImageURL      string
	StockQuantity string
}

// DraftFrom copies a product's editable fields into a new draft.
func DraftFrom(p product.Product) Draft {
	return Draft{
		Name:          p.Name,
		Description:   p.Description,
		Price:         strconv.FormatFloat(p.Price, 'f', -1, 64),
		Category:      p.Category,
		ImageURL:      p.ImageURL,
		StockQuantity: strconv.Itoa(p.StockQuantity),
	}
}

// validate checks the draft's local preconditions. A non-nil return is
// always a validator.ValidationErrors naming every offending field, and
// means no request may be issued for this draft.
func (d Draft) validate() error {
	return validator.Apply(
		validator.RequiredString("name", d.Name),
		validator.RequiredString("category", d.Category),
		validator.NonNegativeDecimalString("price", d.Price),
		validator.NonNegativeIntString("stock_quantity", d.StockQuantity),
	)
}

// productPayload is the wire shape of a create/update body. Price and stock
// are sent as numbers, not the form strings.
type productPayload struct {
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Price         float64 `json:"price"`
	Category      string  `json:"category"`
	ImageURL      string  `json:"image_url"`
	StockQuantity int     `json:"stock_quantity"`
}

// payload validates the draft and converts it to its wire shape.
func (d Draft) payload() (productPayload, error) {
	if err := d.validate(); err != nil {
		return productPayload{}, err
	}

	// Parse errors are impossible here: validate just proved both fields.
	price, _ := strconv.ParseFloat(strings.TrimSpace(d.Price), 64)
	stock, _ := strconv.Atoi(strings.TrimSpace(d.StockQuantity))

	return productPayload{
		Name:          d.Name,
		Description:   d.Description,
		Price:         price,
		Category:      d.Category,
		ImageURL:      d.ImageURL,
		StockQuantity: stock,
	}, nil
}
