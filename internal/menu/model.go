package menu

import "github.com/shopspring/decimal"

type Item struct {
	Name        string          `json:"name"`
	Type        string          `json:"type"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description,omitempty"`
	ImageURL    string          `json:"image_url,omitempty"`
}

// ItemUpdate carries the fields to change. A nil field is left as is; an
// empty Description or ImageURL clears it.
type ItemUpdate struct {
	Name        *string
	Type        *string
	Price       *decimal.Decimal
	Description *string
	ImageURL    *string
	ConfirmZero bool
}

func (u ItemUpdate) Empty() bool {
	return u.Name == nil && u.Type == nil && u.Price == nil && u.Description == nil && u.ImageURL == nil
}

// HTTPError represents a standard error in JSON.
// swagger:model
type HTTPError struct {
	// example: menu item "Latte" not found
	Error string `json:"error"`
}

// PriceChoice is returned when a price has more than two decimals.
// swagger:model
type PriceChoice struct {
	Error     string `json:"error"`
	Original  string `json:"original"  example:"3.505"`
	Truncated string `json:"truncated" example:"3.50"`
	Rounded   string `json:"rounded"   example:"3.51"`
}

// CreateItemRequest payload of creation.
// swagger:model CreateItemRequest
type CreateItemRequest struct {
	Name        string `json:"name"         example:"Latte"`
	Type        string `json:"type"         example:"Drink"`
	Price       string `json:"price"        example:"3.50"`
	Description string `json:"description"  example:"Espresso with steamed milk"`
	ImageURL    string `json:"image_url"    example:"https://cdn.example.com/latte.png"`
	ConfirmZero bool   `json:"confirm_zero"`
}

// UpdateItemRequest payload of partial update. Omitted fields are kept.
// swagger:model UpdateItemRequest
type UpdateItemRequest struct {
	Name        *string `json:"name"`
	Type        *string `json:"type"`
	Price       *string `json:"price"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
	ConfirmZero bool    `json:"confirm_zero"`
}

// ChangeTypeRequest renames a type across every item.
// swagger:model ChangeTypeRequest
type ChangeTypeRequest struct {
	From string `json:"from" example:"Drink"`
	To   string `json:"to"   example:"Beverage"`
}
