package order

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/cafe/internal/apperr"
)

type Status string

const (
	NotStarted Status = "Hasn't Started"
	Started    Status = "Started"
	Finished   Status = "Finished"
)

var Statuses = []Status{NotStarted, Started, Finished}

func ParseStatus(s string) (Status, error) {
	s = strings.TrimSpace(s)
	for _, st := range Statuses {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", apperr.Validationf("status must be one of %q, %q or %q", NotStarted, Started, Finished)
}

type Order struct {
	ID         int64           `json:"id"`
	Login      string          `json:"login"`
	Paid       bool            `json:"paid"`
	ReceivedAt time.Time       `json:"received_at"`
	Total      decimal.Decimal `json:"total"`
}

type ItemStatus struct {
	OrderID     int64     `json:"order_id"`
	ItemName    string    `json:"item_name"`
	LastUpdated time.Time `json:"last_updated"`
	Status      Status    `json:"status"`
	Comment     string    `json:"comment,omitempty"`
}

// Detail is an order with its item rows.
type Detail struct {
	Order
	Items []ItemStatus `json:"items"`
}

func (d *Detail) Has(item string) bool {
	for _, it := range d.Items {
		if it.ItemName == item {
			return true
		}
	}
	return false
}
