package order

// PlaceOrderRequest payload of order placement.
// swagger:model PlaceOrderRequest
type PlaceOrderRequest struct {
	Items []string `json:"items" example:"Latte,Bagel"`
}

// AddItemRequest adds one menu item to an unpaid order.
// swagger:model AddItemRequest
type AddItemRequest struct {
	Item string `json:"item" example:"Mocha"`
}

// CommentRequest sets the comment on one item of an order.
// swagger:model CommentRequest
type CommentRequest struct {
	Comment string `json:"comment" example:"extra hot"`
}

// StatusRequest sets the preparation status of one item.
// swagger:model StatusRequest
type StatusRequest struct {
	Status string `json:"status" example:"Started" enums:"Hasn't Started,Started,Finished"`
}

// RemoveItemResponse tells whether removing the item emptied the order.
// swagger:model RemoveItemResponse
type RemoveItemResponse struct {
	OrderDeleted bool `json:"order_deleted"`
}

// PaidResponse tells whether the order had already been paid.
// swagger:model PaidResponse
type PaidResponse struct {
	Paid        bool `json:"paid"`
	AlreadyPaid bool `json:"already_paid"`
}
