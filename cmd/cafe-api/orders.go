package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/cafe/internal/apperr"
	"github.com/MikeMC777/cafe/internal/httpx"
	"github.com/MikeMC777/cafe/internal/order"
)

func orderID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Error(c, apperr.Validationf("invalid order id %q", c.Param("id")))
		return 0, false
	}
	return id, true
}

func orderList(c *gin.Context, out []order.Order, err error) {
	if err != nil {
		httpx.Error(c, err)
		return
	}
	if out == nil {
		out = []order.Order{}
	}
	c.JSON(http.StatusOK, out)
}

// placeOrderHandler godoc
// @Summary  Place an order for the current user
// @Tags     orders
// @Security Session
// @Accept   json
// @Produce  json
// @Param    body body order.PlaceOrderRequest true "items"
// @Success  201 {object} order.Detail
// @Failure  400 {object} menu.HTTPError
// @Failure  404 {object} menu.HTTPError
// @Router   /orders [post]
func placeOrderHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.PlaceOrderRequest
		if !bindJSON(c, &req) {
			return
		}
		d, err := svc.PlaceOrder(c.Request.Context(), httpx.CurrentSession(c), req.Items)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, d)
	}
}

// recentOrdersHandler godoc
// @Summary     Five latest orders
// @Description Without login the current user's orders. Staff may pass any login.
// @Tags        orders
// @Security    Session
// @Produce     json
// @Param       login query string false "customer login"
// @Success     200 {array} order.Order
// @Failure     403 {object} menu.HTTPError
// @Router      /orders [get]
func recentOrdersHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svc.ListRecentOrders(c.Request.Context(), httpx.CurrentSession(c), c.Query("login"))
		orderList(c, out, err)
	}
}

// unpaidOrdersHandler godoc
// @Summary  Unpaid orders of the last 24 hours (manager)
// @Tags     orders
// @Security Session
// @Produce  json
// @Success  200 {array} order.Order
// @Failure  403 {object} menu.HTTPError
// @Router   /unpaid-orders [get]
func unpaidOrdersHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svc.ListUnpaidRecentOrders(c.Request.Context(), httpx.CurrentSession(c))
		orderList(c, out, err)
	}
}

// getOrderHandler godoc
// @Summary  One order with its items
// @Tags     orders
// @Security Session
// @Produce  json
// @Param    id path int true "order id"
// @Success  200 {object} order.Detail
// @Failure  403 {object} menu.HTTPError
// @Failure  404 {object} menu.HTTPError
// @Router   /orders/{id} [get]
func getOrderHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := orderID(c)
		if !ok {
			return
		}
		d, err := svc.GetOrder(c.Request.Context(), httpx.CurrentSession(c), id)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, d)
	}
}

// cancelOrderHandler godoc
// @Summary  Cancel an order
// @Tags     orders
// @Security Session
// @Param    id path int true "order id"
// @Success  204
// @Failure  400 {object} menu.HTTPError
// @Failure  404 {object} menu.HTTPError
// @Router   /orders/{id} [delete]
func cancelOrderHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := orderID(c)
		if !ok {
			return
		}
		if err := svc.CancelOrder(c.Request.Context(), httpx.CurrentSession(c), id); err != nil {
			httpx.Error(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// payOrderHandler godoc
// @Summary  Mark an order paid (staff)
// @Tags     orders
// @Security Session
// @Produce  json
// @Param    id path int true "order id"
// @Success  200 {object} order.PaidResponse
// @Failure  403 {object} menu.HTTPError
// @Failure  404 {object} menu.HTTPError
// @Router   /orders/{id}/pay [post]
func payOrderHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := orderID(c)
		if !ok {
			return
		}
		already, err := svc.SetPaid(c.Request.Context(), httpx.CurrentSession(c), id)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, order.PaidResponse{Paid: true, AlreadyPaid: already})
	}
}

// addOrderItemHandler godoc
// @Summary  Add an item to an unpaid order
// @Tags     orders
// @Security Session
// @Accept   json
// @Param    id path int true "order id"
// @Param    body body order.AddItemRequest true "item"
// @Success  204
// @Failure  400 {object} menu.HTTPError
// @Failure  404 {object} menu.HTTPError
// @Router   /orders/{id}/items [post]
func addOrderItemHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := orderID(c)
		if !ok {
			return
		}
		var req order.AddItemRequest
		if !bindJSON(c, &req) {
			return
		}
		if err := svc.AddItem(c.Request.Context(), httpx.CurrentSession(c), id, req.Item); err != nil {
			httpx.Error(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// removeOrderItemHandler godoc
// @Summary     Remove an item from an order
// @Description Removing the last item deletes the order.
// @Tags        orders
// @Security    Session
// @Produce     json
// @Param       id path int true "order id"
// @Param       item path string true "item name"
// @Success     200 {object} order.RemoveItemResponse
// @Failure     404 {object} menu.HTTPError
// @Router      /orders/{id}/items/{item} [delete]
func removeOrderItemHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := orderID(c)
		if !ok {
			return
		}
		deleted, err := svc.RemoveItem(c.Request.Context(), httpx.CurrentSession(c), id, c.Param("item"))
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, order.RemoveItemResponse{OrderDeleted: deleted})
	}
}

// commentHandler godoc
// @Summary  Set the comment of an order item
// @Tags     orders
// @Security Session
// @Accept   json
// @Param    id path int true "order id"
// @Param    item path string true "item name"
// @Param    body body order.CommentRequest true "comment"
// @Success  204
// @Failure  400 {object} menu.HTTPError
// @Router   /orders/{id}/items/{item}/comment [put]
func commentHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := orderID(c)
		if !ok {
			return
		}
		var req order.CommentRequest
		if !bindJSON(c, &req) {
			return
		}
		if err := svc.AddComment(c.Request.Context(), httpx.CurrentSession(c), id, c.Param("item"), req.Comment); err != nil {
			httpx.Error(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// itemStatusHandler godoc
// @Summary  Set the preparation status of an order item (staff)
// @Tags     orders
// @Security Session
// @Accept   json
// @Param    id path int true "order id"
// @Param    item path string true "item name"
// @Param    body body order.StatusRequest true "status"
// @Success  204
// @Failure  400 {object} menu.HTTPError
// @Failure  403 {object} menu.HTTPError
// @Router   /orders/{id}/items/{item}/status [put]
func itemStatusHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := orderID(c)
		if !ok {
			return
		}
		var req order.StatusRequest
		if !bindJSON(c, &req) {
			return
		}
		if err := svc.SetItemStatus(c.Request.Context(), httpx.CurrentSession(c), id, c.Param("item"), order.Status(req.Status)); err != nil {
			httpx.Error(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
