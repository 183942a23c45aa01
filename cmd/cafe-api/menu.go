package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/cafe/internal/apperr"
	"github.com/MikeMC777/cafe/internal/httpx"
	"github.com/MikeMC777/cafe/internal/menu"
)

type changeTypeResponse struct {
	Updated int64 `json:"updated"`
}

// listMenuHandler godoc
// @Summary Whole menu
// @Tags    menu
// @Produce json
// @Success 200 {array} menu.Item
// @Router  /menu [get]
func listMenuHandler(svc *menu.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := svc.List(c.Request.Context())
		if err != nil {
			httpx.Error(c, err)
			return
		}
		if items == nil {
			items = []menu.Item{}
		}
		c.JSON(http.StatusOK, items)
	}
}

// searchMenuHandler godoc
// @Summary     Exact search by name or type
// @Description Exactly one of name or type is required.
// @Tags        menu
// @Produce     json
// @Param       name query string false "item name"
// @Param       type query string false "item type"
// @Success     200 {array} menu.Item
// @Failure     400 {object} menu.HTTPError
// @Router      /menu/search [get]
func searchMenuHandler(svc *menu.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		name, byName := c.GetQuery("name")
		typ, byType := c.GetQuery("type")
		var (
			items []menu.Item
			err   error
		)
		switch {
		case byName && !byType:
			items, err = svc.SearchByName(c.Request.Context(), name)
		case byType && !byName:
			items, err = svc.SearchByType(c.Request.Context(), typ)
		default:
			err = apperr.Validationf("pass exactly one of name or type")
		}
		if err != nil {
			httpx.Error(c, err)
			return
		}
		if items == nil {
			items = []menu.Item{}
		}
		c.JSON(http.StatusOK, items)
	}
}

// getItemHandler godoc
// @Summary Get one item
// @Tags    menu
// @Produce json
// @Param   name path string true "item name"
// @Success 200 {object} menu.Item
// @Failure 404 {object} menu.HTTPError
// @Router  /menu/items/{name} [get]
func getItemHandler(svc *menu.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		it, err := svc.Get(c.Request.Context(), c.Param("name"))
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, it)
	}
}

// createItemHandler godoc
// @Summary     Add an item (manager)
// @Description A price with more than two decimals is answered with 409 and both candidates; a zero price needs confirm_zero.
// @Tags        menu
// @Security    Session
// @Accept      json
// @Produce     json
// @Param       body body menu.CreateItemRequest true "item"
// @Success     201 {object} menu.Item
// @Failure     400 {object} menu.HTTPError
// @Failure     403 {object} menu.HTTPError
// @Failure     409 {object} menu.PriceChoice
// @Router      /menu/items [post]
func createItemHandler(svc *menu.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req menu.CreateItemRequest
		if !bindJSON(c, &req) {
			return
		}
		price, err := menu.ParsePrice(req.Price)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		it, err := svc.CreateItem(c.Request.Context(), httpx.CurrentSession(c), menu.Item{
			Name:        req.Name,
			Type:        req.Type,
			Price:       price,
			Description: strings.TrimSpace(req.Description),
			ImageURL:    strings.TrimSpace(req.ImageURL),
		}, req.ConfirmZero)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusCreated, it)
	}
}

// updateItemHandler godoc
// @Summary     Partial update of an item (manager)
// @Description Omitted fields are kept. An empty description or image_url clears it. A new name is applied last.
// @Tags        menu
// @Security    Session
// @Accept      json
// @Produce     json
// @Param       name path string true "current item name"
// @Param       body body menu.UpdateItemRequest true "fields"
// @Success     200 {object} menu.Item
// @Failure     400 {object} menu.HTTPError
// @Failure     404 {object} menu.HTTPError
// @Failure     409 {object} menu.PriceChoice
// @Router      /menu/items/{name} [patch]
func updateItemHandler(svc *menu.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req menu.UpdateItemRequest
		if !bindJSON(c, &req) {
			return
		}
		u := menu.ItemUpdate{
			Name:        req.Name,
			Type:        req.Type,
			Description: req.Description,
			ImageURL:    req.ImageURL,
			ConfirmZero: req.ConfirmZero,
		}
		if req.Price != nil {
			p, err := menu.ParsePrice(*req.Price)
			if err != nil {
				httpx.Error(c, err)
				return
			}
			u.Price = &p
		}
		it, err := svc.UpdateItem(c.Request.Context(), httpx.CurrentSession(c), c.Param("name"), u)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, it)
	}
}

// deleteItemHandler godoc
// @Summary  Delete an item (manager)
// @Tags     menu
// @Security Session
// @Param    name path string true "item name"
// @Success  204
// @Failure  404 {object} menu.HTTPError
// @Router   /menu/items/{name} [delete]
func deleteItemHandler(svc *menu.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.DeleteItem(c.Request.Context(), httpx.CurrentSession(c), c.Param("name")); err != nil {
			httpx.Error(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// changeTypeHandler godoc
// @Summary  Rename a type on every item (manager)
// @Tags     menu
// @Security Session
// @Accept   json
// @Produce  json
// @Param    body body menu.ChangeTypeRequest true "from / to"
// @Success  200 {object} changeTypeResponse
// @Failure  404 {object} menu.HTTPError
// @Router   /menu/types/rename [post]
func changeTypeHandler(svc *menu.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req menu.ChangeTypeRequest
		if !bindJSON(c, &req) {
			return
		}
		n, err := svc.ChangeAllOfType(c.Request.Context(), httpx.CurrentSession(c), req.From, req.To)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, changeTypeResponse{Updated: n})
	}
}
