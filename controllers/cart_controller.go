package controllers

import (
	"net/http"

	"ooru-foods/middleware"
	"ooru-foods/models"
	"ooru-foods/services"

	"github.com/gin-gonic/gin"
)

type CartController struct {
	carts *services.CartService
}

func NewCartController(carts *services.CartService) *CartController {
	return &CartController{carts: carts}
}

func cartResponse(c *gin.Context, status int, message string, view *models.CartView) {
	c.JSON(status, models.Response{Success: true, Message: message, Data: view})
}

// @Summary Get cart
// @Description Reconciled cart of the current session with count and total
// @Tags Cart
// @Produce json
// @Security ApiKeyAuth
// @Param X-Session-ID header string true "Cart session"
// @Success 200 {object} models.Response
// @Router /cart [get]
func (ctrl *CartController) GetCart(c *gin.Context) {
	view, err := ctrl.carts.Init(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		respondError(c, "Failed to load cart", err)
		return
	}
	cartResponse(c, http.StatusOK, "Cart retrieved", view)
}

// @Summary Add to cart
// @Description Adds quantity of a product; an existing line is incremented
// @Tags Cart
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param X-Session-ID header string true "Cart session"
// @Param item body models.AddCartItemRequest true "Item"
// @Success 200 {object} models.Response
// @Router /cart/items [post]
func (ctrl *CartController) AddItem(c *gin.Context) {
	var req models.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid cart item", err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	view, err := ctrl.carts.AddToCart(c.Request.Context(), middleware.SessionID(c), req.ProductID, req.Quantity)
	if err != nil {
		respondError(c, "Failed to add item to cart", err)
		return
	}
	cartResponse(c, http.StatusOK, "Item added to cart", view)
}

// @Summary Update cart item quantity
// @Description A quantity of zero or less removes the item
// @Tags Cart
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param X-Session-ID header string true "Cart session"
// @Param id path string true "Cart item ID"
// @Param item body models.UpdateCartItemRequest true "Quantity"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /cart/items/{id} [patch]
func (ctrl *CartController) UpdateItem(c *gin.Context) {
	var req models.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid quantity", err)
		return
	}

	view, err := ctrl.carts.UpdateQuantity(c.Request.Context(), middleware.SessionID(c), c.Param("id"), *req.Quantity)
	if err != nil {
		respondError(c, "Failed to update cart item", err)
		return
	}
	cartResponse(c, http.StatusOK, "Cart updated", view)
}

// @Summary Remove cart item
// @Tags Cart
// @Produce json
// @Security ApiKeyAuth
// @Param X-Session-ID header string true "Cart session"
// @Param id path string true "Cart item ID"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /cart/items/{id} [delete]
func (ctrl *CartController) RemoveItem(c *gin.Context) {
	view, err := ctrl.carts.RemoveFromCart(c.Request.Context(), middleware.SessionID(c), c.Param("id"))
	if err != nil {
		respondError(c, "Failed to remove cart item", err)
		return
	}
	cartResponse(c, http.StatusOK, "Item removed from cart", view)
}

// @Summary Clear cart
// @Tags Cart
// @Produce json
// @Security ApiKeyAuth
// @Param X-Session-ID header string true "Cart session"
// @Success 200 {object} models.Response
// @Router /cart [delete]
func (ctrl *CartController) ClearCart(c *gin.Context) {
	view := ctrl.carts.ClearCart(c.Request.Context(), middleware.SessionID(c))
	cartResponse(c, http.StatusOK, "Cart cleared", view)
}

// @Summary Flush fallback cart
// @Description Pushes rows kept in the local fallback store to the remote cart
// @Tags Cart
// @Produce json
// @Security ApiKeyAuth
// @Param X-Session-ID header string true "Cart session"
// @Success 200 {object} models.Response
// @Failure 503 {object} models.ErrorResponse
// @Router /cart/flush [post]
func (ctrl *CartController) FlushCart(c *gin.Context) {
	view, err := ctrl.carts.Flush(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		respondError(c, "Failed to sync cart", err)
		return
	}
	cartResponse(c, http.StatusOK, "Cart synced", view)
}
