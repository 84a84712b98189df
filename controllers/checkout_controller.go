package controllers

import (
	"net/http"

	"ooru-foods/middleware"
	"ooru-foods/models"
	"ooru-foods/services"

	"github.com/gin-gonic/gin"
)

type CheckoutController struct {
	checkout *services.CheckoutService
}

func NewCheckoutController(checkout *services.CheckoutService) *CheckoutController {
	return &CheckoutController{checkout: checkout}
}

// @Summary Quote checkout
// @Description Price a subtotal (or the session cart) with an optional promo code
// @Tags Checkout
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param X-Session-ID header string true "Cart session"
// @Param quote body models.QuoteRequest true "Quote request"
// @Success 200 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Router /checkout/quote [post]
func (ctrl *CheckoutController) Quote(c *gin.Context) {
	var req models.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid quote request", err)
		return
	}

	var (
		quote models.Quote
		err   error
	)
	if req.Subtotal != nil {
		quote, err = services.Quote(*req.Subtotal, req.PromoCode)
	} else {
		quote, err = ctrl.checkout.QuoteCart(c.Request.Context(), middleware.SessionID(c), req.PromoCode)
	}
	if err != nil {
		respondError(c, "Failed to quote order", err)
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Quote calculated", Data: quote})
}

// @Summary Checkout
// @Description Simulated payment followed by order placement; clears the cart
// @Tags Checkout
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param X-Session-ID header string true "Cart session"
// @Param checkout body models.CheckoutRequest true "Checkout data"
// @Success 201 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Router /checkout [post]
func (ctrl *CheckoutController) Checkout(c *gin.Context) {
	var req models.CheckoutRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "Invalid checkout data", err)
			return
		}
	}

	confirmation, err := ctrl.checkout.PlaceOrder(c.Request.Context(), middleware.SessionID(c), req)
	if err != nil {
		respondError(c, "Failed to place order, please try again", err)
		return
	}
	c.JSON(http.StatusCreated, models.Response{Success: true, Message: "Order created successfully", Data: confirmation})
}
