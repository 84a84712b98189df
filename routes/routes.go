package routes

import (
	"net/http"

	"ooru-foods/controllers"
	"ooru-foods/middleware"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Controllers struct {
	Products *controllers.ProductController
	Cart     *controllers.CartController
	Checkout *controllers.CheckoutController
}

type Options struct {
	AnonKey     string
	JWTSecret   string
	RateLimiter *middleware.RateLimiter
}

func SetupRoutes(router *gin.Engine, ctrls Controllers, opts Options) {
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	api := router.Group("/api")
	api.Use(middleware.APIKeyMiddleware(opts.AnonKey))
	if opts.RateLimiter != nil {
		api.Use(opts.RateLimiter.Middleware())
	}
	{
		api.GET("/categories", ctrls.Products.GetCategories)
		api.GET("/products", ctrls.Products.GetProducts)
		api.GET("/products/:id", ctrls.Products.GetProductByID)
		api.GET("/products/:id/recommendations", ctrls.Products.GetRecommendations)
	}

	session := api.Group("/")
	session.Use(middleware.SessionMiddleware(opts.JWTSecret))
	{
		session.GET("/cart", ctrls.Cart.GetCart)
		session.DELETE("/cart", ctrls.Cart.ClearCart)
		session.POST("/cart/items", ctrls.Cart.AddItem)
		session.PATCH("/cart/items/:id", ctrls.Cart.UpdateItem)
		session.DELETE("/cart/items/:id", ctrls.Cart.RemoveItem)
		session.POST("/cart/flush", ctrls.Cart.FlushCart)

		session.POST("/checkout/quote", ctrls.Checkout.Quote)
		session.POST("/checkout", ctrls.Checkout.Checkout)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.ServiceRoleMiddleware(opts.JWTSecret))
	{
		admin.POST("/products", ctrls.Products.CreateProduct)
		admin.GET("/products/export", ctrls.Products.ExportProducts)
	}
}
