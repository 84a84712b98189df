package app

import (
	"context"
	"fmt"
	"log/slog"

	"ooru-foods/config"
	"ooru-foods/controllers"
	"ooru-foods/libs"
	"ooru-foods/middleware"
	"ooru-foods/repositories"
	"ooru-foods/routes"
	"ooru-foods/services"
	"ooru-foods/utils"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// App holds every long-lived dependency of the storefront API.
type App struct {
	Router  *gin.Engine
	Carts   *services.CartService
	Flusher *services.Flusher

	db    *pgxpool.Pool
	redis *redis.Client
	local *repositories.LocalCartRepository
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.ConnectDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	local, err := repositories.OpenLocalCartRepository(cfg.LocalStorePath)
	if err != nil {
		db.Close()
		return nil, err
	}

	redisClient := config.ConnectRedis(ctx, cfg)

	var uploader services.ImageUploader
	if cfg.CloudinaryEnabled() {
		cld, err := libs.NewCloudinaryUploader(cfg.CloudinaryURL, cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			slog.Warn("Cloudinary disabled", "error", err)
		} else {
			uploader = cld
		}
	}

	var mailer services.OrderMailer
	if cfg.MailEnabled() {
		m, err := libs.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
		if err != nil {
			slog.Warn("Order mail disabled", "error", err)
		} else {
			mailer = m
		}
	}

	products := services.NewProductService(
		repositories.NewProductRepository(db),
		libs.NewCache(redisClient),
		uploader,
		utils.NewImageResolver(cfg.SupabaseURL, cfg.StorageBucket),
		cfg.ProductCacheTTL,
	)
	store := services.NewCartStore(
		repositories.NewCartRepository(db),
		local,
		repositories.NewOrderRepository(db),
	)
	carts := services.NewCartService(store, products, cfg.CartIdleTTL)
	checkout := services.NewCheckoutService(carts, mailer, cfg.CheckoutDelay)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORSMiddleware(cfg.OriginURL))

	routes.SetupRoutes(router, routes.Controllers{
		Products: controllers.NewProductController(products),
		Cart:     controllers.NewCartController(carts),
		Checkout: controllers.NewCheckoutController(checkout),
	}, routes.Options{
		AnonKey:     cfg.SupabaseAnonKey,
		JWTSecret:   cfg.SupabaseJWTSecret,
		RateLimiter: middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
	})

	return &App{
		Router:  router,
		Carts:   carts,
		Flusher: services.NewFlusher(carts, store, cfg.FlushInterval),
		db:      db,
		redis:   redisClient,
		local:   local,
	}, nil
}

func (a *App) Close() error {
	if a.redis != nil {
		a.redis.Close()
	}
	if a.db != nil {
		a.db.Close()
		slog.Info("Database connection closed")
	}
	if err := a.local.Close(); err != nil {
		return fmt.Errorf("failed to close local store: %w", err)
	}
	return nil
}
