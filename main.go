package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"go-storefront/cart"
	"go-storefront/config"
	"go-storefront/controllers"
	"go-storefront/middleware"
	"go-storefront/payment"
	"go-storefront/repository"
	"go-storefront/routes"
	"go-storefront/services"
	"go-storefront/session"
	"go-storefront/storage"
	"go-storefront/utils"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	utils.SetupLogger(cfg.LogLevel, !cfg.IsProduction())

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Connect to MongoDB
	client, err := repository.ConnectDB(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("Failed to disconnect from MongoDB")
		}
	}()

	db := client.Database(cfg.MongoDB)
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("Failed to create indexes")
	}

	// Connect to Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("Failed to connect to Redis")
	}
	kv := storage.NewRedisKV(rdb, cfg.CartTTL)

	guard := session.NewGuard(kv)
	guard.OnExpired(func(ctx context.Context, userID string) {
		cart.Load(ctx, kv, cart.KeyFor(userID)).Reset(ctx)
	})

	mailer, err := utils.NewMailer(utils.MailConfig{
		Provider:       cfg.MailProvider,
		PostmarkToken:  cfg.PostmarkAPIToken,
		SendgridAPIKey: cfg.SendgridAPIKey,
		Sender:         cfg.EmailSender,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure mailer")
	}

	orderRepo := repository.NewOrderRepository(db)
	productRepo := repository.NewProductRepository(db)
	userRepo := repository.NewUserRepository(db)

	gateway := payment.NewBreakerGateway(payment.NewSimulatedGateway(cfg.PaymentApprovalLimit), payment.BreakerSettings{})

	orderService := services.NewOrderService(orderRepo, productRepo, gateway)
	productService := services.NewProductService(productRepo, cfg.PaginationLimit)
	userService := services.NewUserService(userRepo)

	tokens := utils.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	auth := middleware.NewAuth(tokens, guard)

	router := mux.NewRouter()
	routes.RegisterRoutes(router, auth, routes.Controllers{
		Users:    controllers.NewUserController(userService, tokens, guard, kv, cfg.IsProduction()),
		Products: controllers.NewProductController(productService),
		Carts:    controllers.NewCartController(kv, productService),
		Orders:   controllers.NewOrderController(orderService, userService, kv, mailer),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server is running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
}
