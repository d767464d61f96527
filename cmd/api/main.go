package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eaglebank/eagle-bank-api/internal/auth"
	"github.com/eaglebank/eagle-bank-api/internal/cache"
	"github.com/eaglebank/eagle-bank-api/internal/config"
	"github.com/eaglebank/eagle-bank-api/internal/handler"
	"github.com/eaglebank/eagle-bank-api/internal/middleware"
	"github.com/eaglebank/eagle-bank-api/internal/models"
	"github.com/eaglebank/eagle-bank-api/internal/repository"
	"github.com/eaglebank/eagle-bank-api/internal/service"
	"github.com/gin-gonic/gin"
)

const accountViewTTL = 5 * time.Minute

func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := repository.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := repository.Migrate(ctx, pool); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	redisClient, err := cache.NewClient(cfg.RedisAddr, cfg.RedisPassword, 0)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Explicit wiring: every dependency is constructed once here and passed
	// down by reference.
	secret := []byte(cfg.JWTSecret)
	issuer := auth.NewTokenIssuer(secret, cfg.JWTIssuer, cfg.JWTTTL())

	userRepo := repository.NewUserRepository(pool)
	accountRepo := repository.NewAccountRepository(pool)
	transactionRepo := repository.NewTransactionRepository(pool)

	accountViews := cache.NewViewCache[models.Account](redisClient, accountViewTTL)

	userSvc := service.NewUserService(userRepo, accountRepo)
	accountSvc := service.NewAccountService(accountRepo, accountViews)
	transactionSvc := service.NewTransactionService(transactionRepo, accountRepo, accountViews)
	authSvc := service.NewAuthService(userRepo, issuer, secret)

	userHandler := handler.NewUserHandler(userSvc)
	accountHandler := handler.NewAccountHandler(accountSvc)
	transactionHandler := handler.NewTransactionHandler(transactionSvc)
	authHandler := handler.NewAuthHandler(authSvc)

	router := gin.Default()
	router.Use(middleware.Logging())

	authRequired := middleware.Auth(secret)

	v1Auth := router.Group("/v1/auth")
	{
		v1Auth.POST("/login", authHandler.Login)
		v1Auth.POST("/refresh", authHandler.RefreshToken)
	}

	v1Users := router.Group("/v1/users")
	{
		v1Users.POST("", userHandler.CreateUser)
		v1Users.GET("", authRequired, userHandler.ListUsers)
		v1Users.GET("/:userId", authRequired, userHandler.GetUser)
		v1Users.PUT("/:userId", authRequired, userHandler.UpdateUser)
		v1Users.PATCH("/:userId", authRequired, userHandler.UpdateUser)
		v1Users.DELETE("/:userId", authRequired, userHandler.DeleteUser)
	}

	v1Accounts := router.Group("/v1/accounts", authRequired)
	{
		v1Accounts.POST("", accountHandler.CreateAccount)
		v1Accounts.GET("", accountHandler.ListAccounts)
		v1Accounts.GET("/:accountNumber", accountHandler.GetAccount)
		v1Accounts.PATCH("/:accountNumber", accountHandler.UpdateAccount)
		v1Accounts.DELETE("/:accountNumber", accountHandler.DeleteAccount)
		v1Accounts.POST("/:accountNumber/transactions", transactionHandler.CreateTransaction)
		v1Accounts.GET("/:accountNumber/transactions", transactionHandler.ListTransactions)
		v1Accounts.GET("/:accountNumber/transactions/:transactionId", transactionHandler.GetTransaction)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	srv := &http.Server{
		Addr:    cfg.HTTPAddress(),
		Handler: router,
	}

	go func() {
		log.Printf("Eagle Bank API starting on %s", cfg.HTTPAddress())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
}
