package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/beanpath/coffee-directory/internal/auth"
	"github.com/beanpath/coffee-directory/internal/config"
	"github.com/beanpath/coffee-directory/internal/database"
	"github.com/beanpath/coffee-directory/internal/handler"
	middlewarepkg "github.com/beanpath/coffee-directory/internal/middleware"
	"github.com/beanpath/coffee-directory/internal/repository"
	"github.com/beanpath/coffee-directory/internal/router"
	"github.com/beanpath/coffee-directory/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer pool.Close()

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)

	usersRepo := repository.NewPGXUsersRepository(pool)
	citiesRepo := repository.NewPGXCitiesRepository(pool)
	shopsRepo := repository.NewPGXShopsRepository(pool)
	featuresRepo := repository.NewPGXFeaturesRepository(pool)
	reviewsRepo := repository.NewPGXReviewsRepository(pool)
	favoritesRepo := repository.NewPGXFavoritesRepository(pool)
	proposalsRepo := repository.NewPGXProposalsRepository(pool)

	contact := service.NewContactNormalizer("US")
	aggregator := service.NewRatingAggregator(reviewsRepo, shopsRepo)

	authService := service.NewAuthService(usersRepo, jwtManager)
	userService := service.NewUserService(usersRepo)
	citiesService := service.NewCitiesService(citiesRepo)
	shopsService := service.NewShopsService(shopsRepo, contact)
	featuresService := service.NewFeaturesService(featuresRepo)
	reviewsService := service.NewReviewsService(reviewsRepo, aggregator)
	favoritesService := service.NewFavoritesService(favoritesRepo)
	proposalWorkflow := service.NewProposalWorkflow(proposalsRepo, shopsRepo, contact)

	geocoder := handler.NewGeocodeClient(nil, cfg.GeocoderBaseURL)
	uploader := handler.NewImageHostClient(nil, cfg.ImageHostURL, cfg.ImageHostKey)

	handlers := router.Handlers{
		Auth:        handler.NewAuthHandler(authService),
		Users:       handler.NewUsersHandler(userService),
		Cities:      handler.NewCitiesHandler(citiesService, geocoder),
		Shops:       handler.NewShopsHandler(shopsService),
		Features:    handler.NewFeaturesHandler(featuresService),
		Reviews:     handler.NewReviewsHandler(reviewsService),
		Favorites:   handler.NewFavoritesHandler(favoritesService),
		Proposals:   handler.NewProposalsHandler(proposalWorkflow),
		AdminUpload: handler.NewAdminUploadHandler(shopsService),
		Media:       handler.NewMediaHandler(uploader),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging())
	e.Use(echoMiddleware.Recover())

	router.Register(e, cfg, jwtManager, handlers)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- e.Start(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
