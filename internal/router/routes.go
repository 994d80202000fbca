package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/beanpath/coffee-directory/internal/auth"
	"github.com/beanpath/coffee-directory/internal/config"
	"github.com/beanpath/coffee-directory/internal/handler"
	middlewarepkg "github.com/beanpath/coffee-directory/internal/middleware"
)

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Auth        *handler.AuthHandler
	Users       *handler.UsersHandler
	Cities      *handler.CitiesHandler
	Shops       *handler.ShopsHandler
	Features    *handler.FeaturesHandler
	Reviews     *handler.ReviewsHandler
	Favorites   *handler.FavoritesHandler
	Proposals   *handler.ProposalsHandler
	AdminUpload *handler.AdminUploadHandler
	Media       *handler.MediaHandler
}

// Register wires all HTTP routes for the API.
func Register(e *echo.Echo, cfg *config.Config, jwtManager *auth.JWTManager, handlers Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return handler.Success(c, http.StatusOK, "service healthy", map[string]any{"status": "ok"})
	})

	e.POST("/auth/register", handlers.Auth.Register)
	e.POST("/auth/login", handlers.Auth.Login)

	e.GET("/cities", handlers.Cities.List)
	e.GET("/cities/:slug", handlers.Cities.GetBySlug)
	e.GET("/shops", handlers.Shops.List)
	e.GET("/shops/:slug", handlers.Shops.GetBySlug)
	e.GET("/shops/:id/reviews", handlers.Reviews.ListByShop)
	e.GET("/features", handlers.Features.List)

	e.POST("/proposals", handlers.Proposals.Submit,
		middlewarepkg.OptionalJWT(jwtManager),
		middlewarepkg.ProposalRateLimiter(cfg.RateLimitProposals))

	secured := e.Group("")
	secured.Use(middlewarepkg.JWT(jwtManager))

	secured.GET("/me", handlers.Users.Me)
	secured.PATCH("/me", handlers.Users.UpdateProfile)
	secured.GET("/me/favorites", handlers.Favorites.List)
	secured.PUT("/me/favorites/:shop_id", handlers.Favorites.Add)
	secured.DELETE("/me/favorites/:shop_id", handlers.Favorites.Remove)

	secured.POST("/shops/:id/reviews", handlers.Reviews.Create)
	secured.PATCH("/reviews/:id", handlers.Reviews.Update)
	secured.DELETE("/reviews/:id", handlers.Reviews.Delete)

	admin := secured.Group("/admin", middlewarepkg.RequireRole("admin"))
	admin.POST("/cities", handlers.Cities.Create)
	admin.PATCH("/cities/:id", handlers.Cities.Update)
	admin.DELETE("/cities/:id", handlers.Cities.Delete)

	admin.GET("/shops/:id", handlers.Shops.GetByID)
	admin.POST("/shops", handlers.Shops.Create)
	admin.PUT("/shops/:id", handlers.Shops.Update)
	admin.DELETE("/shops/:id", handlers.Shops.Delete)
	admin.POST("/upload-csv", handlers.AdminUpload.UploadCSV)

	admin.POST("/features", handlers.Features.Create)
	admin.PATCH("/features/:id", handlers.Features.Rename)
	admin.DELETE("/features/:id", handlers.Features.Delete)

	admin.GET("/proposals", handlers.Proposals.List)
	admin.GET("/proposals/:id", handlers.Proposals.Get)
	admin.PATCH("/proposals/:id/status", handlers.Proposals.SetStatus)
	admin.POST("/proposals/bulk-status", handlers.Proposals.BulkSetStatus)
	admin.PATCH("/proposals/:id/notes", handlers.Proposals.UpdateNotes)
	admin.POST("/proposals/:id/convert", handlers.Proposals.Convert)

	admin.DELETE("/reviews/:id", handlers.Reviews.Delete)
	admin.POST("/media", handlers.Media.Upload)

	admin.GET("/users", handlers.Users.List)
	admin.POST("/users", handlers.Users.Create)
	admin.PATCH("/users/:id", handlers.Users.Update)
	admin.DELETE("/users/:id", handlers.Users.Delete)
}
