package delivery

import (
	"context"
	"net/http"
	"time"

	"storefront/internal/checkout"
	"storefront/internal/domain"
	"storefront/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type RouterDeps struct {
	APIKey string

	Auth       usecase.AuthUseCase
	Products   usecase.ProductUseCase
	Categories usecase.CategoryUseCase
	Orders     usecase.OrderUseCase
	Profiles   usecase.ProfileUseCase
	Cart       domain.CartRepository
	Checkout   *checkout.Service
	DB         Pinger

	Log *logrus.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), RequestLogger(deps.Log))

	router.GET("/health", healthHandler(deps.DB))

	public := router.Group("/", RequireAPIKey(deps.APIKey, deps.Log))
	session := public.Group("/", RequireSession(deps.Auth, deps.Log))
	admin := session.Group("/admin", RequireAdmin(deps.Log))

	NewAuthHandler(deps.Auth, deps.Log).RegisterRoutes(public, session)
	NewProductHandler(deps.Products, deps.Log).RegisterRoutes(public, admin)
	NewCategoryHandler(deps.Categories, deps.Log).RegisterRoutes(public, admin)
	NewCartHandler(deps.Cart, deps.Checkout, deps.Log).RegisterRoutes(session)
	NewOrderHandler(deps.Orders, deps.Log).RegisterRoutes(session, admin)
	NewUserHandler(deps.Profiles, deps.Auth, deps.Log).RegisterRoutes(session, admin)

	return router
}

func healthHandler(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				ErrorResponse(c, http.StatusServiceUnavailable, "Database unavailable")
				return
			}
		}
		SuccessResponse(c, http.StatusOK, "OK", nil)
	}
}
