// Package router wires the HTTP surface: which handler serves each
// path and which middleware guards each group.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/autonew/carwash-booking/internal/config"
	"github.com/autonew/carwash-booking/internal/handler"
	"github.com/autonew/carwash-booking/internal/middleware"
	"github.com/autonew/carwash-booking/internal/model"
)

// Deps collects everything route registration needs. main builds one
// and hands it over; the router never constructs handlers itself.
type Deps struct {
	Cfg config.Config
	RDB *redis.Client

	Auth         *handler.AuthHandler
	Business     *handler.BusinessHandler
	BusinessRes  *handler.BusinessReservationHandler
	Reservations *handler.ReservationHandler
	Plans        *handler.SubscriptionHandler
	Payouts      *handler.PayoutHandler
	Ratings      *handler.RatingHandler
}

// Register mounts every route under /api. Login endpoints get the
// Redis token bucket, public catalog reads get the response cache, and
// the authenticated groups get JWT plus role checks.
func Register(e *echo.Echo, d Deps) {
	e.Use(middleware.RequestID())

	api := e.Group("/api")
	api.GET("/health", handler.Health)

	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), d.RDB)
	cached := middleware.NewRedisCache(config.LoadCacheConfig(), d.RDB)

	registerAuth(api, d, limiter)
	registerReservations(api, d, cached)
	registerPlans(api, d, cached)
	registerRatings(api, d)
	registerBusiness(api, d, limiter)
}

// customerOnly guards a group with JWT auth and the cliente role.
func customerOnly(g *echo.Group, secret string) {
	g.Use(middleware.JWTAuth(secret))
	g.Use(middleware.RequireRole(model.RoleCliente))
}

// businessOnly guards a group with JWT auth and the empresa role.
func businessOnly(g *echo.Group, secret string) {
	g.Use(middleware.JWTAuth(secret))
	g.Use(middleware.RequireRole(model.RoleEmpresa))
}

func registerAuth(api *echo.Group, d Deps, limiter echo.MiddlewareFunc) {
	g := api.Group("/auth")
	g.POST("/registro", d.Auth.Register)
	g.POST("/login", d.Auth.Login, limiter)

	me := api.Group("/auth")
	customerOnly(me, d.Cfg.JWTSecret)
	me.GET("/perfil", d.Auth.Profile)
	me.PUT("/perfil", d.Auth.UpdateProfile)
	me.PUT("/cambiar-password", d.Auth.ChangePassword)
	me.POST("/foto", d.Auth.UploadPhoto)
	me.DELETE("/foto", d.Auth.DeletePhoto)
}
