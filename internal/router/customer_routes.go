package router

import "github.com/labstack/echo/v4"

func registerReservations(api *echo.Group, d Deps, cached echo.MiddlewareFunc) {
	// Catalog and availability are public so guests can browse before
	// registering. Only the service catalog is cached; availability
	// changes with every booking.
	pub := api.Group("/reservas")
	pub.GET("/servicios", d.Reservations.Catalog, cached)
	pub.GET("/empresas-por-servicios", d.Reservations.BusinessesByServices)
	pub.GET("/horarios-disponibles", d.Reservations.AvailableSlots)

	g := api.Group("/reservas")
	customerOnly(g, d.Cfg.JWTSecret)
	g.POST("/crear", d.Reservations.Create)
	g.GET("/usuario", d.Reservations.ListMine)
	g.PUT("/cancelar/:id", d.Reservations.Cancel)
	g.PUT("/reagendar/:id", d.Reservations.Reschedule)
	g.GET("/recargo-recuperacion/:id", d.Reservations.RecoverySurcharge)
	g.PUT("/recuperar-vencida/:id", d.Reservations.RecoverExpired)
	g.POST("/verificar-qr", d.Reservations.VerifyQR)
	g.GET("/por-numero/:numero", d.Reservations.GetByNumber)
}

func registerPlans(api *echo.Group, d Deps, cached echo.MiddlewareFunc) {
	pub := api.Group("/planes")
	pub.GET("", d.Plans.Plans, cached)
	pub.GET("/:id", d.Plans.PlanDetail, cached)

	g := api.Group("/planes")
	customerOnly(g, d.Cfg.JWTSecret)
	g.POST("/suscribirse", d.Plans.Subscribe)
	g.PUT("/cancelar-suscripcion/:id", d.Plans.Cancel)
	g.GET("/mi-suscripcion/activa", d.Plans.Active)
	g.GET("/mi-suscripcion/historial", d.Plans.History)
	g.GET("/verificar-suscripcion", d.Plans.Verify)
}

func registerRatings(api *echo.Group, d Deps) {
	g := api.Group("/calificaciones")
	customerOnly(g, d.Cfg.JWTSecret)
	g.POST("/crear", d.Ratings.Create)
	g.GET("/reserva/:id", d.Ratings.ByReservation)
}
