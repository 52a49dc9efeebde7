package router

import "github.com/labstack/echo/v4"

func registerBusiness(api *echo.Group, d Deps, limiter echo.MiddlewareFunc) {
	api.POST("/empresa/login", d.Business.Login, limiter)

	g := api.Group("/empresa")
	businessOnly(g, d.Cfg.JWTSecret)

	g.GET("/perfil", d.Business.Profile)
	g.PUT("/perfil", d.Business.UpdateProfile)
	g.PUT("/datos-bancarios", d.Business.UpdateBanking)
	g.PUT("/cambiar-password", d.Business.ChangePassword)
	g.POST("/foto", d.Business.UploadPhoto)
	g.DELETE("/foto", d.Business.DeletePhoto)
	g.GET("/servicios", d.Business.ListServices)
	g.GET("/servicios-completos", d.Business.FullServices)
	g.POST("/servicios/solicitar", d.Business.RequestService)
	g.DELETE("/servicios/solicitud/:id", d.Business.CancelServiceRequest)

	g.GET("/dashboard", d.BusinessRes.Dashboard)
	g.GET("/reservas", d.BusinessRes.List)
	g.PUT("/reservas/:id/estado", d.BusinessRes.UpdateStatus)
	g.GET("/reservas/:id/qr", d.BusinessRes.QRPayload)

	p := g.Group("/pagos")
	p.GET("/resumen", d.Payouts.Summary)
	p.GET("/periodos", d.Payouts.Periods)
	p.GET("/periodos/:id", d.Payouts.PeriodDetail)
	p.GET("/reservas-pendientes", d.Payouts.PendingReservations)
	p.GET("/reservas-pagadas", d.Payouts.PaidReservations)
	p.GET("/mis-reservas", d.Payouts.MyReservations)
}
