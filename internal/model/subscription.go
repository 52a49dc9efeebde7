package model

import "time"

// Plan is a monthly subscription plan from `lavado_auto_plan`. A plan
// either caps the number of covered washes per month or, when
// MonthlyServices is zero, is unlimited.
type Plan struct {
	ID              uint64    // lavado_auto_plan.id_plan
	Name            string    // lavado_auto_plan.nombre
	Type            string    // lavado_auto_plan.tipo
	Description     string    // lavado_auto_plan.descripcion
	MonthlyPrice    float64   // lavado_auto_plan.precio_mensual
	MonthlyServices int       // lavado_auto_plan.cantidad_servicios_mes (0 = unlimited)
	Active          bool      // lavado_auto_plan.activo
	SeatWash        bool      // lavado_auto_plan.incluye_lavado_asientos
	Vacuum          bool      // lavado_auto_plan.incluye_aspirado
	ExteriorWash    bool      // lavado_auto_plan.incluye_lavado_exterior
	InteriorWash    bool      // lavado_auto_plan.incluye_lavado_interior_humedo
	Waxing          bool      // lavado_auto_plan.incluye_encerado
	FullDetailing   bool      // lavado_auto_plan.incluye_detallado_completo
	CreatedAt       time.Time // lavado_auto_plan.fecha_creacion
}

// PlanService links a plan to a catalog service with a percentage
// discount, stored in `lavado_auto_planservicio`.
type PlanService struct {
	PlanID    uint64  // lavado_auto_planservicio.plan_id
	ServiceID uint64  // lavado_auto_planservicio.servicio_id
	Discount  float64 // lavado_auto_planservicio.porcentaje_descuento
}

// Subscription is a user's plan membership in
// `lavado_auto_suscripcionusuario`. The monthly usage counter is reset
// lazily: whenever a read or booking touches the row and 30 days have
// elapsed since LastCounterReset, the counter goes back to zero.
type Subscription struct {
	ID               uint64    // lavado_auto_suscripcionusuario.id_suscripcion
	UserID           uint64    // lavado_auto_suscripcionusuario.usuario_id
	PlanID           uint64    // lavado_auto_suscripcionusuario.plan_id
	StartDate        time.Time // lavado_auto_suscripcionusuario.fecha_inicio
	EndDate          time.Time // lavado_auto_suscripcionusuario.fecha_fin
	Status           string    // lavado_auto_suscripcionusuario.estado (activa|cancelada|vencida)
	UsedThisMonth    int       // lavado_auto_suscripcionusuario.servicios_utilizados_mes
	LastCounterReset time.Time // lavado_auto_suscripcionusuario.ultimo_reinicio_contador
	AutoRenew        bool      // lavado_auto_suscripcionusuario.auto_renovar
}
