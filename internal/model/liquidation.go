package model

import "time"

// SettlementPeriod is a payout window for a business, stored in
// `lavado_auto_periodoliquidacion`. Periods move through estados
// activo -> cerrado -> pagado; this service only reads them, the
// settlement job that creates and closes periods runs elsewhere.
//
// Totals: Gross is the sum of applied prices of the period's
// reservations, Discounts the plan discounts absorbed by the platform,
// Commission the platform cut, and Net what the business receives.
type SettlementPeriod struct {
	ID             uint64     // lavado_auto_periodoliquidacion.id_periodo
	BusinessID     uint64     // lavado_auto_periodoliquidacion.empresa_id
	StartDate      time.Time  // lavado_auto_periodoliquidacion.fecha_inicio
	EndDate        time.Time  // lavado_auto_periodoliquidacion.fecha_fin
	ClosedAt       *time.Time // lavado_auto_periodoliquidacion.fecha_cierre (nullable)
	PaidAt         *time.Time // lavado_auto_periodoliquidacion.fecha_pago (nullable)
	Gross          float64    // lavado_auto_periodoliquidacion.total_bruto
	Discounts      float64    // lavado_auto_periodoliquidacion.total_descuentos
	CommissionRate float64    // lavado_auto_periodoliquidacion.comision_autonew
	Commission     float64    // lavado_auto_periodoliquidacion.total_comision
	Net            float64    // lavado_auto_periodoliquidacion.total_neto
	Status         string     // lavado_auto_periodoliquidacion.estado (activo|cerrado|pagado)
	Reservations   int        // lavado_auto_periodoliquidacion.cantidad_reservas
	PaymentMethod  *string    // lavado_auto_periodoliquidacion.metodo_pago (nullable)
	PaymentRef     *string    // lavado_auto_periodoliquidacion.referencia_pago (nullable)
	Notes          *string    // lavado_auto_periodoliquidacion.observaciones (nullable)
}

// SettlementDetail is one settled reservation inside a period, stored
// in `lavado_auto_detalleliquidacion`.
type SettlementDetail struct {
	ID             uint64    // lavado_auto_detalleliquidacion.id
	PeriodID       uint64    // lavado_auto_detalleliquidacion.periodo_id
	ReservationID  uint64    // lavado_auto_detalleliquidacion.reserva_id
	Gross          float64   // lavado_auto_detalleliquidacion.valor_bruto
	Discount       float64   // lavado_auto_detalleliquidacion.valor_descuento
	Net            float64   // lavado_auto_detalleliquidacion.valor_neto
	CommissionRate float64   // lavado_auto_detalleliquidacion.comision_aplicada
	Commission     float64   // lavado_auto_detalleliquidacion.valor_comision
	BusinessPayout float64   // lavado_auto_detalleliquidacion.valor_final_empresa
	ServiceDate    time.Time // lavado_auto_detalleliquidacion.fecha_servicio
	DiscountKind   *string   // lavado_auto_detalleliquidacion.tipo_descuento (nullable)
}
