package model

// Reservation is a booking for a wash slot at a business, stored in
// `lavado_auto_reserva`. A reservation aggregates one or more service
// line items created in the same transaction and carries the lifecycle
// state (pendiente, completado, cancelada, vencida).
//
// Fields:
//  ID                – primary key (id_reserva).
//  Number            – public booking code, format ANW-B1234567 / ANW-E1234567.
//  Date              – service date (fecha, DATE column).
//  Hour              – slot start time as "HH:MM:SS" (hora, TIME column).
//  Status            – lifecycle state (estado).
//  BusinessID        – business serving the wash.
//  UserID            – customer who booked.
//  IndividualPayment – paid directly, not through a subscription.
//  Corporate         – corporate booking (es_reserva_empresarial).
//  VehiclePlate      – plate of the vehicle (nullable).
//  VehicleType       – vehicle kind, "No especificado" unless corporate.
//  AssignedDriver    – driver name, defaults to the customer's full name.
//  CorporateNotes    – free-form notes for corporate bookings.
//  SubscriptionID    – subscription that covered the booking (nullable).
//  PaidToBusiness    – true once the settlement run paid the business.
//  Recovered         – true when a vencida booking was recovered.
//  RecoverySurcharge – amount charged on recovery (25% of the total).
type Reservation struct {
	ID                uint64  // lavado_auto_reserva.id_reserva
	Number            string  // lavado_auto_reserva.numero_reserva
	Date              string  // lavado_auto_reserva.fecha (YYYY-MM-DD)
	Hour              string  // lavado_auto_reserva.hora (HH:MM:SS)
	Status            string  // lavado_auto_reserva.estado
	BusinessID        uint64  // lavado_auto_reserva.empresa_id
	UserID            uint64  // lavado_auto_reserva.usuario_id
	IndividualPayment bool    // lavado_auto_reserva.es_pago_individual
	Corporate         bool    // lavado_auto_reserva.es_reserva_empresarial
	VehiclePlate      *string // lavado_auto_reserva.placa_vehiculo (nullable)
	VehicleType       string  // lavado_auto_reserva.tipo_vehiculo
	AssignedDriver    string  // lavado_auto_reserva.conductor_asignado
	CorporateNotes    string  // lavado_auto_reserva.observaciones_empresariales
	SubscriptionID    *uint64 // lavado_auto_reserva.suscripcion_utilizada_id (nullable)
	PaidToBusiness    bool    // lavado_auto_reserva.pagado_empresa
	Recovered         bool    // lavado_auto_reserva.fue_recuperada
	RecoverySurcharge float64 // lavado_auto_reserva.recargo_recuperacion
}

// ReservationService is a priced line item in
// `lavado_auto_reservaservicio`. The applied price is frozen at booking
// time so later catalog changes never affect existing reservations.
type ReservationService struct {
	ID                uint64  // lavado_auto_reservaservicio.id
	ReservationID     uint64  // lavado_auto_reservaservicio.reserva_id
	ServiceID         uint64  // lavado_auto_reservaservicio.servicio_id
	AppliedPrice      float64 // lavado_auto_reservaservicio.precio_aplicado
	OriginalPrice     float64 // lavado_auto_reservaservicio.precio_original
	FromPlan          bool    // lavado_auto_reservaservicio.es_servicio_plan
	PlanDiscount      float64 // lavado_auto_reservaservicio.descuento_plan_individual
	CorporateDiscount float64 // lavado_auto_reservaservicio.descuento_empresarial
}
