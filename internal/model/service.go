package model

// Service is a wash service from the `lavado_auto_servicio` catalog.
// Businesses offer a subset of the catalog through the
// `lavado_auto_empresaservicio` join table.
type Service struct {
	ID          uint64  // lavado_auto_servicio.id_servicio
	Name        string  // lavado_auto_servicio.nombre_servicio
	Description string  // lavado_auto_servicio.descripcion
	Price       float64 // lavado_auto_servicio.precio
}
