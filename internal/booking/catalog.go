package booking

import "strings"

// allVehicleTypes is the default vehicle compatibility of a service.
var allVehicleTypes = []string{"sedan", "suv", "camioneta", "hatchback", "van", "camion", "moto"}

// ClassifyService derives a category and the compatible vehicle types
// of a catalog service from its name and description. The legacy data
// has no category column, so classification is keyword based.
func ClassifyService(name, description string) (category string, vehicleTypes []string) {
	n := strings.ToLower(name)
	d := strings.ToLower(description)

	category = "general"
	switch {
	case strings.Contains(n, "básico") || strings.Contains(n, "basico") || strings.Contains(n, "express"):
		category = "basico"
	case strings.Contains(n, "premium") || strings.Contains(n, "completo"):
		category = "premium"
	case strings.Contains(n, "detallado") || strings.Contains(n, "full"):
		category = "detallado"
	case strings.Contains(n, "interior"):
		category = "interior"
	case strings.Contains(n, "exterior"):
		category = "exterior"
	case strings.Contains(n, "encerado") || strings.Contains(n, "cera"):
		category = "encerado"
	case strings.Contains(n, "motor"):
		category = "motor"
	}

	switch {
	case strings.Contains(n, "moto") || strings.Contains(d, "moto"):
		vehicleTypes = []string{"moto"}
	case strings.Contains(n, "camion") || strings.Contains(d, "camion") || strings.Contains(n, "pesado"):
		vehicleTypes = []string{"camion", "van"}
	default:
		vehicleTypes = make([]string, len(allVehicleTypes))
		copy(vehicleTypes, allVehicleTypes)
	}
	return category, vehicleTypes
}
