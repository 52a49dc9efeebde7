package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyServiceCategories(t *testing.T) {
	cases := []struct {
		name, desc, want string
	}{
		{"Lavado Básico", "", "basico"},
		{"Lavado Express", "", "basico"},
		{"Lavado Premium", "", "premium"},
		{"Lavado Completo", "", "premium"},
		{"Detallado Full", "", "detallado"},
		{"Limpieza Interior", "", "interior"},
		{"Lavado Exterior", "", "exterior"},
		{"Encerado Profesional", "", "encerado"},
		{"Lavado de Motor", "", "motor"},
		{"Algo Raro", "", "general"},
	}
	for _, c := range cases {
		cat, _ := ClassifyService(c.name, c.desc)
		assert.Equal(t, c.want, cat, c.name)
	}
}

func TestClassifyServiceVehicleTypes(t *testing.T) {
	_, vt := ClassifyService("Lavado de Moto", "")
	assert.Equal(t, []string{"moto"}, vt)

	_, vt = ClassifyService("Lavado Pesado", "para camiones")
	assert.Equal(t, []string{"camion", "van"}, vt)

	_, vt = ClassifyService("Lavado Básico", "")
	assert.Len(t, vt, 7)
	assert.Contains(t, vt, "sedan")
}
