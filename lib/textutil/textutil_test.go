package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeLabel(t *testing.T) {
	testCases := []struct {
		in     string
		expect string
	}{
		{in: "Condición", expect: "condicion"},
		{in: "DIRECCIÓN DEL DOMICILIO FISCAL", expect: "direccion del domicilio fiscal"},
		{in: "Razón Social", expect: "razon social"},
		{in: "Ubicacion", expect: "ubicacion"},
		{in: "", expect: ""},
	}

	for _, test := range testCases {
		require.Equal(t, test.expect, NormalizeLabel(test.in))
	}
}

func TestMatchLabel(t *testing.T) {
	require.True(t, MatchLabel("Número de RUC:", "RUC"))
	require.True(t, MatchLabel("Condición del Contribuyente:", "Condición"))
	require.True(t, MatchLabel("Condicion del Contribuyente:", "Condición"))
	require.True(t, MatchLabel("CONDICIÓN", "condicion"))
	require.False(t, MatchLabel("Estado del Contribuyente:", "Condición"))
}

func TestNullable(t *testing.T) {
	require.Nil(t, Nullable(""))
	require.Nil(t, Nullable(" \t\n"))

	value := Nullable("  ACTIVO \n")
	require.NotNil(t, value)
	require.Equal(t, "ACTIVO", *value)
}

func TestCollapseWhitespace(t *testing.T) {
	require.Equal(t, "AV. TEST 123 LIMA", CollapseWhitespace("\n  AV. TEST   123\n\t LIMA  "))
}

func TestDecodeLatin1(t *testing.T) {
	decoded, err := DecodeLatin1([]byte("Condici\xf3n: HABIDO"))
	require.NoError(t, err)
	require.Equal(t, "Condición: HABIDO", decoded)
}
