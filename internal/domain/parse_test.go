package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testRegion = "Leste Potiguar"
	testCity   = "Natal"
)

func TestParseNumber(t *testing.T) {
	t.Run("thousands and decimal separators", func(t *testing.T) {
		v := ParseNumber("1.234,56")
		require.NotNil(t, v)
		assert.InDelta(t, 1234.56, *v, 1e-9)
	})

	t.Run("decimal comma", func(t *testing.T) {
		v := ParseNumber("12,5")
		require.NotNil(t, v)
		assert.Equal(t, 12.5, *v)
	})

	t.Run("integer", func(t *testing.T) {
		v := ParseNumber("0")
		require.NotNil(t, v)
		assert.Equal(t, 0.0, *v)
	})

	t.Run("trailing unit", func(t *testing.T) {
		v := ParseNumber(" 3,2 mm")
		require.NotNil(t, v)
		assert.Equal(t, 3.2, *v)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Nil(t, ParseNumber(""))
	})

	t.Run("blank", func(t *testing.T) {
		assert.Nil(t, ParseNumber("   "))
	})

	t.Run("not a number", func(t *testing.T) {
		assert.Nil(t, ParseNumber("abc"))
		assert.Nil(t, ParseNumber("-"))
	})

	t.Run("overflow is not finite", func(t *testing.T) {
		assert.Nil(t, ParseNumber("1e999"))
	})
}

func TestBuildObservations(t *testing.T) {
	table := Table{
		Headers: []string{"Município", "Posto", "Tipo de Posto", "Horas Contabilizadas", "Precipitação (mm)"},
		Rows: [][]string{
			{"Natal", "Natal (EMPARN)", "Convencional", "24", "12,5"},
			{"Parnamirim", "Base Aérea", "Automático", "24", "-"},
		},
	}

	got := BuildObservations(testRegion, table)

	want := []Observation{
		{
			Region:           testRegion,
			Municipality:     ptr("Natal"),
			Station:          ptr("Natal (EMPARN)"),
			StationType:      ptr("Convencional"),
			MeasurementHours: ptr("24"),
			PrecipitationMM:  ptr(12.5),
		},
		{
			Region:           testRegion,
			Municipality:     ptr("Parnamirim"),
			Station:          ptr("Base Aérea"),
			StationType:      ptr("Automático"),
			MeasurementHours: ptr("24"),
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("observations mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildObservations_UnresolvedColumnsAreNil(t *testing.T) {
	table := Table{
		Headers: []string{"Município", "Chuva (mm)"},
		Rows:    [][]string{{testCity, "12,5"}},
	}

	got := BuildObservations(testRegion, table)

	require.Len(t, got, 1)
	assert.Equal(t, testRegion, got[0].Region)
	assert.Equal(t, testCity, *got[0].Municipality)
	assert.Nil(t, got[0].Station)
	assert.Nil(t, got[0].StationType)
	assert.Nil(t, got[0].MeasurementHours)
	require.NotNil(t, got[0].PrecipitationMM)
	assert.Equal(t, 12.5, *got[0].PrecipitationMM)
}

func TestBuildObservations_ColumnOrderFollowsHeaders(t *testing.T) {
	table := Table{
		Headers: []string{"Chuva", "Posto", "Municipio"},
		Rows:    [][]string{{"7,0", "Sítio Novo", "Caicó"}},
	}

	got := BuildObservations(testRegion, table)

	require.Len(t, got, 1)
	assert.Equal(t, "Caicó", *got[0].Municipality)
	assert.Equal(t, "Sítio Novo", *got[0].Station)
	assert.Equal(t, 7.0, *got[0].PrecipitationMM)
}

func TestBuildObservations_DropsEmptyRows(t *testing.T) {
	table := Table{
		Headers: []string{"Município", "Posto", "Tipo", "Precipitação"},
		Rows: [][]string{
			{"", "", "Convencional", ""},
			{},
			{"", "", "", "4,0"},
		},
	}

	got := BuildObservations(testRegion, table)

	require.Len(t, got, 1, "row with only precipitation is kept")
	assert.Equal(t, "", *got[0].Municipality)
	assert.Equal(t, 4.0, *got[0].PrecipitationMM)
}

func TestBuildObservations_ShortRow(t *testing.T) {
	table := Table{
		Headers: []string{"Município", "Posto", "Precipitação"},
		Rows:    [][]string{{testCity}},
	}

	got := BuildObservations(testRegion, table)

	require.Len(t, got, 1)
	assert.Nil(t, got[0].Station)
	assert.Nil(t, got[0].PrecipitationMM)
}

func TestObservation_Key(t *testing.T) {
	obs := Observation{Region: testRegion, Municipality: ptr(testCity)}
	assert.Equal(t, "Leste Potiguar|Natal|", obs.Key())
}

func ptr[T any](v T) *T { return &v }
