package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataEntryEmissionPair(t *testing.T) {
	t.Run("SetEmissionWritesBothColumns", func(t *testing.T) {
		entry := &DataEntry{}
		entry.SetEmission(&Emission{FactorID: 7, CO2eKg: 104.85})

		require.NotNil(t, entry.EmissionFactorID)
		require.NotNil(t, entry.CO2eKg)
		assert.Equal(t, uint(7), *entry.EmissionFactorID)
		assert.Equal(t, 104.85, *entry.CO2eKg)
	})

	t.Run("SetEmissionNilClearsBothColumns", func(t *testing.T) {
		entry := &DataEntry{}
		entry.SetEmission(&Emission{FactorID: 7, CO2eKg: 104.85})
		entry.SetEmission(nil)

		assert.Nil(t, entry.EmissionFactorID)
		assert.Nil(t, entry.CO2eKg)
	})

	t.Run("ClearEmission", func(t *testing.T) {
		entry := &DataEntry{}
		entry.SetEmission(&Emission{FactorID: 3, CO2eKg: 1})
		entry.ClearEmission()

		assert.Nil(t, entry.EmissionFactorID)
		assert.Nil(t, entry.CO2eKg)
	})

	t.Run("EmissionValueRoundTrip", func(t *testing.T) {
		entry := &DataEntry{}
		assert.Nil(t, entry.EmissionValue())

		entry.SetEmission(&Emission{FactorID: 11, CO2eKg: 225})
		value := entry.EmissionValue()
		require.NotNil(t, value)
		assert.Equal(t, uint(11), value.FactorID)
		assert.Equal(t, float64(225), value.CO2eKg)
	})

	t.Run("EmissionValueNilWhenHalfSet", func(t *testing.T) {
		factorID := uint(5)
		entry := &DataEntry{EmissionFactorID: &factorID}
		assert.Nil(t, entry.EmissionValue())
	})

	t.Run("TableName", func(t *testing.T) {
		assert.Equal(t, "data_entries", DataEntry{}.TableName())
	})
}

func TestEmissionFactorCoversDate(t *testing.T) {
	asOf := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	t.Run("OpenEndedCoversEverything", func(t *testing.T) {
		factor := &EmissionFactor{}
		assert.True(t, factor.CoversDate(asOf))
	})

	t.Run("ValidUntilOnTheDateStillCovers", func(t *testing.T) {
		factor := &EmissionFactor{ValidUntil: &asOf}
		assert.True(t, factor.CoversDate(asOf))
	})

	t.Run("ExpiredBeforeDate", func(t *testing.T) {
		until := asOf.AddDate(0, 0, -1)
		factor := &EmissionFactor{ValidUntil: &until}
		assert.False(t, factor.CoversDate(asOf))
	})
}
