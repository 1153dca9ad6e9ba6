package businessflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verdantia/carbontrace/models"
	"github.com/verdantia/carbontrace/repository"
	testingutil "github.com/verdantia/carbontrace/testing"
	"github.com/verdantia/carbontrace/utils"
)

func TestCompute(t *testing.T) {
	t.Run("MultipliesQuantityByFactor", func(t *testing.T) {
		factor := &models.EmissionFactor{ID: 3, CO2ePerUnit: 0.5}
		emission := Compute(450, factor)

		require.NotNil(t, emission)
		assert.Equal(t, uint(3), emission.FactorID)
		assert.Equal(t, float64(225), emission.CO2eKg)
	})

	t.Run("NilFactorYieldsNil", func(t *testing.T) {
		assert.Nil(t, Compute(450, nil))
	})

	t.Run("ZeroQuantity", func(t *testing.T) {
		factor := &models.EmissionFactor{ID: 1, CO2ePerUnit: 0.233}
		emission := Compute(0, factor)

		require.NotNil(t, emission)
		assert.Equal(t, float64(0), emission.CO2eKg)
	})

	t.Run("NoRounding", func(t *testing.T) {
		factor := &models.EmissionFactor{ID: 2, CO2ePerUnit: 0.233}
		emission := Compute(3, factor)

		require.NotNil(t, emission)
		assert.Equal(t, 3*0.233, emission.CO2eKg)
	})
}

func TestFactorResolver(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		factorRepo := repository.NewEmissionFactorRepository(testDB.DB)
		resolver := NewFactorResolver(factorRepo, nil, nil)
		ctx := testingutil.CreateTestContext()
		asOf := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

		t.Run("NewestYearWins", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())
			category, err := fixtures.CreateTestCategory("electricity", 2)
			require.NoError(t, err)

			_, err = fixtures.CreateTestFactor(category.ID, "kWh", 0.3, 2023)
			require.NoError(t, err)
			newer, err := fixtures.CreateTestFactor(category.ID, "kWh", 0.25, 2024)
			require.NoError(t, err)

			factor, err := resolver.Resolve(ctx, category.ID, "kWh", asOf)
			require.NoError(t, err)
			require.NotNil(t, factor)
			assert.Equal(t, newer.ID, factor.ID)
			assert.Equal(t, 0.25, factor.CO2ePerUnit)
		})

		t.Run("CreatedAtBreaksTiesWithinYear", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())
			category, err := fixtures.CreateTestCategory("electricity", 2)
			require.NoError(t, err)

			older := &models.EmissionFactor{
				CategoryID:  category.ID,
				Unit:        "kWh",
				CO2ePerUnit: 0.3,
				Year:        2024,
				IsActive:    true,
				Source:      "test",
				CreatedAt:   asOf.Add(-48 * time.Hour),
			}
			require.NoError(t, testDB.DB.Create(older).Error)

			newer := &models.EmissionFactor{
				CategoryID:  category.ID,
				Unit:        "kWh",
				CO2ePerUnit: 0.28,
				Year:        2024,
				IsActive:    true,
				Source:      "test",
				CreatedAt:   asOf.Add(-24 * time.Hour),
			}
			require.NoError(t, testDB.DB.Create(newer).Error)

			factor, err := resolver.Resolve(ctx, category.ID, "kWh", asOf)
			require.NoError(t, err)
			require.NotNil(t, factor)
			assert.Equal(t, newer.ID, factor.ID)
		})

		t.Run("UnitMatchIsCaseInsensitive", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())
			category, err := fixtures.CreateTestCategory("electricity", 2)
			require.NoError(t, err)
			created, err := fixtures.CreateTestFactor(category.ID, "kWh", 0.25, 2024)
			require.NoError(t, err)

			factor, err := resolver.Resolve(ctx, category.ID, "KWH", asOf)
			require.NoError(t, err)
			require.NotNil(t, factor)
			assert.Equal(t, created.ID, factor.ID)
		})

		t.Run("ExpiredFactorExcluded", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())
			category, err := fixtures.CreateTestCategory("electricity", 2)
			require.NoError(t, err)

			until := asOf.AddDate(0, 0, -1)
			expired := &models.EmissionFactor{
				CategoryID:  category.ID,
				Unit:        "kWh",
				CO2ePerUnit: 0.3,
				Year:        2024,
				ValidUntil:  &until,
				IsActive:    true,
				Source:      "test",
			}
			require.NoError(t, testDB.DB.Create(expired).Error)

			factor, err := resolver.Resolve(ctx, category.ID, "kWh", asOf)
			require.NoError(t, err)
			assert.Nil(t, factor)
		})

		t.Run("InactiveFactorExcluded", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())
			category, err := fixtures.CreateTestCategory("electricity", 2)
			require.NoError(t, err)

			inactive := &models.EmissionFactor{
				CategoryID:  category.ID,
				Unit:        "kWh",
				CO2ePerUnit: 0.3,
				Year:        2024,
				IsActive:    false,
				Source:      "test",
			}
			require.NoError(t, testDB.DB.Create(inactive).Error)

			factor, err := resolver.Resolve(ctx, category.ID, "kWh", asOf)
			require.NoError(t, err)
			assert.Nil(t, factor)
		})

		t.Run("MissIsNotAnError", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())
			category, err := fixtures.CreateTestCategory("electricity", 2)
			require.NoError(t, err)

			factor, err := resolver.Resolve(ctx, category.ID, "L", asOf)
			require.NoError(t, err)
			assert.Nil(t, factor)
		})

		t.Run("ZeroAsOfDefaultsToToday", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())
			category, err := fixtures.CreateTestCategory("electricity", 2)
			require.NoError(t, err)
			created, err := fixtures.CreateTestFactor(category.ID, "kWh", 0.25, utils.UTCNow().Year())
			require.NoError(t, err)

			factor, err := resolver.Resolve(ctx, category.ID, "kWh", time.Time{})
			require.NoError(t, err)
			require.NotNil(t, factor)
			assert.Equal(t, created.ID, factor.ID)
		})

		return nil
	})
	require.NoError(t, err)
}
