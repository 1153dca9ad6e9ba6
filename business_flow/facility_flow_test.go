package businessflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verdantia/carbontrace/app/dto"
	"github.com/verdantia/carbontrace/repository"
	testingutil "github.com/verdantia/carbontrace/testing"
	"github.com/verdantia/carbontrace/utils"
)

func TestDetectGridRegion(t *testing.T) {
	tests := []struct {
		name      string
		latitude  float64
		longitude float64
		expected  string
	}{
		{"LosAngeles", 34.0549, -118.2426, "CAISO"},
		{"Houston", 29.7601, -95.3701, "ERCOT"},
		{"Chicago", 41.8781, -87.6298, "PJM"},
		{"Madrid", 40.4168, -3.7038, "ENTSO-E"},
		{"Berlin", 52.52, 13.405, "ENTSO-E"},
		{"SouthAtlantic", -30.0, -20.0, ""},
		{"Tokyo", 35.6764, 139.6500, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectGridRegion(tt.latitude, tt.longitude))
		})
	}
}

func TestGeocode(t *testing.T) {
	flow := NewFacilityFlow(nil, nil, nil)
	ctx := testingutil.CreateTestContext()

	t.Run("KnownCity", func(t *testing.T) {
		result, err := flow.Geocode(ctx, &dto.GeocodeRequest{City: "Madrid"})
		require.NoError(t, err)

		assert.Equal(t, "Madrid", result.City)
		assert.Equal(t, "Spain", result.Country)
		assert.Equal(t, 40.4168, result.Latitude)
		assert.Equal(t, "REE", result.GridRegion)
	})

	t.Run("LookupIsCaseInsensitive", func(t *testing.T) {
		result, err := flow.Geocode(ctx, &dto.GeocodeRequest{City: "  nEw YoRk  "})
		require.NoError(t, err)
		assert.Equal(t, "NYISO", result.GridRegion)
	})

	t.Run("CountryConstraintMatches", func(t *testing.T) {
		result, err := flow.Geocode(ctx, &dto.GeocodeRequest{
			City:    "Paris",
			Country: utils.ToPtr("france"),
		})
		require.NoError(t, err)
		assert.Equal(t, "RTE", result.GridRegion)
	})

	t.Run("CountryMismatchIsAMiss", func(t *testing.T) {
		_, err := flow.Geocode(ctx, &dto.GeocodeRequest{
			City:    "Paris",
			Country: utils.ToPtr("United States"),
		})
		assert.True(t, IsCityNotFound(err))
	})

	t.Run("UnknownCity", func(t *testing.T) {
		_, err := flow.Geocode(ctx, &dto.GeocodeRequest{City: "Atlantis"})
		assert.True(t, IsCityNotFound(err))
	})
}

func TestFacilityFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		ctx := testingutil.CreateTestContext()
		metadata := NewClientMetadata("127.0.0.1", "test-agent")
		fixtures := testingutil.NewTestFixtures(testDB)

		newFlow := func() FacilityFlow {
			return NewFacilityFlow(
				repository.NewFacilityRepository(testDB.DB),
				repository.NewUserRepository(testDB.DB),
				testDB.DB,
			)
		}

		t.Run("CreateAutoDetectsGridRegion", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())
			org, err := fixtures.CreateTestOrganization()
			require.NoError(t, err)
			admin, err := fixtures.CreateTestUser(&org.ID, utils.RoleAdmin)
			require.NoError(t, err)

			flow := newFlow()
			facility, err := flow.CreateFacility(ctx, admin.ID, &dto.CreateFacilityRequest{
				Name:      "West Coast Warehouse",
				Latitude:  utils.ToPtr(34.0549),
				Longitude: utils.ToPtr(-118.2426),
			}, metadata)
			require.NoError(t, err)

			require.NotNil(t, facility.GridRegion)
			assert.Equal(t, "CAISO", *facility.GridRegion)
		})

		t.Run("ExplicitGridRegionWins", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())
			org, err := fixtures.CreateTestOrganization()
			require.NoError(t, err)
			admin, err := fixtures.CreateTestUser(&org.ID, utils.RoleAdmin)
			require.NoError(t, err)

			flow := newFlow()
			facility, err := flow.CreateFacility(ctx, admin.ID, &dto.CreateFacilityRequest{
				Name:       "Custom Region Plant",
				Latitude:   utils.ToPtr(34.0549),
				Longitude:  utils.ToPtr(-118.2426),
				GridRegion: utils.ToPtr("WECC"),
			}, metadata)
			require.NoError(t, err)

			require.NotNil(t, facility.GridRegion)
			assert.Equal(t, "WECC", *facility.GridRegion)
		})

		t.Run("MemberCannotCreate", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())
			org, err := fixtures.CreateTestOrganization()
			require.NoError(t, err)
			member, err := fixtures.CreateTestUser(&org.ID, utils.RoleMember)
			require.NoError(t, err)

			flow := newFlow()
			_, err = flow.CreateFacility(ctx, member.ID, &dto.CreateFacilityRequest{
				Name: "Not Allowed",
			}, metadata)
			assert.True(t, IsInsufficientRole(err))
		})

		t.Run("DeleteSoftDeletes", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())
			org, err := fixtures.CreateTestOrganization()
			require.NoError(t, err)
			admin, err := fixtures.CreateTestUser(&org.ID, utils.RoleAdmin)
			require.NoError(t, err)
			facility, err := fixtures.CreateTestFacility(org.ID)
			require.NoError(t, err)

			flow := newFlow()
			require.NoError(t, flow.DeleteFacility(ctx, admin.ID, facility.ID, metadata))

			_, err = flow.GetFacility(ctx, admin.ID, facility.ID)
			assert.True(t, IsFacilityNotFound(err))

			list, err := flow.ListFacilities(ctx, admin.ID)
			require.NoError(t, err)
			assert.Equal(t, 0, list.Total)
		})

		t.Run("FacilityOfAnotherOrganizationHidden", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())
			org, err := fixtures.CreateTestOrganization()
			require.NoError(t, err)
			admin, err := fixtures.CreateTestUser(&org.ID, utils.RoleAdmin)
			require.NoError(t, err)

			otherOrg, err := fixtures.CreateTestOrganization()
			require.NoError(t, err)
			foreign, err := fixtures.CreateTestFacility(otherOrg.ID)
			require.NoError(t, err)

			flow := newFlow()
			_, err = flow.GetFacility(ctx, admin.ID, foreign.ID)
			assert.True(t, IsFacilityNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}
