package businessflow

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verdantia/carbontrace/app/dto"
	"github.com/verdantia/carbontrace/app/services"
	"github.com/verdantia/carbontrace/models"
	"github.com/verdantia/carbontrace/repository"
	testingutil "github.com/verdantia/carbontrace/testing"
	"github.com/verdantia/carbontrace/utils"
	"github.com/xuri/excelize/v2"
)

// entryFlowEnv bundles the seeded rows most data entry tests need
type entryFlowEnv struct {
	flow      DataEntryFlow
	storage   *services.MockStorageService
	extractor *services.MockExtractionService
	org       *models.Organization
	user      *models.User
	category  *models.EmissionCategory
	factor    *models.EmissionFactor
}

func setupEntryFlow(t *testing.T, testDB *testingutil.TestDB) *entryFlowEnv {
	t.Helper()
	require.NoError(t, testDB.ClearAllTables())

	fixtures := testingutil.NewTestFixtures(testDB)
	org, err := fixtures.CreateTestOrganization()
	require.NoError(t, err)
	user, err := fixtures.CreateTestUser(&org.ID, utils.RoleMember)
	require.NoError(t, err)
	category, err := fixtures.CreateTestCategory("electricity", 2)
	require.NoError(t, err)
	factor, err := fixtures.CreateTestFactor(category.ID, "kWh", 0.5, 2024)
	require.NoError(t, err)

	storage := services.NewMockStorageService()
	extractor := services.NewMockExtractionService()

	factorRepo := repository.NewEmissionFactorRepository(testDB.DB)
	flow := NewDataEntryFlow(
		repository.NewDataEntryRepository(testDB.DB),
		repository.NewEmissionCategoryRepository(testDB.DB),
		repository.NewFacilityRepository(testDB.DB),
		repository.NewUserRepository(testDB.DB),
		NewFactorResolver(factorRepo, nil, nil),
		storage,
		extractor,
		testDB.DB,
	)

	return &entryFlowEnv{
		flow:      flow,
		storage:   storage,
		extractor: extractor,
		org:       org,
		user:      user,
		category:  category,
		factor:    factor,
	}
}

func TestCreateEntry(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		ctx := testingutil.CreateTestContext()
		metadata := NewClientMetadata("127.0.0.1", "test-agent")

		t.Run("ComputesEmissionPair", func(t *testing.T) {
			env := setupEntryFlow(t, testDB)

			entry, err := env.flow.CreateEntry(ctx, env.user.ID, &dto.CreateDataEntryRequest{
				CategoryID: env.category.ID,
				EntryDate:  "2024-03-15",
				Quantity:   450,
				Unit:       "kWh",
			}, metadata)
			require.NoError(t, err)

			require.NotNil(t, entry.CO2eKg)
			assert.Equal(t, float64(225), *entry.CO2eKg)
			require.NotNil(t, entry.EmissionFactorID)
			assert.Equal(t, env.factor.ID, *entry.EmissionFactorID)
			assert.Equal(t, utils.VerificationPending, entry.VerificationStatus)
			assert.Equal(t, env.org.ID, entry.OrganizationID)
		})

		t.Run("ResolverMissLeavesPairNull", func(t *testing.T) {
			env := setupEntryFlow(t, testDB)

			entry, err := env.flow.CreateEntry(ctx, env.user.ID, &dto.CreateDataEntryRequest{
				CategoryID: env.category.ID,
				EntryDate:  "2024-03-15",
				Quantity:   120,
				Unit:       "L",
			}, metadata)
			require.NoError(t, err)

			assert.NotZero(t, entry.ID)
			assert.Nil(t, entry.CO2eKg)
			assert.Nil(t, entry.EmissionFactorID)
		})

		t.Run("NegativeQuantityRejected", func(t *testing.T) {
			env := setupEntryFlow(t, testDB)

			_, err := env.flow.CreateEntry(ctx, env.user.ID, &dto.CreateDataEntryRequest{
				CategoryID: env.category.ID,
				EntryDate:  "2024-03-15",
				Quantity:   -1,
				Unit:       "kWh",
			}, metadata)
			assert.True(t, IsInvalidQuantity(err))
		})

		t.Run("MalformedEntryDateRejected", func(t *testing.T) {
			env := setupEntryFlow(t, testDB)

			_, err := env.flow.CreateEntry(ctx, env.user.ID, &dto.CreateDataEntryRequest{
				CategoryID: env.category.ID,
				EntryDate:  "15/03/2024",
				Quantity:   1,
				Unit:       "kWh",
			}, metadata)
			assert.True(t, IsInvalidEntryDate(err))
		})

		t.Run("UnknownCategoryRejected", func(t *testing.T) {
			env := setupEntryFlow(t, testDB)

			_, err := env.flow.CreateEntry(ctx, env.user.ID, &dto.CreateDataEntryRequest{
				CategoryID: env.category.ID + 999,
				EntryDate:  "2024-03-15",
				Quantity:   1,
				Unit:       "kWh",
			}, metadata)
			assert.True(t, IsCategoryNotFound(err))
		})

		t.Run("ForeignFacilityRejected", func(t *testing.T) {
			env := setupEntryFlow(t, testDB)
			fixtures := testingutil.NewTestFixtures(testDB)
			otherOrg, err := fixtures.CreateTestOrganization()
			require.NoError(t, err)
			foreign, err := fixtures.CreateTestFacility(otherOrg.ID)
			require.NoError(t, err)

			_, err = env.flow.CreateEntry(ctx, env.user.ID, &dto.CreateDataEntryRequest{
				FacilityID: &foreign.ID,
				CategoryID: env.category.ID,
				EntryDate:  "2024-03-15",
				Quantity:   1,
				Unit:       "kWh",
			}, metadata)
			assert.True(t, IsFacilityNotFound(err))
		})

		t.Run("UserWithoutOrganizationDenied", func(t *testing.T) {
			env := setupEntryFlow(t, testDB)
			fixtures := testingutil.NewTestFixtures(testDB)
			loner, err := fixtures.CreateTestUser(nil, utils.RoleMember)
			require.NoError(t, err)

			_, err = env.flow.CreateEntry(ctx, loner.ID, &dto.CreateDataEntryRequest{
				CategoryID: env.category.ID,
				EntryDate:  "2024-03-15",
				Quantity:   1,
				Unit:       "kWh",
			}, metadata)
			assert.True(t, IsNoOrganization(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestUpdateEntry(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		ctx := testingutil.CreateTestContext()
		metadata := NewClientMetadata("127.0.0.1", "test-agent")

		createComputed := func(t *testing.T, env *entryFlowEnv) *dto.DataEntryDTO {
			t.Helper()
			entry, err := env.flow.CreateEntry(ctx, env.user.ID, &dto.CreateDataEntryRequest{
				CategoryID: env.category.ID,
				EntryDate:  "2024-03-15",
				Quantity:   100,
				Unit:       "kWh",
			}, metadata)
			require.NoError(t, err)
			require.NotNil(t, entry.CO2eKg)
			return entry
		}

		t.Run("NotesOnlyLeavesEmissionPair", func(t *testing.T) {
			env := setupEntryFlow(t, testDB)
			entry := createComputed(t, env)

			updated, err := env.flow.UpdateEntry(ctx, env.user.ID, entry.ID, &dto.UpdateDataEntryRequest{
				Notes: utils.ToPtr("supplier invoice checked"),
			}, metadata)
			require.NoError(t, err)

			require.NotNil(t, updated.CO2eKg)
			assert.Equal(t, *entry.CO2eKg, *updated.CO2eKg)
			require.NotNil(t, updated.Notes)
			assert.Equal(t, "supplier invoice checked", *updated.Notes)
		})

		t.Run("QuantityChangeRecomputes", func(t *testing.T) {
			env := setupEntryFlow(t, testDB)
			entry := createComputed(t, env)

			updated, err := env.flow.UpdateEntry(ctx, env.user.ID, entry.ID, &dto.UpdateDataEntryRequest{
				Quantity: utils.ToPtr(float64(40)),
			}, metadata)
			require.NoError(t, err)

			require.NotNil(t, updated.CO2eKg)
			assert.Equal(t, float64(20), *updated.CO2eKg)
		})

		t.Run("UnitChangeWithoutFactorClearsPair", func(t *testing.T) {
			env := setupEntryFlow(t, testDB)
			entry := createComputed(t, env)

			updated, err := env.flow.UpdateEntry(ctx, env.user.ID, entry.ID, &dto.UpdateDataEntryRequest{
				Unit: utils.ToPtr("L"),
			}, metadata)
			require.NoError(t, err)

			assert.Nil(t, updated.CO2eKg)
			assert.Nil(t, updated.EmissionFactorID)
		})

		t.Run("EmptyUpdateRejected", func(t *testing.T) {
			env := setupEntryFlow(t, testDB)
			entry := createComputed(t, env)

			_, err := env.flow.UpdateEntry(ctx, env.user.ID, entry.ID, &dto.UpdateDataEntryRequest{}, metadata)
			assert.True(t, IsEmptyUpdate(err))
		})

		t.Run("EntryOfAnotherOrganizationHidden", func(t *testing.T) {
			env := setupEntryFlow(t, testDB)
			entry := createComputed(t, env)

			fixtures := testingutil.NewTestFixtures(testDB)
			otherOrg, err := fixtures.CreateTestOrganization()
			require.NoError(t, err)
			outsider, err := fixtures.CreateTestUser(&otherOrg.ID, utils.RoleMember)
			require.NoError(t, err)

			_, err = env.flow.UpdateEntry(ctx, outsider.ID, entry.ID, &dto.UpdateDataEntryRequest{
				Notes: utils.ToPtr("should not land"),
			}, metadata)
			assert.True(t, IsEntryNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestVerifyAndRejectEntry(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		ctx := testingutil.CreateTestContext()
		metadata := NewClientMetadata("127.0.0.1", "test-agent")

		t.Run("VerifySetsReviewerAndTimestamp", func(t *testing.T) {
			env := setupEntryFlow(t, testDB)
			entry, err := env.flow.CreateEntry(ctx, env.user.ID, &dto.CreateDataEntryRequest{
				CategoryID: env.category.ID,
				EntryDate:  "2024-03-15",
				Quantity:   10,
				Unit:       "kWh",
			}, metadata)
			require.NoError(t, err)

			verified, err := env.flow.VerifyEntry(ctx, env.user.ID, entry.ID, metadata)
			require.NoError(t, err)

			assert.Equal(t, utils.VerificationVerified, verified.VerificationStatus)
			require.NotNil(t, verified.VerifiedByUserID)
			assert.Equal(t, env.user.ID, *verified.VerifiedByUserID)
			assert.NotNil(t, verified.VerifiedAt)
		})

		t.Run("ReVerifyRefreshesReviewer", func(t *testing.T) {
			env := setupEntryFlow(t, testDB)
			fixtures := testingutil.NewTestFixtures(testDB)
			second, err := fixtures.CreateTestUser(&env.org.ID, utils.RoleManager)
			require.NoError(t, err)

			entry, err := env.flow.CreateEntry(ctx, env.user.ID, &dto.CreateDataEntryRequest{
				CategoryID: env.category.ID,
				EntryDate:  "2024-03-15",
				Quantity:   10,
				Unit:       "kWh",
			}, metadata)
			require.NoError(t, err)

			_, err = env.flow.VerifyEntry(ctx, env.user.ID, entry.ID, metadata)
			require.NoError(t, err)

			again, err := env.flow.VerifyEntry(ctx, second.ID, entry.ID, metadata)
			require.NoError(t, err)

			assert.Equal(t, utils.VerificationVerified, again.VerificationStatus)
			require.NotNil(t, again.VerifiedByUserID)
			assert.Equal(t, second.ID, *again.VerifiedByUserID)
		})

		t.Run("RejectKeepsVerifiedFieldsForAudit", func(t *testing.T) {
			env := setupEntryFlow(t, testDB)
			entry, err := env.flow.CreateEntry(ctx, env.user.ID, &dto.CreateDataEntryRequest{
				CategoryID: env.category.ID,
				EntryDate:  "2024-03-15",
				Quantity:   10,
				Unit:       "kWh",
				Notes:      utils.ToPtr("original note"),
			}, metadata)
			require.NoError(t, err)

			_, err = env.flow.VerifyEntry(ctx, env.user.ID, entry.ID, metadata)
			require.NoError(t, err)

			rejected, err := env.flow.RejectEntry(ctx, env.user.ID, entry.ID, &dto.RejectDataEntryRequest{
				Notes: utils.ToPtr("quantity does not match the invoice"),
			}, metadata)
			require.NoError(t, err)

			assert.Equal(t, utils.VerificationActionRequired, rejected.VerificationStatus)
			require.NotNil(t, rejected.VerifiedByUserID)
			assert.Equal(t, env.user.ID, *rejected.VerifiedByUserID)
			assert.NotNil(t, rejected.VerifiedAt)
			require.NotNil(t, rejected.Notes)
			assert.Equal(t, "quantity does not match the invoice", *rejected.Notes)
		})

		t.Run("RejectWithoutNotesLeavesThem", func(t *testing.T) {
			env := setupEntryFlow(t, testDB)
			entry, err := env.flow.CreateEntry(ctx, env.user.ID, &dto.CreateDataEntryRequest{
				CategoryID: env.category.ID,
				EntryDate:  "2024-03-15",
				Quantity:   10,
				Unit:       "kWh",
				Notes:      utils.ToPtr("original note"),
			}, metadata)
			require.NoError(t, err)

			rejected, err := env.flow.RejectEntry(ctx, env.user.ID, entry.ID, &dto.RejectDataEntryRequest{}, metadata)
			require.NoError(t, err)

			assert.Equal(t, utils.VerificationActionRequired, rejected.VerificationStatus)
			require.NotNil(t, rejected.Notes)
			assert.Equal(t, "original note", *rejected.Notes)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestProcessDocument(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		ctx := testingutil.CreateTestContext()
		metadata := NewClientMetadata("127.0.0.1", "test-agent")
		document := []byte("%PDF-1.4 test invoice body")

		t.Run("HighConfidenceGoesPending", func(t *testing.T) {
			env := setupEntryFlow(t, testDB)

			entry, err := env.flow.ProcessDocument(ctx, env.user.ID, "invoice.pdf", document, &dto.ProcessDocumentRequest{
				Category: "electricity",
			}, metadata)
			require.NoError(t, err)

			assert.Equal(t, utils.VerificationPending, entry.VerificationStatus)
			assert.Equal(t, env.category.ID, entry.CategoryID)
			require.NotNil(t, entry.ConfidenceLevel)
			assert.Equal(t, utils.ConfidenceHigh, *entry.ConfidenceLevel)
			require.NotNil(t, entry.DocumentURL)
			require.NotNil(t, entry.DocumentFilename)
			assert.Equal(t, "invoice.pdf", *entry.DocumentFilename)

			// 450 kWh against the seeded 0.5 factor
			require.NotNil(t, entry.CO2eKg)
			assert.Equal(t, float64(225), *entry.CO2eKg)
		})

		t.Run("MediumConfidenceNeedsAction", func(t *testing.T) {
			env := setupEntryFlow(t, testDB)
			env.extractor.Result = &services.ExtractionResult{
				Vendor:      "Dim Scan Co",
				Date:        time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
				Consumption: 80,
				Unit:        "kWh",
				Confidence:  utils.ConfidenceMedium,
			}

			entry, err := env.flow.ProcessDocument(ctx, env.user.ID, "invoice.pdf", document, &dto.ProcessDocumentRequest{
				Category: "electricity",
			}, metadata)
			require.NoError(t, err)

			assert.Equal(t, utils.VerificationActionRequired, entry.VerificationStatus)
			require.NotNil(t, entry.CO2eKg)
			assert.Equal(t, float64(40), *entry.CO2eKg)
		})

		t.Run("LowConfidenceZeroedStillCreated", func(t *testing.T) {
			env := setupEntryFlow(t, testDB)
			env.extractor.Result = &services.ExtractionResult{
				Date:       time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
				Unit:       "kWh",
				Confidence: utils.ConfidenceLow,
			}

			entry, err := env.flow.ProcessDocument(ctx, env.user.ID, "invoice.pdf", document, &dto.ProcessDocumentRequest{
				Category: "electricity",
			}, metadata)
			require.NoError(t, err)

			assert.Equal(t, utils.VerificationActionRequired, entry.VerificationStatus)
			assert.Equal(t, float64(0), entry.Quantity)
		})

		t.Run("CategoryMissAborts", func(t *testing.T) {
			env := setupEntryFlow(t, testDB)

			_, err := env.flow.ProcessDocument(ctx, env.user.ID, "invoice.pdf", document, &dto.ProcessDocumentRequest{
				Category: "interstellar travel",
			}, metadata)
			assert.True(t, IsNoCategoryMatch(err))
		})

		t.Run("EmptyDocumentRejected", func(t *testing.T) {
			env := setupEntryFlow(t, testDB)

			_, err := env.flow.ProcessDocument(ctx, env.user.ID, "invoice.pdf", nil, &dto.ProcessDocumentRequest{
				Category: "electricity",
			}, metadata)
			assert.True(t, IsDocumentRequired(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestDeleteEntry(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		ctx := testingutil.CreateTestContext()
		metadata := NewClientMetadata("127.0.0.1", "test-agent")

		t.Run("RemovesRowAndDocument", func(t *testing.T) {
			env := setupEntryFlow(t, testDB)
			document := []byte("%PDF-1.4 test invoice body")

			entry, err := env.flow.ProcessDocument(ctx, env.user.ID, "invoice.pdf", document, &dto.ProcessDocumentRequest{
				Category: "electricity",
			}, metadata)
			require.NoError(t, err)

			require.NoError(t, env.flow.DeleteEntry(ctx, env.user.ID, entry.ID, metadata))

			_, err = env.flow.GetEntry(ctx, env.user.ID, entry.ID)
			assert.True(t, IsEntryNotFound(err))
			require.Len(t, env.storage.Deleted, 1)
			assert.Contains(t, env.storage.Deleted[0], "organizations/")
		})

		t.Run("StorageFailureIsSwallowed", func(t *testing.T) {
			env := setupEntryFlow(t, testDB)
			document := []byte("%PDF-1.4 test invoice body")

			entry, err := env.flow.ProcessDocument(ctx, env.user.ID, "invoice.pdf", document, &dto.ProcessDocumentRequest{
				Category: "electricity",
			}, metadata)
			require.NoError(t, err)

			env.storage.DeleteErr = services.ErrStorageUnavailable
			require.NoError(t, env.flow.DeleteEntry(ctx, env.user.ID, entry.ID, metadata))

			_, err = env.flow.GetEntry(ctx, env.user.ID, entry.ID)
			assert.True(t, IsEntryNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestListEntriesAndStats(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		ctx := testingutil.CreateTestContext()
		metadata := NewClientMetadata("127.0.0.1", "test-agent")

		seedEntries := func(t *testing.T, env *entryFlowEnv, n int) {
			t.Helper()
			for i := 0; i < n; i++ {
				_, err := env.flow.CreateEntry(ctx, env.user.ID, &dto.CreateDataEntryRequest{
					CategoryID: env.category.ID,
					EntryDate:  "2024-03-15",
					Quantity:   float64(10 * (i + 1)),
					Unit:       "kWh",
				}, metadata)
				require.NoError(t, err)
			}
		}

		t.Run("PaginationDefaults", func(t *testing.T) {
			env := setupEntryFlow(t, testDB)
			seedEntries(t, env, 3)

			list, err := env.flow.ListEntries(ctx, env.user.ID, &dto.ListDataEntriesRequest{})
			require.NoError(t, err)

			assert.Equal(t, int64(3), list.Total)
			assert.Equal(t, 1, list.Page)
			assert.Equal(t, 20, list.PageSize)
			assert.Len(t, list.Entries, 3)
		})

		t.Run("SecondPage", func(t *testing.T) {
			env := setupEntryFlow(t, testDB)
			seedEntries(t, env, 5)

			list, err := env.flow.ListEntries(ctx, env.user.ID, &dto.ListDataEntriesRequest{Page: 2, PageSize: 2})
			require.NoError(t, err)

			assert.Equal(t, int64(5), list.Total)
			assert.Len(t, list.Entries, 2)
		})

		t.Run("StatusFilter", func(t *testing.T) {
			env := setupEntryFlow(t, testDB)
			seedEntries(t, env, 2)

			list, err := env.flow.ListEntries(ctx, env.user.ID, &dto.ListDataEntriesRequest{})
			require.NoError(t, err)
			_, err = env.flow.VerifyEntry(ctx, env.user.ID, list.Entries[0].ID, metadata)
			require.NoError(t, err)

			verified, err := env.flow.ListEntries(ctx, env.user.ID, &dto.ListDataEntriesRequest{
				VerificationStatus: utils.ToPtr(utils.VerificationVerified),
			})
			require.NoError(t, err)
			assert.Equal(t, int64(1), verified.Total)
		})

		t.Run("InvertedDateRangeRejected", func(t *testing.T) {
			env := setupEntryFlow(t, testDB)

			_, err := env.flow.ListEntries(ctx, env.user.ID, &dto.ListDataEntriesRequest{
				DateFrom: utils.ToPtr("2024-06-01"),
				DateTo:   utils.ToPtr("2024-01-01"),
			})
			assert.True(t, IsStartDateAfterEndDate(err))
		})

		t.Run("OversizedPageRejected", func(t *testing.T) {
			env := setupEntryFlow(t, testDB)

			_, err := env.flow.ListEntries(ctx, env.user.ID, &dto.ListDataEntriesRequest{PageSize: 101})
			assert.True(t, IsInvalidPageSize(err))
		})

		t.Run("StatsAggregateYear", func(t *testing.T) {
			env := setupEntryFlow(t, testDB)
			seedEntries(t, env, 2)

			list, err := env.flow.ListEntries(ctx, env.user.ID, &dto.ListDataEntriesRequest{})
			require.NoError(t, err)
			_, err = env.flow.VerifyEntry(ctx, env.user.ID, list.Entries[0].ID, metadata)
			require.NoError(t, err)

			stats, err := env.flow.Stats(ctx, env.user.ID, 2024)
			require.NoError(t, err)

			assert.Equal(t, 2024, stats.Year)
			assert.Equal(t, int64(2), stats.TotalEntries)
			assert.Equal(t, float64(15), stats.TotalEmissionsKg) // (10+20) * 0.5
			assert.Equal(t, int64(1), stats.VerifiedEntries)
		})

		t.Run("StatsOtherYearEmpty", func(t *testing.T) {
			env := setupEntryFlow(t, testDB)
			seedEntries(t, env, 2)

			stats, err := env.flow.Stats(ctx, env.user.ID, 2019)
			require.NoError(t, err)
			assert.Equal(t, int64(0), stats.TotalEntries)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestExportXLSX(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		ctx := testingutil.CreateTestContext()
		metadata := NewClientMetadata("127.0.0.1", "test-agent")

		t.Run("WritesWorkbook", func(t *testing.T) {
			env := setupEntryFlow(t, testDB)
			_, err := env.flow.CreateEntry(ctx, env.user.ID, &dto.CreateDataEntryRequest{
				CategoryID: env.category.ID,
				EntryDate:  "2024-03-15",
				Quantity:   450,
				Unit:       "kWh",
			}, metadata)
			require.NoError(t, err)

			filename, data, err := env.flow.ExportXLSX(ctx, env.user.ID, &dto.ListDataEntriesRequest{})
			require.NoError(t, err)
			assert.Contains(t, filename, "data_entries_")
			assert.Contains(t, filename, ".xlsx")
			require.NotEmpty(t, data)

			xl, err := excelize.OpenReader(bytes.NewReader(data))
			require.NoError(t, err)
			defer xl.Close()

			header, err := xl.GetCellValue("Data Entries", "A1")
			require.NoError(t, err)
			assert.Equal(t, "id", header)

			unit, err := xl.GetCellValue("Data Entries", "F2")
			require.NoError(t, err)
			assert.Equal(t, "kWh", unit)
		})

		return nil
	})
	require.NoError(t, err)
}
