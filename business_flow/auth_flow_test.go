package businessflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verdantia/carbontrace/app/dto"
	"github.com/verdantia/carbontrace/app/services"
	"github.com/verdantia/carbontrace/config"
	"github.com/verdantia/carbontrace/repository"
	testingutil "github.com/verdantia/carbontrace/testing"
	"github.com/verdantia/carbontrace/utils"
	"golang.org/x/crypto/bcrypt"
)

func newAuthFlow(t *testing.T, testDB *testingutil.TestDB) AuthFlow {
	t.Helper()
	tokenService, err := services.NewTokenService(time.Hour, 24*time.Hour, "carbontrace-test", "carbontrace-api", false, "", "", "test-secret-key-for-tokens")
	require.NoError(t, err)

	return NewAuthFlow(
		repository.NewUserRepository(testDB.DB),
		tokenService,
		config.SecurityConfig{BcryptCost: bcrypt.MinCost},
		config.JWTConfig{AccessTokenTTL: time.Hour},
		testDB.DB,
	)
}

func TestRegister(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		ctx := testingutil.CreateTestContext()
		metadata := NewClientMetadata("127.0.0.1", "test-agent")

		t.Run("CreatesMemberAndIssuesTokens", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())
			flow := newAuthFlow(t, testDB)

			result, err := flow.Register(ctx, &dto.RegisterRequest{
				Email:    "  Ana.Lopez@Example.com ",
				Password: "SuperSecret1!",
				FullName: "Ana Lopez",
			}, metadata)
			require.NoError(t, err)

			assert.Equal(t, "ana.lopez@example.com", result.User.Email)
			assert.Equal(t, utils.RoleMember, result.User.Role)
			assert.Nil(t, result.User.OrganizationID)
			assert.NotEmpty(t, result.Tokens.AccessToken)
			assert.NotEmpty(t, result.Tokens.RefreshToken)
			assert.Equal(t, "Bearer", result.Tokens.TokenType)
			assert.Equal(t, 3600, result.Tokens.ExpiresIn)
		})

		t.Run("DuplicateEmailRejected", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())
			flow := newAuthFlow(t, testDB)

			_, err := flow.Register(ctx, &dto.RegisterRequest{
				Email:    "ana.lopez@example.com",
				Password: "SuperSecret1!",
				FullName: "Ana Lopez",
			}, metadata)
			require.NoError(t, err)

			_, err = flow.Register(ctx, &dto.RegisterRequest{
				Email:    "ANA.LOPEZ@example.com",
				Password: "AnotherSecret1!",
				FullName: "Impostor",
			}, metadata)
			assert.True(t, IsEmailAlreadyExists(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestLogin(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		ctx := testingutil.CreateTestContext()
		metadata := NewClientMetadata("127.0.0.1", "test-agent")
		fixtures := testingutil.NewTestFixtures(testDB)

		t.Run("ValidCredentials", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())
			flow := newAuthFlow(t, testDB)
			user, err := fixtures.CreateTestUser(nil, utils.RoleMember)
			require.NoError(t, err)

			result, err := flow.Login(ctx, &dto.LoginRequest{
				Email:    user.Email,
				Password: "TestPass123!",
			}, metadata)
			require.NoError(t, err)

			assert.Equal(t, user.ID, result.User.ID)
			assert.NotEmpty(t, result.Tokens.AccessToken)
		})

		t.Run("WrongPassword", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())
			flow := newAuthFlow(t, testDB)
			user, err := fixtures.CreateTestUser(nil, utils.RoleMember)
			require.NoError(t, err)

			_, err = flow.Login(ctx, &dto.LoginRequest{
				Email:    user.Email,
				Password: "WrongPass123!",
			}, metadata)
			assert.True(t, IsIncorrectPassword(err))
		})

		t.Run("UnknownEmail", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())
			flow := newAuthFlow(t, testDB)

			_, err := flow.Login(ctx, &dto.LoginRequest{
				Email:    "ghost@example.com",
				Password: "TestPass123!",
			}, metadata)
			assert.True(t, IsUserNotFound(err))
		})

		t.Run("InactiveAccount", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())
			flow := newAuthFlow(t, testDB)
			user, err := fixtures.CreateTestUser(nil, utils.RoleMember)
			require.NoError(t, err)
			require.NoError(t, testDB.DB.Model(user).Update("is_active", false).Error)

			_, err = flow.Login(ctx, &dto.LoginRequest{
				Email:    user.Email,
				Password: "TestPass123!",
			}, metadata)
			assert.True(t, IsAccountInactive(err))
		})

		t.Run("LoginRecordsTimestamp", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())
			flow := newAuthFlow(t, testDB)
			user, err := fixtures.CreateTestUser(nil, utils.RoleMember)
			require.NoError(t, err)

			_, err = flow.Login(ctx, &dto.LoginRequest{
				Email:    user.Email,
				Password: "TestPass123!",
			}, metadata)
			require.NoError(t, err)

			reloaded, err := repository.NewUserRepository(testDB.DB).ByID(ctx, user.ID)
			require.NoError(t, err)
			require.NotNil(t, reloaded)
			assert.NotNil(t, reloaded.LastLoginAt)
		})

		return nil
	})
	require.NoError(t, err)
}
