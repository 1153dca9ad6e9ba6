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

func newOrgFlow(testDB *testingutil.TestDB) OrganizationFlow {
	return NewOrganizationFlow(
		repository.NewOrganizationRepository(testDB.DB),
		repository.NewUserRepository(testDB.DB),
		testDB.DB,
	)
}

func TestCreateOrganization(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		ctx := testingutil.CreateTestContext()
		metadata := NewClientMetadata("127.0.0.1", "test-agent")
		fixtures := testingutil.NewTestFixtures(testDB)

		t.Run("PromotesCreatorToAdmin", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())
			flow := newOrgFlow(testDB)
			user, err := fixtures.CreateTestUser(nil, utils.RoleMember)
			require.NoError(t, err)

			result, err := flow.CreateOrganization(ctx, user.ID, &dto.CreateOrganizationRequest{
				LegalName:       "Verdantia Iberia SL",
				FiscalID:        "ESB12345678",
				DefaultCurrency: utils.ToPtr("eur"),
			}, metadata)
			require.NoError(t, err)

			assert.Equal(t, "Verdantia Iberia SL", result.Organization.LegalName)
			assert.Equal(t, "EUR", result.Organization.DefaultCurrency)

			reloaded, err := repository.NewUserRepository(testDB.DB).ByID(ctx, user.ID)
			require.NoError(t, err)
			require.NotNil(t, reloaded.OrganizationID)
			assert.Equal(t, result.Organization.ID, *reloaded.OrganizationID)
			assert.Equal(t, utils.RoleAdmin, reloaded.Role)
		})

		t.Run("SecondOrganizationRejected", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())
			flow := newOrgFlow(testDB)
			org, err := fixtures.CreateTestOrganization()
			require.NoError(t, err)
			user, err := fixtures.CreateTestUser(&org.ID, utils.RoleAdmin)
			require.NoError(t, err)

			_, err = flow.CreateOrganization(ctx, user.ID, &dto.CreateOrganizationRequest{
				LegalName: "Another One",
				FiscalID:  "ESB99999999",
			}, metadata)
			assert.True(t, IsAlreadyInOrganization(err))
		})

		t.Run("DuplicateFiscalIDRejected", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())
			flow := newOrgFlow(testDB)
			first, err := fixtures.CreateTestUser(nil, utils.RoleMember)
			require.NoError(t, err)
			second, err := fixtures.CreateTestUser(nil, utils.RoleMember)
			require.NoError(t, err)

			_, err = flow.CreateOrganization(ctx, first.ID, &dto.CreateOrganizationRequest{
				LegalName: "First Co",
				FiscalID:  "ESB11111111",
			}, metadata)
			require.NoError(t, err)

			_, err = flow.CreateOrganization(ctx, second.ID, &dto.CreateOrganizationRequest{
				LegalName: "Second Co",
				FiscalID:  "ESB11111111",
			}, metadata)
			assert.True(t, IsFiscalIDTaken(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestOrganizationMembership(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		ctx := testingutil.CreateTestContext()
		metadata := NewClientMetadata("127.0.0.1", "test-agent")
		fixtures := testingutil.NewTestFixtures(testDB)

		type seed struct {
			orgID  uint
			admin  uint
			member uint
		}
		setup := func(t *testing.T) seed {
			t.Helper()
			require.NoError(t, testDB.ClearAllTables())
			org, err := fixtures.CreateTestOrganization()
			require.NoError(t, err)
			admin, err := fixtures.CreateTestUser(&org.ID, utils.RoleAdmin)
			require.NoError(t, err)
			member, err := fixtures.CreateTestUser(&org.ID, utils.RoleMember)
			require.NoError(t, err)
			return seed{orgID: org.ID, admin: admin.ID, member: member.ID}
		}

		t.Run("ListUsers", func(t *testing.T) {
			s := setup(t)
			flow := newOrgFlow(testDB)

			list, err := flow.ListUsers(ctx, s.member, s.orgID)
			require.NoError(t, err)
			assert.Equal(t, 2, list.Total)
		})

		t.Run("AdminChangesRole", func(t *testing.T) {
			s := setup(t)
			flow := newOrgFlow(testDB)

			updated, err := flow.UpdateUserRole(ctx, s.admin, s.orgID, s.member, &dto.UpdateUserRoleRequest{Role: utils.RoleManager}, metadata)
			require.NoError(t, err)
			assert.Equal(t, utils.RoleManager, updated.Role)
		})

		t.Run("AdminCannotChangeOwnRole", func(t *testing.T) {
			s := setup(t)
			flow := newOrgFlow(testDB)

			_, err := flow.UpdateUserRole(ctx, s.admin, s.orgID, s.admin, &dto.UpdateUserRoleRequest{Role: utils.RoleMember}, metadata)
			assert.True(t, IsCannotChangeOwnRole(err))
		})

		t.Run("MemberCannotChangeRoles", func(t *testing.T) {
			s := setup(t)
			flow := newOrgFlow(testDB)

			_, err := flow.UpdateUserRole(ctx, s.member, s.orgID, s.admin, &dto.UpdateUserRoleRequest{Role: utils.RoleMember}, metadata)
			assert.True(t, IsInsufficientRole(err))
		})

		t.Run("RemoveUserDetaches", func(t *testing.T) {
			s := setup(t)
			flow := newOrgFlow(testDB)

			require.NoError(t, flow.RemoveUser(ctx, s.admin, s.orgID, s.member, metadata))

			removed, err := repository.NewUserRepository(testDB.DB).ByID(ctx, s.member)
			require.NoError(t, err)
			assert.Nil(t, removed.OrganizationID)
			assert.Equal(t, utils.RoleMember, removed.Role)
		})

		t.Run("AdminCannotRemoveSelf", func(t *testing.T) {
			s := setup(t)
			flow := newOrgFlow(testDB)

			err := flow.RemoveUser(ctx, s.admin, s.orgID, s.admin, metadata)
			assert.True(t, IsCannotRemoveSelf(err))
		})

		t.Run("OutsiderForbidden", func(t *testing.T) {
			s := setup(t)
			flow := newOrgFlow(testDB)
			otherOrg, err := fixtures.CreateTestOrganization()
			require.NoError(t, err)
			outsider, err := fixtures.CreateTestUser(&otherOrg.ID, utils.RoleAdmin)
			require.NoError(t, err)

			_, err = flow.ListUsers(ctx, outsider.ID, s.orgID)
			assert.True(t, IsForbidden(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestInviteUser(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		ctx := testingutil.CreateTestContext()
		metadata := NewClientMetadata("127.0.0.1", "test-agent")
		fixtures := testingutil.NewTestFixtures(testDB)

		t.Run("AttachesExistingOrglessUser", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())
			flow := newOrgFlow(testDB)
			org, err := fixtures.CreateTestOrganization()
			require.NoError(t, err)
			admin, err := fixtures.CreateTestUser(&org.ID, utils.RoleAdmin)
			require.NoError(t, err)
			invitee, err := fixtures.CreateTestUser(nil, utils.RoleMember)
			require.NoError(t, err)

			result, err := flow.InviteUser(ctx, admin.ID, org.ID, &dto.InviteUserRequest{
				Email: invitee.Email,
				Role:  utils.RoleManager,
			}, metadata)
			require.NoError(t, err)

			assert.True(t, result.Attached)
			require.NotNil(t, result.User)
			assert.Equal(t, utils.RoleManager, result.User.Role)
			require.NotNil(t, result.User.OrganizationID)
			assert.Equal(t, org.ID, *result.User.OrganizationID)
		})

		t.Run("UnknownEmailStaysPending", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())
			flow := newOrgFlow(testDB)
			org, err := fixtures.CreateTestOrganization()
			require.NoError(t, err)
			admin, err := fixtures.CreateTestUser(&org.ID, utils.RoleAdmin)
			require.NoError(t, err)

			result, err := flow.InviteUser(ctx, admin.ID, org.ID, &dto.InviteUserRequest{
				Email: "future.member@example.com",
				Role:  utils.RoleMember,
			}, metadata)
			require.NoError(t, err)

			assert.False(t, result.Attached)
			assert.Nil(t, result.User)
		})

		t.Run("AttachedInviteeRejected", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())
			flow := newOrgFlow(testDB)
			org, err := fixtures.CreateTestOrganization()
			require.NoError(t, err)
			admin, err := fixtures.CreateTestUser(&org.ID, utils.RoleAdmin)
			require.NoError(t, err)

			otherOrg, err := fixtures.CreateTestOrganization()
			require.NoError(t, err)
			taken, err := fixtures.CreateTestUser(&otherOrg.ID, utils.RoleMember)
			require.NoError(t, err)

			_, err = flow.InviteUser(ctx, admin.ID, org.ID, &dto.InviteUserRequest{
				Email: taken.Email,
				Role:  utils.RoleMember,
			}, metadata)
			assert.True(t, IsInviteeAlreadyAttached(err))
		})

		return nil
	})
	require.NoError(t, err)
}
