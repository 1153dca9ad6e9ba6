package businessflow

import (
	"context"
	"strings"

	"github.com/verdantia/carbontrace/app/dto"
	"github.com/verdantia/carbontrace/models"
	"github.com/verdantia/carbontrace/repository"
	"github.com/verdantia/carbontrace/utils"
	"gorm.io/gorm"
)

// OrganizationFlow handles the organization and membership business logic
type OrganizationFlow interface {
	CreateOrganization(ctx context.Context, userID uint, req *dto.CreateOrganizationRequest, metadata *ClientMetadata) (*dto.CreateOrganizationResponse, error)
	GetMyOrganization(ctx context.Context, userID uint) (*dto.OrganizationOverviewResponse, error)
	UpdateOrganization(ctx context.Context, userID, orgID uint, req *dto.UpdateOrganizationRequest, metadata *ClientMetadata) (*dto.OrganizationDTO, error)
	ListUsers(ctx context.Context, userID, orgID uint) (*dto.ListOrganizationUsersResponse, error)
	UpdateUserRole(ctx context.Context, userID, orgID, targetUserID uint, req *dto.UpdateUserRoleRequest, metadata *ClientMetadata) (*dto.UserDTO, error)
	RemoveUser(ctx context.Context, userID, orgID, targetUserID uint, metadata *ClientMetadata) error
	InviteUser(ctx context.Context, userID, orgID uint, req *dto.InviteUserRequest, metadata *ClientMetadata) (*dto.InviteUserResponse, error)
}

// OrganizationFlowImpl implements the organization business flow
type OrganizationFlowImpl struct {
	orgRepo  repository.OrganizationRepository
	userRepo repository.UserRepository
	db       *gorm.DB
}

// NewOrganizationFlow creates a new organization flow instance
func NewOrganizationFlow(
	orgRepo repository.OrganizationRepository,
	userRepo repository.UserRepository,
	db *gorm.DB,
) OrganizationFlow {
	return &OrganizationFlowImpl{
		orgRepo:  orgRepo,
		userRepo: userRepo,
		db:       db,
	}
}

// getUser loads an active user or returns a not-found business error
func getUser(ctx context.Context, userRepo repository.UserRepository, userID uint) (*models.User, error) {
	user, err := userRepo.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if !user.IsActive {
		return nil, ErrAccountInactive
	}
	return user, nil
}

// requireMember loads the caller and checks membership of the organization
func (s *OrganizationFlowImpl) requireMember(ctx context.Context, userID, orgID uint) (*models.User, error) {
	user, err := getUser(ctx, s.userRepo, userID)
	if err != nil {
		return nil, err
	}
	if user.OrganizationID == nil {
		return nil, ErrNoOrganization
	}
	if *user.OrganizationID != orgID {
		return nil, ErrForbidden
	}
	return user, nil
}

// requireAdmin loads the caller and checks admin membership of the organization
func (s *OrganizationFlowImpl) requireAdmin(ctx context.Context, userID, orgID uint) (*models.User, error) {
	user, err := s.requireMember(ctx, userID, orgID)
	if err != nil {
		return nil, err
	}
	if user.Role != utils.RoleAdmin {
		return nil, ErrInsufficientRole
	}
	return user, nil
}

// CreateOrganization creates a tenant and promotes the creator to admin in one transaction
func (s *OrganizationFlowImpl) CreateOrganization(ctx context.Context, userID uint, req *dto.CreateOrganizationRequest, metadata *ClientMetadata) (*dto.CreateOrganizationResponse, error) {
	user, err := getUser(ctx, s.userRepo, userID)
	if err != nil {
		return nil, NewBusinessError("USER_LOOKUP_FAILED", "Failed to lookup user", err)
	}
	if user.OrganizationID != nil {
		return nil, NewBusinessError("ALREADY_IN_ORGANIZATION", "User already belongs to an organization", ErrAlreadyInOrganization)
	}

	fiscalID := strings.TrimSpace(req.FiscalID)
	existing, err := s.orgRepo.ByFiscalID(ctx, fiscalID)
	if err != nil {
		return nil, NewBusinessError("ORGANIZATION_LOOKUP_FAILED", "Failed to lookup organization", err)
	}
	if existing != nil {
		return nil, NewBusinessError("FISCAL_ID_TAKEN", "Fiscal ID is already registered", ErrFiscalIDTaken)
	}

	org := &models.Organization{
		LegalName:          strings.TrimSpace(req.LegalName),
		FiscalID:           fiscalID,
		IndustrySector:     req.IndustrySector,
		GeographicLocation: req.GeographicLocation,
		LogoURL:            req.LogoURL,
		DefaultCurrency:    "USD",
		Language:           "en",
	}
	if req.DefaultCurrency != nil {
		org.DefaultCurrency = strings.ToUpper(*req.DefaultCurrency)
	}
	if req.Language != nil {
		org.Language = *req.Language
	}

	err = repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		if err := s.orgRepo.Save(txCtx, org); err != nil {
			return err
		}

		user.OrganizationID = &org.ID
		user.Role = utils.RoleAdmin
		return s.userRepo.Update(txCtx, user)
	})
	if err != nil {
		return nil, NewBusinessError("ORGANIZATION_CREATION_FAILED", "Organization creation failed", err)
	}

	return &dto.CreateOrganizationResponse{
		Message:      "Organization created successfully",
		Organization: ToOrganizationDTO(*org),
	}, nil
}

// GetMyOrganization returns the caller's organization with member and facility counts
func (s *OrganizationFlowImpl) GetMyOrganization(ctx context.Context, userID uint) (*dto.OrganizationOverviewResponse, error) {
	user, err := getUser(ctx, s.userRepo, userID)
	if err != nil {
		return nil, NewBusinessError("USER_LOOKUP_FAILED", "Failed to lookup user", err)
	}
	if user.OrganizationID == nil {
		return nil, NewBusinessError("NO_ORGANIZATION", "User does not belong to an organization", ErrNoOrganization)
	}

	org, err := s.orgRepo.ByID(ctx, *user.OrganizationID)
	if err != nil {
		return nil, NewBusinessError("ORGANIZATION_LOOKUP_FAILED", "Failed to lookup organization", err)
	}
	if org == nil {
		return nil, NewBusinessError("ORGANIZATION_NOT_FOUND", "Organization not found", ErrOrganizationNotFound)
	}

	memberCount, err := s.orgRepo.MemberCount(ctx, org.ID)
	if err != nil {
		return nil, NewBusinessError("ORGANIZATION_STATS_FAILED", "Failed to count members", err)
	}
	facilityCount, err := s.orgRepo.FacilityCount(ctx, org.ID)
	if err != nil {
		return nil, NewBusinessError("ORGANIZATION_STATS_FAILED", "Failed to count facilities", err)
	}

	return &dto.OrganizationOverviewResponse{
		Organization:  ToOrganizationDTO(*org),
		MemberCount:   memberCount,
		FacilityCount: facilityCount,
	}, nil
}

// UpdateOrganization applies a partial update; admin only
func (s *OrganizationFlowImpl) UpdateOrganization(ctx context.Context, userID, orgID uint, req *dto.UpdateOrganizationRequest, metadata *ClientMetadata) (*dto.OrganizationDTO, error) {
	if _, err := s.requireAdmin(ctx, userID, orgID); err != nil {
		return nil, NewBusinessError("ORGANIZATION_ACCESS_DENIED", "Organization access denied", err)
	}

	org, err := s.orgRepo.ByID(ctx, orgID)
	if err != nil {
		return nil, NewBusinessError("ORGANIZATION_LOOKUP_FAILED", "Failed to lookup organization", err)
	}
	if org == nil {
		return nil, NewBusinessError("ORGANIZATION_NOT_FOUND", "Organization not found", ErrOrganizationNotFound)
	}

	if req.LegalName != nil {
		org.LegalName = strings.TrimSpace(*req.LegalName)
	}
	if req.IndustrySector != nil {
		org.IndustrySector = req.IndustrySector
	}
	if req.GeographicLocation != nil {
		org.GeographicLocation = req.GeographicLocation
	}
	if req.LogoURL != nil {
		org.LogoURL = req.LogoURL
	}
	if req.DefaultCurrency != nil {
		org.DefaultCurrency = strings.ToUpper(*req.DefaultCurrency)
	}
	if req.Language != nil {
		org.Language = *req.Language
	}

	if err := s.orgRepo.Update(ctx, org); err != nil {
		return nil, NewBusinessError("ORGANIZATION_UPDATE_FAILED", "Organization update failed", err)
	}

	out := ToOrganizationDTO(*org)
	return &out, nil
}

// ListUsers lists the organization's members; any member may read
func (s *OrganizationFlowImpl) ListUsers(ctx context.Context, userID, orgID uint) (*dto.ListOrganizationUsersResponse, error) {
	if _, err := s.requireMember(ctx, userID, orgID); err != nil {
		return nil, NewBusinessError("ORGANIZATION_ACCESS_DENIED", "Organization access denied", err)
	}

	users, err := s.userRepo.ListByOrganization(ctx, orgID)
	if err != nil {
		return nil, NewBusinessError("USER_LIST_FAILED", "Failed to list users", err)
	}

	out := make([]dto.UserDTO, 0, len(users))
	for _, user := range users {
		out = append(out, ToUserDTO(*user))
	}

	return &dto.ListOrganizationUsersResponse{
		Users: out,
		Total: len(out),
	}, nil
}

// UpdateUserRole changes a member's role; admin only, never on self
func (s *OrganizationFlowImpl) UpdateUserRole(ctx context.Context, userID, orgID, targetUserID uint, req *dto.UpdateUserRoleRequest, metadata *ClientMetadata) (*dto.UserDTO, error) {
	if _, err := s.requireAdmin(ctx, userID, orgID); err != nil {
		return nil, NewBusinessError("ORGANIZATION_ACCESS_DENIED", "Organization access denied", err)
	}
	if userID == targetUserID {
		return nil, NewBusinessError("CANNOT_CHANGE_OWN_ROLE", "Cannot change own role", ErrCannotChangeOwnRole)
	}

	target, err := s.userRepo.ByID(ctx, targetUserID)
	if err != nil {
		return nil, NewBusinessError("USER_LOOKUP_FAILED", "Failed to lookup user", err)
	}
	if target == nil || target.OrganizationID == nil || *target.OrganizationID != orgID {
		return nil, NewBusinessError("USER_NOT_FOUND", "User not found in organization", ErrUserNotFound)
	}

	target.Role = req.Role
	if err := s.userRepo.Update(ctx, target); err != nil {
		return nil, NewBusinessError("ROLE_UPDATE_FAILED", "Role update failed", err)
	}

	out := ToUserDTO(*target)
	return &out, nil
}

// RemoveUser detaches a member from the organization; admin only, never on self
func (s *OrganizationFlowImpl) RemoveUser(ctx context.Context, userID, orgID, targetUserID uint, metadata *ClientMetadata) error {
	if _, err := s.requireAdmin(ctx, userID, orgID); err != nil {
		return NewBusinessError("ORGANIZATION_ACCESS_DENIED", "Organization access denied", err)
	}
	if userID == targetUserID {
		return NewBusinessError("CANNOT_REMOVE_SELF", "Cannot remove self from organization", ErrCannotRemoveSelf)
	}

	target, err := s.userRepo.ByID(ctx, targetUserID)
	if err != nil {
		return NewBusinessError("USER_LOOKUP_FAILED", "Failed to lookup user", err)
	}
	if target == nil || target.OrganizationID == nil || *target.OrganizationID != orgID {
		return NewBusinessError("USER_NOT_FOUND", "User not found in organization", ErrUserNotFound)
	}

	target.OrganizationID = nil
	target.Role = utils.RoleMember
	if err := s.userRepo.Update(ctx, target); err != nil {
		return NewBusinessError("USER_REMOVAL_FAILED", "User removal failed", err)
	}

	return nil
}

// InviteUser attaches an existing orgless user by email; admin only
func (s *OrganizationFlowImpl) InviteUser(ctx context.Context, userID, orgID uint, req *dto.InviteUserRequest, metadata *ClientMetadata) (*dto.InviteUserResponse, error) {
	if _, err := s.requireAdmin(ctx, userID, orgID); err != nil {
		return nil, NewBusinessError("ORGANIZATION_ACCESS_DENIED", "Organization access denied", err)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	invitee, err := s.userRepo.ByEmail(ctx, email)
	if err != nil {
		return nil, NewBusinessError("USER_LOOKUP_FAILED", "Failed to lookup user", err)
	}
	if invitee == nil {
		// No account yet: the invitation stays pending until the user registers
		return &dto.InviteUserResponse{
			Message:  "Invitation recorded; no account exists for this email yet",
			Attached: false,
		}, nil
	}
	if invitee.OrganizationID != nil {
		return nil, NewBusinessError("INVITEE_ALREADY_ATTACHED", "Invited user already belongs to an organization", ErrInviteeAlreadyAttached)
	}

	invitee.OrganizationID = &orgID
	invitee.Role = req.Role
	if err := s.userRepo.Update(ctx, invitee); err != nil {
		return nil, NewBusinessError("INVITATION_FAILED", "Invitation failed", err)
	}

	out := ToUserDTO(*invitee)
	return &dto.InviteUserResponse{
		Message:  "User attached to organization",
		Attached: true,
		User:     &out,
	}, nil
}
