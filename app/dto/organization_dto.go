package dto

// CreateOrganizationRequest represents the organization creation form data
type CreateOrganizationRequest struct {
	LegalName          string  `json:"legal_name" validate:"required,max=255"`
	FiscalID           string  `json:"fiscal_id" validate:"required,max=64"`
	IndustrySector     *string `json:"industry_sector,omitempty" validate:"omitempty,max=128"`
	GeographicLocation *string `json:"geographic_location,omitempty" validate:"omitempty,max=255"`
	LogoURL            *string `json:"logo_url,omitempty" validate:"omitempty,url,max=512"`
	DefaultCurrency    *string `json:"default_currency,omitempty" validate:"omitempty,len=3"`
	Language           *string `json:"language,omitempty" validate:"omitempty,max=8"`
}

// UpdateOrganizationRequest represents a partial organization update.
// Only non-nil fields are applied.
type UpdateOrganizationRequest struct {
	LegalName          *string `json:"legal_name,omitempty" validate:"omitempty,max=255"`
	IndustrySector     *string `json:"industry_sector,omitempty" validate:"omitempty,max=128"`
	GeographicLocation *string `json:"geographic_location,omitempty" validate:"omitempty,max=255"`
	LogoURL            *string `json:"logo_url,omitempty" validate:"omitempty,url,max=512"`
	DefaultCurrency    *string `json:"default_currency,omitempty" validate:"omitempty,len=3"`
	Language           *string `json:"language,omitempty" validate:"omitempty,max=8"`
}

// OrganizationDTO represents organization data for API responses
type OrganizationDTO struct {
	ID                 uint    `json:"id"`
	UUID               string  `json:"uuid"`
	LegalName          string  `json:"legal_name"`
	FiscalID           string  `json:"fiscal_id"`
	IndustrySector     *string `json:"industry_sector,omitempty"`
	GeographicLocation *string `json:"geographic_location,omitempty"`
	LogoURL            *string `json:"logo_url,omitempty"`
	DefaultCurrency    string  `json:"default_currency"`
	Language           string  `json:"language"`
	CreatedAt          string  `json:"created_at"`
}

// OrganizationOverviewResponse is the caller's organization with counts
type OrganizationOverviewResponse struct {
	Organization  OrganizationDTO `json:"organization"`
	MemberCount   int64           `json:"member_count"`
	FacilityCount int64           `json:"facility_count"`
}

// CreateOrganizationResponse represents the response after organization creation
type CreateOrganizationResponse struct {
	Message      string          `json:"message"`
	Organization OrganizationDTO `json:"organization"`
}

// ListOrganizationUsersResponse lists the organization's members
type ListOrganizationUsersResponse struct {
	Users []UserDTO `json:"users"`
	Total int       `json:"total"`
}

// UpdateUserRoleRequest changes a member's role
type UpdateUserRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin manager member"`
}

// InviteUserRequest attaches an existing user to the organization by email
type InviteUserRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
	Role  string `json:"role" validate:"required,oneof=admin manager member"`
}

// InviteUserResponse represents the response after an invitation
type InviteUserResponse struct {
	Message  string   `json:"message"`
	Attached bool     `json:"attached"`
	User     *UserDTO `json:"user,omitempty"`
}
