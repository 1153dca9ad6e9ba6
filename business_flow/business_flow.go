// Package businessflow contains the business logic for the application.
package businessflow

import (
	"time"

	"github.com/verdantia/carbontrace/app/dto"
	"github.com/verdantia/carbontrace/models"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds all client-related information for audit logging and request tracking
type ClientMetadata struct {
	IPAddress  string            `json:"ip_address"`
	UserAgent  string            `json:"user_agent"`
	RequestID  string            `json:"request_id,omitempty"`
	Additional map[string]string `json:"additional,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Additional: make(map[string]string),
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// AddAdditional adds additional custom information to the metadata
func (cm *ClientMetadata) AddAdditional(key, value string) {
	if cm.Additional == nil {
		cm.Additional = make(map[string]string)
	}
	cm.Additional[key] = value
}

// ToUserDTO converts a user model to UserDTO for API responses
func ToUserDTO(user models.User) dto.UserDTO {
	out := dto.UserDTO{
		ID:             user.ID,
		UUID:           user.UUID.String(),
		Email:          user.Email,
		FullName:       user.FullName,
		Role:           user.Role,
		JobTitle:       user.JobTitle,
		OrganizationID: user.OrganizationID,
		IsActive:       user.IsActive,
		CreatedAt:      user.CreatedAt.Format(time.RFC3339),
	}
	if user.LastLoginAt != nil {
		lastLogin := user.LastLoginAt.Format(time.RFC3339)
		out.LastLoginAt = &lastLogin
	}
	return out
}

// ToOrganizationDTO converts an organization model to OrganizationDTO
func ToOrganizationDTO(org models.Organization) dto.OrganizationDTO {
	return dto.OrganizationDTO{
		ID:                 org.ID,
		UUID:               org.UUID.String(),
		LegalName:          org.LegalName,
		FiscalID:           org.FiscalID,
		IndustrySector:     org.IndustrySector,
		GeographicLocation: org.GeographicLocation,
		LogoURL:            org.LogoURL,
		DefaultCurrency:    org.DefaultCurrency,
		Language:           org.Language,
		CreatedAt:          org.CreatedAt.Format(time.RFC3339),
	}
}

// ToFacilityDTO converts a facility model to FacilityDTO
func ToFacilityDTO(facility models.Facility) dto.FacilityDTO {
	return dto.FacilityDTO{
		ID:           facility.ID,
		UUID:         facility.UUID.String(),
		Name:         facility.Name,
		FacilityType: facility.FacilityType,
		Address:      facility.Address,
		City:         facility.City,
		State:        facility.State,
		Country:      facility.Country,
		PostalCode:   facility.PostalCode,
		Latitude:     facility.Latitude,
		Longitude:    facility.Longitude,
		GridRegion:   facility.GridRegion,
		IsActive:     facility.IsActive,
		CreatedAt:    facility.CreatedAt.Format(time.RFC3339),
	}
}

// ToDataEntryDTO converts a data entry model to DataEntryDTO
func ToDataEntryDTO(entry models.DataEntry) dto.DataEntryDTO {
	out := dto.DataEntryDTO{
		ID:                 entry.ID,
		UUID:               entry.UUID.String(),
		OrganizationID:     entry.OrganizationID,
		FacilityID:         entry.FacilityID,
		CategoryID:         entry.CategoryID,
		CreatedByUserID:    entry.CreatedByUserID,
		EntryDate:          entry.EntryDate.Format("2006-01-02"),
		Quantity:           entry.Quantity,
		Unit:               entry.Unit,
		EmissionFactorID:   entry.EmissionFactorID,
		CO2eKg:             entry.CO2eKg,
		DocumentFilename:   entry.DocumentFilename,
		DocumentURL:        entry.DocumentURL,
		VendorName:         entry.VendorName,
		InvoiceNumber:      entry.InvoiceNumber,
		TotalCost:          entry.TotalCost,
		Currency:           entry.Currency,
		Notes:              entry.Notes,
		ConfidenceLevel:    entry.ConfidenceLevel,
		VerificationStatus: entry.VerificationStatus,
		VerifiedByUserID:   entry.VerifiedByUserID,
		CreatedAt:          entry.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          entry.UpdatedAt.Format(time.RFC3339),
	}
	if entry.VerifiedAt != nil {
		verifiedAt := entry.VerifiedAt.Format(time.RFC3339)
		out.VerifiedAt = &verifiedAt
	}
	return out
}
