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

// FacilityFlow handles the facility business logic
type FacilityFlow interface {
	CreateFacility(ctx context.Context, userID uint, req *dto.CreateFacilityRequest, metadata *ClientMetadata) (*dto.FacilityDTO, error)
	ListFacilities(ctx context.Context, userID uint) (*dto.ListFacilitiesResponse, error)
	GetFacility(ctx context.Context, userID, facilityID uint) (*dto.FacilityDTO, error)
	UpdateFacility(ctx context.Context, userID, facilityID uint, req *dto.UpdateFacilityRequest, metadata *ClientMetadata) (*dto.FacilityDTO, error)
	DeleteFacility(ctx context.Context, userID, facilityID uint, metadata *ClientMetadata) error
	Geocode(ctx context.Context, req *dto.GeocodeRequest) (*dto.GeocodeResponse, error)
}

// FacilityFlowImpl implements the facility business flow
type FacilityFlowImpl struct {
	facilityRepo repository.FacilityRepository
	userRepo     repository.UserRepository
	db           *gorm.DB
}

// NewFacilityFlow creates a new facility flow instance
func NewFacilityFlow(
	facilityRepo repository.FacilityRepository,
	userRepo repository.UserRepository,
	db *gorm.DB,
) FacilityFlow {
	return &FacilityFlowImpl{
		facilityRepo: facilityRepo,
		userRepo:     userRepo,
		db:           db,
	}
}

// geocodeEntry is one row of the static city table
type geocodeEntry struct {
	Country    string
	Latitude   float64
	Longitude  float64
	GridRegion string
}

// geocodeTable is a small static lookup for common facility cities.
// Key is the lowercase city name.
var geocodeTable = map[string]geocodeEntry{
	"madrid":      {Country: "Spain", Latitude: 40.4168, Longitude: -3.7038, GridRegion: "REE"},
	"barcelona":   {Country: "Spain", Latitude: 41.3874, Longitude: 2.1686, GridRegion: "REE"},
	"paris":       {Country: "France", Latitude: 48.8566, Longitude: 2.3522, GridRegion: "RTE"},
	"berlin":      {Country: "Germany", Latitude: 52.52, Longitude: 13.405, GridRegion: "50Hertz"},
	"london":      {Country: "United Kingdom", Latitude: 51.5072, Longitude: -0.1276, GridRegion: "NGESO"},
	"amsterdam":   {Country: "Netherlands", Latitude: 52.3676, Longitude: 4.9041, GridRegion: "TenneT"},
	"lisbon":      {Country: "Portugal", Latitude: 38.7223, Longitude: -9.1393, GridRegion: "REN"},
	"new york":    {Country: "United States", Latitude: 40.7128, Longitude: -74.006, GridRegion: "NYISO"},
	"los angeles": {Country: "United States", Latitude: 34.0549, Longitude: -118.2426, GridRegion: "CAISO"},
	"chicago":     {Country: "United States", Latitude: 41.8781, Longitude: -87.6298, GridRegion: "PJM"},
	"houston":     {Country: "United States", Latitude: 29.7601, Longitude: -95.3701, GridRegion: "ERCOT"},
}

// gridRegionBox maps a bounding box to a balancing-authority region
type gridRegionBox struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
	Region         string
}

// gridRegionBoxes is checked in order; first hit wins
var gridRegionBoxes = []gridRegionBox{
	{32.5, 42.0, -124.5, -114.0, "CAISO"},
	{25.8, 36.5, -106.6, -93.5, "ERCOT"},
	{36.5, 45.0, -90.5, -74.0, "PJM"},
	{40.5, 49.0, -104.0, -82.0, "MISO"},
	{40.5, 45.0, -79.8, -71.8, "NYISO"},
	{35.0, 71.0, -10.0, 40.0, "ENTSO-E"},
}

// DetectGridRegion maps coordinates to a grid region, or "" when no region
// covers them
func DetectGridRegion(latitude, longitude float64) string {
	for _, box := range gridRegionBoxes {
		if latitude >= box.MinLat && latitude <= box.MaxLat &&
			longitude >= box.MinLon && longitude <= box.MaxLon {
			return box.Region
		}
	}
	return ""
}

// requireManager loads the caller and checks they may mutate facilities
func (s *FacilityFlowImpl) requireManager(ctx context.Context, userID uint) (*models.User, error) {
	user, err := getUser(ctx, s.userRepo, userID)
	if err != nil {
		return nil, err
	}
	if user.OrganizationID == nil {
		return nil, ErrNoOrganization
	}
	if !user.CanManageFacilities() {
		return nil, ErrInsufficientRole
	}
	return user, nil
}

// requireOrgUser loads the caller and checks organization membership
func (s *FacilityFlowImpl) requireOrgUser(ctx context.Context, userID uint) (*models.User, error) {
	user, err := getUser(ctx, s.userRepo, userID)
	if err != nil {
		return nil, err
	}
	if user.OrganizationID == nil {
		return nil, ErrNoOrganization
	}
	return user, nil
}

// getOrgFacility loads an active facility scoped to the organization
func (s *FacilityFlowImpl) getOrgFacility(ctx context.Context, facilityID, orgID uint) (*models.Facility, error) {
	facility, err := s.facilityRepo.ByID(ctx, facilityID)
	if err != nil {
		return nil, err
	}
	if facility == nil || facility.OrganizationID != orgID || !facility.IsActive {
		return nil, ErrFacilityNotFound
	}
	return facility, nil
}

// CreateFacility creates a facility; admin/manager only. Grid region is
// auto-detected from coordinates when absent.
func (s *FacilityFlowImpl) CreateFacility(ctx context.Context, userID uint, req *dto.CreateFacilityRequest, metadata *ClientMetadata) (*dto.FacilityDTO, error) {
	user, err := s.requireManager(ctx, userID)
	if err != nil {
		return nil, NewBusinessError("FACILITY_ACCESS_DENIED", "Facility access denied", err)
	}

	facility := &models.Facility{
		OrganizationID: *user.OrganizationID,
		Name:           strings.TrimSpace(req.Name),
		FacilityType:   req.FacilityType,
		Address:        req.Address,
		City:           req.City,
		State:          req.State,
		Country:        req.Country,
		PostalCode:     req.PostalCode,
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		GridRegion:     req.GridRegion,
		IsActive:       true,
	}

	if facility.GridRegion == nil && facility.Latitude != nil && facility.Longitude != nil {
		if region := DetectGridRegion(*facility.Latitude, *facility.Longitude); region != "" {
			facility.GridRegion = &region
		}
	}

	if err := s.facilityRepo.Save(ctx, facility); err != nil {
		return nil, NewBusinessError("FACILITY_CREATION_FAILED", "Facility creation failed", err)
	}

	out := ToFacilityDTO(*facility)
	return &out, nil
}

// ListFacilities lists the organization's active facilities
func (s *FacilityFlowImpl) ListFacilities(ctx context.Context, userID uint) (*dto.ListFacilitiesResponse, error) {
	user, err := s.requireOrgUser(ctx, userID)
	if err != nil {
		return nil, NewBusinessError("FACILITY_ACCESS_DENIED", "Facility access denied", err)
	}

	facilities, err := s.facilityRepo.ByFilter(ctx, models.FacilityFilter{
		OrganizationID: user.OrganizationID,
		IsActive:       utils.ToPtr(true),
	}, "", 0, 0)
	if err != nil {
		return nil, NewBusinessError("FACILITY_LIST_FAILED", "Failed to list facilities", err)
	}

	out := make([]dto.FacilityDTO, 0, len(facilities))
	for _, facility := range facilities {
		out = append(out, ToFacilityDTO(*facility))
	}

	return &dto.ListFacilitiesResponse{
		Facilities: out,
		Total:      len(out),
	}, nil
}

// GetFacility returns one facility scoped to the caller's organization
func (s *FacilityFlowImpl) GetFacility(ctx context.Context, userID, facilityID uint) (*dto.FacilityDTO, error) {
	user, err := s.requireOrgUser(ctx, userID)
	if err != nil {
		return nil, NewBusinessError("FACILITY_ACCESS_DENIED", "Facility access denied", err)
	}

	facility, err := s.getOrgFacility(ctx, facilityID, *user.OrganizationID)
	if err != nil {
		return nil, NewBusinessError("FACILITY_NOT_FOUND", "Facility not found", err)
	}

	out := ToFacilityDTO(*facility)
	return &out, nil
}

// UpdateFacility applies a partial update; admin/manager only
func (s *FacilityFlowImpl) UpdateFacility(ctx context.Context, userID, facilityID uint, req *dto.UpdateFacilityRequest, metadata *ClientMetadata) (*dto.FacilityDTO, error) {
	user, err := s.requireManager(ctx, userID)
	if err != nil {
		return nil, NewBusinessError("FACILITY_ACCESS_DENIED", "Facility access denied", err)
	}

	facility, err := s.getOrgFacility(ctx, facilityID, *user.OrganizationID)
	if err != nil {
		return nil, NewBusinessError("FACILITY_NOT_FOUND", "Facility not found", err)
	}

	if req.Name != nil {
		facility.Name = strings.TrimSpace(*req.Name)
	}
	if req.FacilityType != nil {
		facility.FacilityType = req.FacilityType
	}
	if req.Address != nil {
		facility.Address = req.Address
	}
	if req.City != nil {
		facility.City = req.City
	}
	if req.State != nil {
		facility.State = req.State
	}
	if req.Country != nil {
		facility.Country = req.Country
	}
	if req.PostalCode != nil {
		facility.PostalCode = req.PostalCode
	}
	if req.Latitude != nil {
		facility.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		facility.Longitude = req.Longitude
	}
	if req.GridRegion != nil {
		facility.GridRegion = req.GridRegion
	}

	// Coordinates changed without an explicit region: re-detect
	if req.GridRegion == nil && (req.Latitude != nil || req.Longitude != nil) &&
		facility.Latitude != nil && facility.Longitude != nil {
		if region := DetectGridRegion(*facility.Latitude, *facility.Longitude); region != "" {
			facility.GridRegion = &region
		}
	}

	if err := s.facilityRepo.Update(ctx, facility); err != nil {
		return nil, NewBusinessError("FACILITY_UPDATE_FAILED", "Facility update failed", err)
	}

	out := ToFacilityDTO(*facility)
	return &out, nil
}

// DeleteFacility soft-deletes a facility; admin/manager only. Data entries
// referencing it are left untouched.
func (s *FacilityFlowImpl) DeleteFacility(ctx context.Context, userID, facilityID uint, metadata *ClientMetadata) error {
	user, err := s.requireManager(ctx, userID)
	if err != nil {
		return NewBusinessError("FACILITY_ACCESS_DENIED", "Facility access denied", err)
	}

	facility, err := s.getOrgFacility(ctx, facilityID, *user.OrganizationID)
	if err != nil {
		return NewBusinessError("FACILITY_NOT_FOUND", "Facility not found", err)
	}

	if err := s.facilityRepo.Deactivate(ctx, facility.ID); err != nil {
		return NewBusinessError("FACILITY_DELETE_FAILED", "Facility delete failed", err)
	}

	return nil
}

// Geocode resolves a city against the static table
func (s *FacilityFlowImpl) Geocode(ctx context.Context, req *dto.GeocodeRequest) (*dto.GeocodeResponse, error) {
	city := strings.ToLower(strings.TrimSpace(req.City))
	entry, ok := geocodeTable[city]
	if !ok {
		return nil, NewBusinessError("CITY_NOT_FOUND", "City not found in geocode table", ErrCityNotFound)
	}
	if req.Country != nil && !strings.EqualFold(strings.TrimSpace(*req.Country), entry.Country) {
		return nil, NewBusinessError("CITY_NOT_FOUND", "City not found in geocode table", ErrCityNotFound)
	}

	return &dto.GeocodeResponse{
		City:       strings.TrimSpace(req.City),
		Country:    entry.Country,
		Latitude:   entry.Latitude,
		Longitude:  entry.Longitude,
		GridRegion: entry.GridRegion,
	}, nil
}
