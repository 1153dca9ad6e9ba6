package dto

// CreateFacilityRequest represents the facility creation form data
type CreateFacilityRequest struct {
	Name         string   `json:"name" validate:"required,max=255"`
	FacilityType *string  `json:"facility_type,omitempty" validate:"omitempty,max=64"`
	Address      *string  `json:"address,omitempty" validate:"omitempty,max=255"`
	City         *string  `json:"city,omitempty" validate:"omitempty,max=128"`
	State        *string  `json:"state,omitempty" validate:"omitempty,max=128"`
	Country      *string  `json:"country,omitempty" validate:"omitempty,max=128"`
	PostalCode   *string  `json:"postal_code,omitempty" validate:"omitempty,max=32"`
	Latitude     *float64 `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude    *float64 `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
	GridRegion   *string  `json:"grid_region,omitempty" validate:"omitempty,max=64"`
}

// UpdateFacilityRequest represents a partial facility update.
// Only non-nil fields are applied.
type UpdateFacilityRequest struct {
	Name         *string  `json:"name,omitempty" validate:"omitempty,max=255"`
	FacilityType *string  `json:"facility_type,omitempty" validate:"omitempty,max=64"`
	Address      *string  `json:"address,omitempty" validate:"omitempty,max=255"`
	City         *string  `json:"city,omitempty" validate:"omitempty,max=128"`
	State        *string  `json:"state,omitempty" validate:"omitempty,max=128"`
	Country      *string  `json:"country,omitempty" validate:"omitempty,max=128"`
	PostalCode   *string  `json:"postal_code,omitempty" validate:"omitempty,max=32"`
	Latitude     *float64 `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude    *float64 `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
	GridRegion   *string  `json:"grid_region,omitempty" validate:"omitempty,max=64"`
}

// FacilityDTO represents facility data for API responses
type FacilityDTO struct {
	ID           uint     `json:"id"`
	UUID         string   `json:"uuid"`
	Name         string   `json:"name"`
	FacilityType *string  `json:"facility_type,omitempty"`
	Address      *string  `json:"address,omitempty"`
	City         *string  `json:"city,omitempty"`
	State        *string  `json:"state,omitempty"`
	Country      *string  `json:"country,omitempty"`
	PostalCode   *string  `json:"postal_code,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	GridRegion   *string  `json:"grid_region,omitempty"`
	IsActive     bool     `json:"is_active"`
	CreatedAt    string   `json:"created_at"`
}

// ListFacilitiesResponse lists the organization's active facilities
type ListFacilitiesResponse struct {
	Facilities []FacilityDTO `json:"facilities"`
	Total      int           `json:"total"`
}

// GeocodeRequest resolves a city/country to coordinates and a grid region
type GeocodeRequest struct {
	City    string  `json:"city" validate:"required,max=128"`
	Country *string `json:"country,omitempty" validate:"omitempty,max=128"`
}

// GeocodeResponse represents the geocode lookup result
type GeocodeResponse struct {
	City       string  `json:"city"`
	Country    string  `json:"country"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	GridRegion string  `json:"grid_region"`
}
