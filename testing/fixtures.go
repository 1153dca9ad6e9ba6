// Package testing provides test utilities and database setup for testing the carbon accounting system
package testing

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/verdantia/carbontrace/models"
	"github.com/verdantia/carbontrace/utils"
	"golang.org/x/crypto/bcrypt"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestOrganization creates an organization with a random fiscal ID
func (tf *TestFixtures) CreateTestOrganization() (*models.Organization, error) {
	org := &models.Organization{
		LegalName:       "Test Organization Ltd",
		FiscalID:        fmt.Sprintf("ES%09d", rand.Intn(900000000)+100000000),
		DefaultCurrency: "EUR",
		Language:        "en",
	}

	if err := tf.DB.DB.Create(org).Error; err != nil {
		return nil, fmt.Errorf("failed to create test organization: %w", err)
	}

	return org, nil
}

// CreateTestUser creates an active user, optionally attached to an organization
func (tf *TestFixtures) CreateTestUser(orgID *uint, role string) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("TestPass123!"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	randomDigits := fmt.Sprintf("%09d", rand.Intn(900000000)+100000000)

	user := &models.User{
		Email:          fmt.Sprintf("jane.doe.%s@example.com", randomDigits),
		PasswordHash:   string(hashedPassword),
		FullName:       "Jane Doe",
		Role:           role,
		OrganizationID: orgID,
		IsActive:       true,
	}

	if err := tf.DB.DB.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create test user: %w", err)
	}

	return user, nil
}

// CreateTestFacility creates an active facility for the organization
func (tf *TestFixtures) CreateTestFacility(orgID uint) (*models.Facility, error) {
	facility := &models.Facility{
		OrganizationID: orgID,
		Name:           "Main Plant",
		City:           utils.ToPtr("Madrid"),
		Country:        utils.ToPtr("Spain"),
		IsActive:       true,
	}

	if err := tf.DB.DB.Create(facility).Error; err != nil {
		return nil, fmt.Errorf("failed to create test facility: %w", err)
	}

	return facility, nil
}

// CreateTestCategory creates an emission category
func (tf *TestFixtures) CreateTestCategory(name string, scope int16) (*models.EmissionCategory, error) {
	category := &models.EmissionCategory{
		Name:  name,
		Scope: scope,
	}

	if err := tf.DB.DB.Create(category).Error; err != nil {
		return nil, fmt.Errorf("failed to create test category: %w", err)
	}

	return category, nil
}

// CreateTestFactor creates an active emission factor for a category and unit
func (tf *TestFixtures) CreateTestFactor(categoryID uint, unit string, co2ePerUnit float64, year int) (*models.EmissionFactor, error) {
	factor := &models.EmissionFactor{
		CategoryID:  categoryID,
		Unit:        unit,
		CO2ePerUnit: co2ePerUnit,
		Year:        year,
		IsActive:    true,
		Source:      "test",
	}

	if err := tf.DB.DB.Create(factor).Error; err != nil {
		return nil, fmt.Errorf("failed to create test factor: %w", err)
	}

	return factor, nil
}

// CreateTestEntry creates a pending data entry
func (tf *TestFixtures) CreateTestEntry(orgID, categoryID, userID uint, quantity float64, unit string, entryDate time.Time) (*models.DataEntry, error) {
	entry := &models.DataEntry{
		OrganizationID:     orgID,
		CategoryID:         categoryID,
		CreatedByUserID:    userID,
		EntryDate:          entryDate,
		Quantity:           quantity,
		Unit:               unit,
		VerificationStatus: utils.VerificationPending,
	}

	if err := tf.DB.DB.Create(entry).Error; err != nil {
		return nil, fmt.Errorf("failed to create test entry: %w", err)
	}

	return entry, nil
}
