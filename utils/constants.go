package utils

import (
	"time"
)

// Token and session time constants
const (
	// AccessTokenTTL is the time-to-live for access tokens (24 hours)
	AccessTokenTTL = 24 * time.Hour

	// RefreshTokenTTL is the time-to-live for refresh tokens (7 days)
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// User roles within an organization
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleMember  = "member"
)

// Verification statuses for data entries
const (
	VerificationPending        = "pending"
	VerificationVerified       = "verified"
	VerificationActionRequired = "action_required"
)

// OCR confidence levels
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// FactorCacheTTL bounds staleness of the Redis factor-resolution cache.
// Factors are reference data; an hour is well inside their validity windows.
const FactorCacheTTL = time.Hour
