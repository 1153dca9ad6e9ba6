package businessflow

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/verdantia/carbontrace/config"
	"github.com/verdantia/carbontrace/models"
	"github.com/verdantia/carbontrace/repository"
	"github.com/verdantia/carbontrace/utils"
)

// FactorResolver resolves the emission factor applicable to a
// (category, unit) pair at a point in time
type FactorResolver interface {
	// Resolve returns nil factor with nil error when no factor applies.
	// That is an expected outcome, never an error.
	Resolve(ctx context.Context, categoryID uint, unit string, asOf time.Time) (*models.EmissionFactor, error)
}

// FactorResolverImpl implements FactorResolver with a best-effort Redis
// cache in front of the factor repository
type FactorResolverImpl struct {
	factorRepo  repository.EmissionFactorRepository
	rc          *redis.Client
	cacheConfig *config.CacheConfig
}

// NewFactorResolver creates a new factor resolver. rc may be nil; resolution
// then always goes to the database.
func NewFactorResolver(factorRepo repository.EmissionFactorRepository, rc *redis.Client, cacheConfig *config.CacheConfig) FactorResolver {
	return &FactorResolverImpl{
		factorRepo:  factorRepo,
		rc:          rc,
		cacheConfig: cacheConfig,
	}
}

// factorCacheKey derives the cache key for one resolution input
func (s *FactorResolverImpl) factorCacheKey(categoryID uint, unit string, asOf time.Time) string {
	prefix := ""
	if s.cacheConfig != nil {
		prefix = s.cacheConfig.RedisPrefix
	}
	return fmt.Sprintf("%s:factor:%d:%s:%s", prefix, categoryID, strings.ToLower(unit), asOf.Format("2006-01-02"))
}

// Resolve picks the single applicable factor. Both hits and misses are
// cached; cache failures fall through to the database silently.
func (s *FactorResolverImpl) Resolve(ctx context.Context, categoryID uint, unit string, asOf time.Time) (*models.EmissionFactor, error) {
	if asOf.IsZero() {
		asOf = utils.UTCToday()
	}

	cacheKey := s.factorCacheKey(categoryID, unit, asOf)
	if s.rc != nil {
		if bs, err := s.rc.Get(ctx, cacheKey).Bytes(); err == nil && len(bs) > 0 {
			var cached *models.EmissionFactor
			if err := json.Unmarshal(bs, &cached); err == nil {
				return cached, nil
			}
		}
	}

	factor, err := s.factorRepo.ResolveCurrent(ctx, categoryID, unit, asOf)
	if err != nil {
		return nil, err
	}

	if s.rc != nil {
		if bs, err := json.Marshal(factor); err == nil {
			_ = s.rc.Set(ctx, cacheKey, bs, utils.FactorCacheTTL).Err()
		}
	}

	return factor, nil
}

// Compute derives the emission pair from a quantity and a resolved factor.
// Pure: nil factor yields nil, no rounding is applied.
func Compute(quantity float64, factor *models.EmissionFactor) *models.Emission {
	if factor == nil {
		return nil
	}
	return &models.Emission{
		FactorID: factor.ID,
		CO2eKg:   quantity * factor.CO2ePerUnit,
	}
}
