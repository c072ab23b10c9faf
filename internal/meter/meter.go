// Package meter decides whether an authenticated principal may consume one
// metered request against its tier's quota.
package meter

import (
	"context"

	"go.uber.org/zap"

	"github.com/fixlab/api-core/internal/apierror"
	"github.com/fixlab/api-core/internal/catalog"
	"github.com/fixlab/api-core/internal/metrics"
	"github.com/fixlab/api-core/internal/models"
	"github.com/fixlab/api-core/internal/store"
)

// Decision carries the metadata attached to the response of a metered call.
type Decision struct {
	Tier  catalog.Tier
	Used  int64
	Limit int64
}

type Meter struct {
	store  store.PrincipalStore
	logger *zap.Logger
}

func New(principals store.PrincipalStore, logger *zap.Logger) *Meter {
	return &Meter{store: principals, logger: logger}
}

// Allow admits or rejects one request for the principal.
//
// The tier is resolved before any counter mutation; an unresolvable tier
// rejects with InvalidSubscription and leaves counters untouched. The
// increment happens before the limit check, so the call that crosses the
// limit is itself counted and rejected (`used > limit`, not `>=`), and the
// increment is never refunded.
//
// On rejection the returned Decision still carries the counted usage so the
// caller can attach response metadata.
func (m *Meter) Allow(ctx context.Context, principal *models.Principal) (*Decision, error) {
	tier, ok := catalog.Resolve(catalog.TierID(principal.Tier))
	if !ok {
		metrics.GatedRequestsTotal.WithLabelValues(principal.Tier, "invalid_subscription").Inc()
		return nil, apierror.InvalidSubscription(principal.Tier)
	}

	used, err := m.store.IncrementRequests(ctx, principal.ID)
	if err != nil {
		return nil, err
	}

	decision := &Decision{
		Tier:  tier,
		Used:  used,
		Limit: tier.Limits.Requests,
	}

	if decision.Limit != catalog.Unlimited && used > decision.Limit {
		m.logger.Warn("quota exceeded",
			zap.String("principal", principal.ID.String()),
			zap.String("tier", string(tier.ID)),
			zap.Int64("used", used),
			zap.Int64("limit", decision.Limit))
		metrics.GatedRequestsTotal.WithLabelValues(string(tier.ID), "quota_exceeded").Inc()
		return decision, apierror.QuotaExceeded(decision.Limit)
	}

	metrics.GatedRequestsTotal.WithLabelValues(string(tier.ID), "allowed").Inc()
	return decision, nil
}
