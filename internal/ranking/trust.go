// Package ranking holds the pure directory ranking logic: trust scoring,
// filter predicates, last-active aggregation and the result ordering.
// Nothing in this package touches storage or shared state.
package ranking

import (
	"time"

	"github.com/islandpros/directory_api/internal/models"
)

const (
	scoreGovApproved    = 300
	scoreEmergencyReady = 200
	scoreVerified       = 100

	premiumTrialBonus = 50
	activeBonus       = 10
)

// BadgeTier returns the value of the single highest badge held. Badges are
// tiered: holding GOV_APPROVED and VERIFIED is worth 300, not 400.
func BadgeTier(badges []models.Badge) (int, error) {
	var gov, emergency, verified bool
	for _, b := range badges {
		switch b {
		case models.BadgeGovApproved:
			gov = true
		case models.BadgeEmergencyReady:
			emergency = true
		case models.BadgeVerified:
			verified = true
		default:
			return 0, &models.ValidationError{Field: "badge", Value: string(b)}
		}
	}

	switch {
	case gov:
		return scoreGovApproved, nil
	case emergency:
		return scoreEmergencyReady, nil
	case verified:
		return scoreVerified, nil
	}
	return 0, nil
}

// TrustScore computes the primary ranking key for a provider.
//
// The premium bonus applies only to PREMIUM providers whose trial end is
// strictly after now; a FREE provider with a stale trial end gets nothing.
// ACTIVE providers get a small lifecycle bonus. Unknown enum values are
// rejected instead of being scored as zero.
func TrustScore(badges []models.Badge, plan models.Plan, trialEndAt *time.Time, lifecycle models.LifecycleStatus, now time.Time) (int, error) {
	score, err := BadgeTier(badges)
	if err != nil {
		return 0, err
	}
	if !plan.Valid() {
		return 0, &models.ValidationError{Field: "plan", Value: string(plan)}
	}
	if !lifecycle.Valid() {
		return 0, &models.ValidationError{Field: "lifecycle_status", Value: string(lifecycle)}
	}

	if plan == models.PlanPremium && trialEndAt != nil && trialEndAt.After(now) {
		score += premiumTrialBonus
	}
	if lifecycle == models.LifecycleActive {
		score += activeBonus
	}
	return score, nil
}
