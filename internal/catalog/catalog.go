// Package catalog defines the subscription tier catalog.
// Tiers map to quota limits and pricing metadata.
package catalog

// TierID identifies a subscription tier.
type TierID string

const (
	TierStarter      TierID = "starter"
	TierProfessional TierID = "professional"
	TierEnterprise   TierID = "enterprise"
)

// Unlimited is the sentinel limit value that disables a quota check.
const Unlimited int64 = -1

// Limits defines the per-period quota limits for a tier.
type Limits struct {
	Requests     int64 `json:"requests"`      // -1 = unlimited
	StorageBytes int64 `json:"storage_bytes"` // -1 = unlimited
	Users        int64 `json:"users"`         // -1 = unlimited
}

// Tier represents one immutable catalog entry.
type Tier struct {
	ID         TierID `json:"id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	Currency   string `json:"currency"`
	Interval   string `json:"interval"`
	Limits     Limits `json:"limits"`
}

var (
	Starter = Tier{
		ID:         TierStarter,
		Name:       "Starter",
		PriceCents: 2900,
		Currency:   "usd",
		Interval:   "month",
		Limits: Limits{
			Requests:     1000,
			StorageBytes: 1 << 30, // 1 GB
			Users:        3,
		},
	}

	Professional = Tier{
		ID:         TierProfessional,
		Name:       "Professional",
		PriceCents: 9900,
		Currency:   "usd",
		Interval:   "month",
		Limits: Limits{
			Requests:     10000,
			StorageBytes: 50 << 30, // 50 GB
			Users:        10,
		},
	}

	Enterprise = Tier{
		ID:         TierEnterprise,
		Name:       "Enterprise",
		PriceCents: 49900,
		Currency:   "usd",
		Interval:   "month",
		Limits: Limits{
			Requests:     Unlimited,
			StorageBytes: Unlimited,
			Users:        Unlimited,
		},
	}

	// All contains every catalog entry, keyed by tier ID.
	All = map[TierID]Tier{
		TierStarter:      Starter,
		TierProfessional: Professional,
		TierEnterprise:   Enterprise,
	}
)

// aliases maps legacy tier names from the old pricing scheme onto the
// canonical catalog. The "free" tier never had its own limits; it resolved
// to the same quotas as starter.
var aliases = map[TierID]TierID{
	"free": TierStarter,
}

// Resolve returns the tier for the given ID, following aliases.
// The second return value is false for unknown IDs.
func Resolve(id TierID) (Tier, bool) {
	if canonical, ok := aliases[id]; ok {
		id = canonical
	}
	tier, ok := All[id]
	return tier, ok
}

// Default returns the tier assigned at registration when none is requested.
func Default() Tier {
	return Starter
}

// List returns all catalog entries in ascending price order.
func List() []Tier {
	return []Tier{Starter, Professional, Enterprise}
}
