package models

// MembershipLevel is the client tier derived from lifetime visit count.
type MembershipLevel string

const (
	MembershipStandard MembershipLevel = "standard"
	MembershipSilver   MembershipLevel = "silver"
	MembershipGold     MembershipLevel = "gold"
	MembershipPlatinum MembershipLevel = "platinum"
)

// membershipThresholds is ordered from the highest tier down.
var membershipThresholds = []struct {
	minVisits int
	level     MembershipLevel
}{
	{30, MembershipPlatinum},
	{20, MembershipGold},
	{10, MembershipSilver},
}

// MembershipLevelFor returns the tier for a visit count.
func MembershipLevelFor(visitCount int) MembershipLevel {
	for _, t := range membershipThresholds {
		if visitCount >= t.minVisits {
			return t.level
		}
	}
	return MembershipStandard
}

// IsValidMembershipLevel checks if the provided string is a known tier.
func IsValidMembershipLevel(level string) bool {
	switch MembershipLevel(level) {
	case MembershipStandard, MembershipSilver, MembershipGold, MembershipPlatinum:
		return true
	default:
		return false
	}
}

// ApplyRollup adds signed deltas to the client's accounting fields. Every
// field is clamped at zero and the membership level is recomputed on every
// call, whichever field changed.
func (c *Client) ApplyRollup(visitDelta int, spentDelta float64, pointsDelta int) {
	c.VisitCount = clampInt(c.VisitCount + visitDelta)
	c.TotalSpent = clampFloat(c.TotalSpent + spentDelta)
	c.LoyaltyPoints = clampInt(c.LoyaltyPoints + pointsDelta)
	c.RefreshMembership()
}

// SetLoyaltyPoints overwrites the points balance (clamped at zero) and
// recomputes the membership level.
func (c *Client) SetLoyaltyPoints(points int) {
	c.LoyaltyPoints = clampInt(points)
	c.RefreshMembership()
}

// RefreshMembership recomputes MembershipLevel from VisitCount.
func (c *Client) RefreshMembership() MembershipLevel {
	c.MembershipLevel = MembershipLevelFor(c.VisitCount)
	return c.MembershipLevel
}

func clampInt(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func clampFloat(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
