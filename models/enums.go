package models

// Level is one of the three content tiers, in order of difficulty
type Level string

const (
	LevelBeginner Level = "beginner"
	LevelMedium   Level = "medium"
	LevelExpert   Level = "expert"
)

// Levels lists every tier from first to last
var Levels = []Level{LevelBeginner, LevelMedium, LevelExpert}

// Valid reports whether l names one of the known tiers
func (l Level) Valid() bool {
	return l.Rank() >= 0
}

// Rank is the zero-based position of the level on the ladder, -1 if unknown
func (l Level) Rank() int {
	for i, lvl := range Levels {
		if lvl == l {
			return i
		}
	}
	return -1
}

// Next returns the following tier. Expert has no successor.
func (l Level) Next() (Level, bool) {
	r := l.Rank()
	if r < 0 || r == len(Levels)-1 {
		return "", false
	}
	return Levels[r+1], true
}

// Plan is a learner's subscription tier
type Plan string

const (
	PlanFree     Plan = "free"
	PlanMonthly  Plan = "monthly"
	PlanLifetime Plan = "lifetime"
)

// Paid reports whether the plan is a purchasable one
func (p Plan) Paid() bool {
	return p == PlanMonthly || p == PlanLifetime
}

// SubscriptionStatus enum values
type SubscriptionStatus string

const (
	SubscriptionNone    SubscriptionStatus = "none"
	SubscriptionActive  SubscriptionStatus = "active"
	SubscriptionExpired SubscriptionStatus = "expired"
)

// Roles
const (
	RoleLearner = "USER"
	RoleAdmin   = "ADMIN"
)
