package models

type LegRole string

const (
	LegRoleFirstMile LegRole = "first_mile"
	LegRoleMain      LegRole = "main"
	LegRoleLastMile  LegRole = "last_mile"
)

// Leg is one origin to destination hop as decomposed by transit-infrastructure
// proximity, independent of mode. Legs are never mutated after decomposition.
type Leg struct {
	Role LegRole `json:"role" bson:"role"`
	From Point   `json:"from" bson:"from"`
	To   Point   `json:"to" bson:"to"`
}
