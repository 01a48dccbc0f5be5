package models

// AuthorizationOutcome is what the bank decided. AuthorizationCode is set only
// when Authorized is true.
type AuthorizationOutcome struct {
	Authorized        bool
	AuthorizationCode string
}
