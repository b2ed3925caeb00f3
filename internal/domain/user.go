package domain

import "time"

// User is a row of a tenant database's usuarios table. The core only reads it
// during authentication and password changes; everything else about users is
// ordinary page glue.
type User struct {
	ID                int64      `db:"id" json:"id"`
	Name              string     `db:"nombre" json:"name"`
	Description       *string    `db:"descripcion" json:"description,omitempty"`
	PasswordHash      string     `db:"pwd" json:"-"`
	Active            bool       `db:"activo" json:"-"`
	PasswordChangedAt *time.Time `db:"fechacambiopwd" json:"-"`
}

// DisplayName prefers the description over the login name for UI purposes.
func (u *User) DisplayName() string {
	if u.Description != nil && *u.Description != "" {
		return *u.Description
	}
	return u.Name
}

// DefaultPasswordValidityDays applies when a tenant has not configured the
// password validity parameter.
const DefaultPasswordValidityDays = 90

// PasswordPolicy is the tenant-configurable password aging rule, loaded once
// per authentication attempt.
type PasswordPolicy struct {
	ValidityDays int
}

func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{ValidityDays: DefaultPasswordValidityDays}
}

// Expired reports whether a password last changed at changedAt has outlived
// the policy window at instant now. A never-changed password counts as
// expired.
func (p PasswordPolicy) Expired(changedAt *time.Time, now time.Time) bool {
	if changedAt == nil {
		return true
	}
	days := p.ValidityDays
	if days <= 0 {
		days = DefaultPasswordValidityDays
	}
	return now.Sub(*changedAt) > time.Duration(days)*24*time.Hour
}
