package enums

import "fmt"

// AccountStatus captures the lifecycle of a tenant account.
type AccountStatus string

const (
	AccountStatusPendingEmailVerification AccountStatus = "pending_email_verification"
	AccountStatusActive                   AccountStatus = "active"
	AccountStatusSuspended                AccountStatus = "suspended"
	AccountStatusDisabled                 AccountStatus = "disabled"
	AccountStatusDeleted                  AccountStatus = "deleted"
)

var validAccountStatuses = []AccountStatus{
	AccountStatusPendingEmailVerification,
	AccountStatusActive,
	AccountStatusSuspended,
	AccountStatusDisabled,
	AccountStatusDeleted,
}

// String implements fmt.Stringer.
func (s AccountStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known AccountStatus.
func (s AccountStatus) IsValid() bool {
	for _, candidate := range validAccountStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is valid from the status.
func (s AccountStatus) IsTerminal() bool {
	return s == AccountStatusDisabled || s == AccountStatusDeleted
}

// ParseAccountStatus converts raw input into an AccountStatus.
func ParseAccountStatus(value string) (AccountStatus, error) {
	for _, candidate := range validAccountStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid account status %q", value)
}
