package enums

import "fmt"

// BusinessStatus represents the publication state of a business profile.
type BusinessStatus string

const (
	BusinessStatusDraft     BusinessStatus = "draft"
	BusinessStatusPublished BusinessStatus = "published"
)

var validBusinessStatuses = []BusinessStatus{
	BusinessStatusDraft,
	BusinessStatusPublished,
}

// String implements fmt.Stringer.
func (s BusinessStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known BusinessStatus.
func (s BusinessStatus) IsValid() bool {
	for _, candidate := range validBusinessStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseBusinessStatus converts raw input into a BusinessStatus.
func ParseBusinessStatus(value string) (BusinessStatus, error) {
	for _, candidate := range validBusinessStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid business status %q", value)
}
