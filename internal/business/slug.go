package business

import (
	"regexp"
	"strings"

	pkgerrors "github.com/vitrinehub/vitrine-backend/pkg/errors"
)

const (
	slugMinLen = 3
	slugMaxLen = 32
)

var slugRe = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// reservedSlugs are path segments the router owns; they can never become a
// public storefront address.
var reservedSlugs = map[string]struct{}{
	"app":          {},
	"api":          {},
	"admin":        {},
	"b":            {},
	"sign-in":      {},
	"sign-up":      {},
	"verify-email": {},
	"account":      {},
	"onboarding":   {},
	"health":       {},
	"static":       {},
	"assets":       {},
	"public":       {},
}

// NormalizeSlug lowercases and trims the candidate before validation.
func NormalizeSlug(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// ValidateSlug enforces the slug grammar and the reserved-word list.
// Uniqueness is left to the storage constraint.
func ValidateSlug(slug string) error {
	if len(slug) < slugMinLen || len(slug) > slugMaxLen {
		return pkgerrors.New(pkgerrors.CodeValidation, "slug must be between 3 and 32 characters").
			WithDetails(map[string]any{"slug": slug})
	}
	if !slugRe.MatchString(slug) {
		return pkgerrors.New(pkgerrors.CodeValidation, "slug must be lowercase letters, digits, and single hyphens").
			WithDetails(map[string]any{"slug": slug})
	}
	if _, reserved := reservedSlugs[slug]; reserved {
		return pkgerrors.New(pkgerrors.CodeValidation, "slug is reserved").
			WithDetails(map[string]any{"slug": slug})
	}
	return nil
}
