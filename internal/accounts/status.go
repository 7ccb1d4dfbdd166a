package accounts

import (
	"github.com/vitrinehub/vitrine-backend/pkg/enums"
	pkgerrors "github.com/vitrinehub/vitrine-backend/pkg/errors"
)

// allowedTransitions is the full status machine. Terminal states (disabled,
// deleted) have no outgoing edges.
var allowedTransitions = map[enums.AccountStatus][]enums.AccountStatus{
	enums.AccountStatusPendingEmailVerification: {
		enums.AccountStatusActive,
		enums.AccountStatusDisabled,
	},
	enums.AccountStatusActive: {
		enums.AccountStatusSuspended,
		enums.AccountStatusDisabled,
		enums.AccountStatusDeleted,
	},
	enums.AccountStatusSuspended: {
		enums.AccountStatusActive,
		enums.AccountStatusDisabled,
		enums.AccountStatusDeleted,
	},
}

// ValidateTransition checks the status machine without touching storage.
func ValidateTransition(from, to enums.AccountStatus) error {
	if !from.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid current status").
			WithDetails(map[string]any{"from": string(from)})
	}
	if !to.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid target status").
			WithDetails(map[string]any{"to": string(to)})
	}
	if from == to {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "account already in requested status").
			WithDetails(map[string]any{"status": string(from)})
	}
	if from.IsTerminal() {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "account status is terminal").
			WithDetails(map[string]any{"from": string(from), "to": string(to)})
	}
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict, "status transition not allowed").
		WithDetails(map[string]any{"from": string(from), "to": string(to)})
}
