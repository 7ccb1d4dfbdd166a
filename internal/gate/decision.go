package gate

import (
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/vitrinehub/vitrine-backend/pkg/config"
	"github.com/vitrinehub/vitrine-backend/pkg/enums"
)

// publicPaths are reachable without a session.
var publicPaths = map[string]struct{}{
	"/sign-in":                {},
	"/sign-up":                {},
	"/sign-up/success":        {},
	"/verify-email/confirmed": {},
	"/verify-email/error":     {},
}

// excludedPrefixes bypass the gate entirely (assets, health, public API).
var excludedPrefixes = []string{
	"/static/",
	"/assets/",
	"/health",
	"/metrics",
	"/api/public/",
	"/b/",
}

// terminalPages map non-active account statuses to their landing pages.
var terminalPages = map[enums.AccountStatus]string{
	enums.AccountStatusSuspended: "/account/suspended",
	enums.AccountStatusDisabled:  "/account/blocked",
	enums.AccountStatusDeleted:   "/account/deleted",
}

// Action is the kind of decision the gate hands back.
type Action int

const (
	ActionAllow Action = iota
	ActionRedirect
	ActionReject
)

// String names the action for logs and metrics.
func (a Action) String() string {
	switch a {
	case ActionAllow:
		return "allow"
	case ActionRedirect:
		return "redirect"
	case ActionReject:
		return "reject"
	}
	return "unknown"
}

// Decision is the gate's verdict for one request. The gate never mutates
// application data; session refreshes ride a side channel in the adapter.
type Decision struct {
	Action   Action
	Location string
	Status   int
}

// Principal is the authenticated subject resolved from the session.
type Principal struct {
	UserID        uuid.UUID
	EmailVerified bool
	TenantID      *uuid.UUID
}

// Request is the gate-relevant view of an incoming request.
type Request struct {
	Path string
	// RequestURI is the original path+query preserved as the post-login target.
	RequestURI string
}

// Input bundles everything the pure decision needs. Resolution (and its
// failure handling) lives in the middleware adapter.
type Input struct {
	Request       Request
	Principal     *Principal
	AccountStatus *enums.AccountStatus
	HasBusiness   bool
}

func allow() Decision {
	return Decision{Action: ActionAllow}
}

func redirect(location string) Decision {
	return Decision{Action: ActionRedirect, Location: location}
}

// FailClosed is the decision for any resolver error: back to sign-in,
// original target preserved.
func FailClosed(cfg config.GateConfig, req Request) Decision {
	return redirect(signInRedirect(cfg, req))
}

// Decide runs the ordered gate checks as a pure function of its input.
func Decide(cfg config.GateConfig, in Input) Decision {
	path := in.Request.Path

	if isExcluded(path) || isPublic(path) {
		return allow()
	}

	if in.Principal == nil {
		return redirect(signInRedirect(cfg, in.Request))
	}

	if !in.Principal.EmailVerified {
		if path == cfg.PendingPath {
			return allow()
		}
		return redirect(cfg.PendingPath)
	}

	// No account yet: the user verified moments ago and provisioning has
	// not landed. Let the request through rather than trapping them.
	if in.AccountStatus != nil && *in.AccountStatus != enums.AccountStatusActive {
		if page, ok := terminalPages[*in.AccountStatus]; ok {
			if path == page {
				return allow()
			}
			return redirect(page)
		}
		if *in.AccountStatus == enums.AccountStatusPendingEmailVerification {
			if path == cfg.PendingPath {
				return allow()
			}
			return redirect(cfg.PendingPath)
		}
		// unknown status: fail closed
		return redirect(signInRedirect(cfg, in.Request))
	}

	if strings.HasPrefix(path, cfg.AppRoot) {
		onOnboarding := path == cfg.OnboardingPath || strings.HasPrefix(path, cfg.OnboardingPath+"/")
		if !in.HasBusiness && !onOnboarding {
			return redirect(cfg.OnboardingPath)
		}
		if in.HasBusiness && onOnboarding {
			return redirect(cfg.HomePath)
		}
	}

	return allow()
}

func isPublic(path string) bool {
	_, ok := publicPaths[path]
	return ok
}

func isExcluded(path string) bool {
	for _, prefix := range excludedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func signInRedirect(cfg config.GateConfig, req Request) string {
	next := SanitizeNextPath(req.RequestURI)
	return cfg.SignInPath + "?next=" + url.QueryEscape(next)
}
