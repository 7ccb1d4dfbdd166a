package controllers

import (
	"net"
	"net/http"
	"strings"

	"github.com/vitrinehub/vitrine-backend/api/responses"
	"github.com/vitrinehub/vitrine-backend/api/validators"
	"github.com/vitrinehub/vitrine-backend/internal/identity"
	pkgauth "github.com/vitrinehub/vitrine-backend/pkg/auth"
	"github.com/vitrinehub/vitrine-backend/pkg/config"
	"github.com/vitrinehub/vitrine-backend/pkg/logger"
)

type signUpRequest struct {
	Name           string `json:"name" validate:"required,min=2,max=120"`
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=8,max=256"`
	TurnstileToken string `json:"turnstile_token" validate:"required"`
}

type signInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type resendConfirmationRequest struct {
	Email          string `json:"email" validate:"required,email"`
	TurnstileToken string `json:"turnstile_token" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}

func AuthSignUp(svc identity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body signUpRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.SignUp(r.Context(), identity.SignUpInput{
			Name:           validators.SanitizeString(body.Name, 120),
			Email:          body.Email,
			Password:       body.Password,
			TurnstileToken: body.TurnstileToken,
			RemoteIP:       clientIP(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, user)
	}
}

func AuthSignIn(svc identity.Service, jwtCfg config.JWTConfig, appCfg config.AppConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body signInRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.SignIn(r.Context(), identity.SignInInput{
			Email:    body.Email,
			Password: body.Password,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		pkgauth.SetSessionCookies(w, jwtCfg, session.AccessToken, session.RefreshToken, appCfg.IsProd())
		responses.WriteSuccess(w, session)
	}
}

// AuthVerifyEmail consumes the emailed confirmation link and lands the
// browser on the matching result page.
func AuthVerifyEmail(svc identity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if _, err := svc.VerifyEmail(r.Context(), token); err != nil {
			if logg != nil {
				logg.Warn(r.Context(), "email verification failed")
			}
			http.Redirect(w, r, "/verify-email/error", http.StatusFound)
			return
		}
		http.Redirect(w, r, "/verify-email/confirmed", http.StatusFound)
	}
}

func AuthRefresh(svc identity.Service, jwtCfg config.JWTConfig, appCfg config.AppConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		refresh := pkgauth.ReadRefreshToken(r)
		if refresh == "" {
			var body refreshRequest
			if err := validators.DecodeJSONBody(r, &body); err == nil {
				refresh = body.RefreshToken
			}
		}

		session, err := svc.Refresh(r.Context(), pkgauth.ReadAccessToken(r), refresh)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		pkgauth.SetSessionCookies(w, jwtCfg, session.AccessToken, session.RefreshToken, appCfg.IsProd())
		responses.WriteSuccess(w, session)
	}
}

func AuthSignOut(svc identity.Service, appCfg config.AppConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.SignOut(r.Context(), pkgauth.ReadAccessToken(r)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		pkgauth.ClearSessionCookies(w, appCfg.IsProd())
		responses.WriteSuccess(w, map[string]string{"status": "signed_out"})
	}
}

// AuthResendConfirmation always answers with the same message; only the
// captcha and the resend ceilings may say otherwise.
func AuthResendConfirmation(svc identity.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body resendConfirmationRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		err := svc.ResendConfirmation(r.Context(), identity.ResendConfirmationInput{
			Email:          body.Email,
			TurnstileToken: body.TurnstileToken,
			RemoteIP:       clientIP(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{
			"message": "if the address is registered, a confirmation email is on its way",
		})
	}
}

// clientIP prefers the first forwarded hop over the socket address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
