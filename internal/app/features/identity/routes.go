// internal/app/features/identity/routes.go
package identity

import "github.com/go-chi/chi/v5"

// Routes registers the identity endpoints on r. The token routes parse the
// bearer token themselves, so none of them sit behind RequireSignedIn.
//
// Example from bootstrap:
//
//	identityfeature.Routes(r, identityHandler)
func Routes(r chi.Router, h *Handler) {
	r.Post("/register", h.HandleRegister)
	r.Post("/verify-otp", h.HandleVerifyOTP)
	r.Post("/resend-otp", h.HandleResendOTP)
	r.Post("/login", h.HandleLogin)
	r.Post("/refresh-token", h.HandleRefresh)
	r.Get("/validate-token", h.ServeValidateToken)
	r.Get("/api/role-details", h.ServeRoleDetails)
}
