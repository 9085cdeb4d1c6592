// Copyright (c) 2026 Voltora Energy. All rights reserved.
// Author: platform@voltora.energy

package auth

// Credentials are the customer login inputs.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the step-one signup submission. The server responds by
// dispatching a verification code out-of-band (email); no session exists
// until the code is verified.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// loginResponse mirrors the backend's session-issuing responses (login and
// verify-code share the shape).
type loginResponse struct {
	Token   string         `json:"token"`
	Expires string         `json:"expires_at"`
	User    profilePayload `json:"user"`
}

// profilePayload is the backend's user record as it appears in auth
// responses.
type profilePayload struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	AvatarURL string `json:"avatar_url"`
	Role      string `json:"role"`
}

const (
	FieldName     = "name"
	FieldEmail    = "email"
	FieldPhone    = "phone"
	FieldPassword = "password"
	FieldCode     = "code"
)
