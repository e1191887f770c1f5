package dto

// CredentialsRequest carries a username and password. It is accepted as a
// form or as JSON for both login and account writes.
type CredentialsRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// LoginResponse reports whether login succeeded. Token is empty on failure.
type LoginResponse struct {
	Status bool   `json:"status"`
	Token  string `json:"token"`
}

// Envelope is the standard wrapper for user resources. Result holds
// domain.PublicUser values, never stored credentials.
type Envelope struct {
	Status int `json:"status"`
	Result any `json:"result"`
}
