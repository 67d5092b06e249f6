package httpclient

import "net/http"

// AuthConfig sets credentials on outgoing requests. The zero value sends
// nothing.
type AuthConfig struct {
	// Header defaults to "Authorization".
	Header string
	// Scheme is prepended to Token with a space, e.g. "Bearer".
	Scheme string
	Token  string
}

// BearerAuth sends "Authorization: Bearer <token>".
func BearerAuth(token string) *AuthConfig {
	return &AuthConfig{Scheme: "Bearer", Token: token}
}

// HeaderAuth sends the token verbatim under a custom header, e.g. "api-key".
func HeaderAuth(header, token string) *AuthConfig {
	return &AuthConfig{Header: header, Token: token}
}

func (a *AuthConfig) apply(req *http.Request) {
	if a == nil || a.Token == "" {
		return
	}
	header := a.Header
	if header == "" {
		header = "Authorization"
	}
	value := a.Token
	if a.Scheme != "" {
		value = a.Scheme + " " + a.Token
	}
	req.Header.Set(header, value)
}
