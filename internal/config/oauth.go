package config

import (
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// OAuthConfig builds the Google OAuth client, or nil when sign-in with
// Google is not configured.
func (c *Config) OAuthConfig() *oauth2.Config {
	if !c.GoogleEnabled() {
		return nil
	}
	scopes := []string{"openid", "email", "profile"}
	return &oauth2.Config{
		ClientID:     c.GoogleClientID,
		ClientSecret: c.GoogleClientSecret,
		RedirectURL:  c.GoogleRedirectURL,
		Scopes:       scopes,
		Endpoint:     google.Endpoint,
	}
}
