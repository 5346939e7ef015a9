package model

// AuthResult bundles the token pair and the authenticated principal.
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	User         User
}
