package spotify

// TokenSet is the token endpoint's success body, kept exactly as the provider
// returns it. ExpiresIn is a lifetime in seconds; the absolute expiry is
// derived once, at acquisition time, by the session layer.
type TokenSet struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	Scope        string `json:"scope"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
}
