package models

// TokenTypeBearer is the scheme clients echo back in the Authorization header.
const TokenTypeBearer = "Bearer"

// TokenPair is returned by login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}
