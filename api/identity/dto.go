package identity

// AuthRequest carries an operator's credentials.
type AuthRequest struct {
	Name string `json:"name" binding:"required"`
	Key  string `json:"key" binding:"required"`
}

// AuthResponse is returned on a successful sign in.
type AuthResponse struct {
	Operator string `json:"operator"`
	Token    string `json:"token"`
}
