package model

// UserInfo is the identity echoed back by the backend. Only Username is
// guaranteed; after login the client knows nothing else until /auth/me.
type UserInfo struct {
	ID        int64      `json:"id,omitempty"`
	Username  string     `json:"username"`
	Email     string     `json:"email,omitempty"`
	CreatedAt *Timestamp `json:"created_at,omitempty"`
	UpdatedAt *Timestamp `json:"updated_at,omitempty"`
}

// Session is the client's belief about the current identity and bearer
// token. IsAuthenticated is true iff Token is non-empty.
type Session struct {
	User            *UserInfo
	Token           string
	IsAuthenticated bool
}
