package session

// StorageKey is the fixed key the signed-in profile is persisted under.
const StorageKey = "user"

// UserSession is the locally cached identity of a signed-in user.
type UserSession struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// IsZero reports whether nobody is signed in.
func (u UserSession) IsZero() bool {
	return u == UserSession{}
}
