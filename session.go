package memberhub

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Session is the client's record of the currently authenticated identity.
// It is immutable once constructed: replaced wholesale on login, cleared
// wholesale on logout.
type Session struct {
	UserID            string   `json:"id,omitempty"`
	Username          string   `json:"userName,omitempty"`
	Email             string   `json:"email,omitempty"`
	Role              UserRole `json:"role,omitempty"`
	Token             string   `json:"token,omitempty"`
	PasswordTemporary bool     `json:"isPasswordTemporary,omitempty"`
}

func (s *Session) GetUserID() string {
	return s.UserID
}

func (s *Session) GetUserUUID() (uuid.UUID, error) {
	return uuid.Parse(s.UserID)
}

// IsAdmin reports whether the session carries the admin role.
func (s *Session) IsAdmin() bool {
	return s != nil && s.Role.IsAdmin()
}

// String never exposes the raw token.
func (s Session) String() string {
	return fmt.Sprintf(
		"user=%s username=%s role=%s temporary=%t",
		s.UserID,
		s.Username,
		s.Role,
		s.PasswordTemporary,
	)
}

func encodeSession(s *Session) ([]byte, error) {
	return json.Marshal(s)
}

func decodeSession(raw []byte) (*Session, error) {
	s := &Session{}
	if err := json.Unmarshal(raw, s); err != nil {
		return nil, ErrUnableToDecodeSession
	}
	if s.Token == "" {
		return nil, ErrUnableToDecodeSession
	}
	return s, nil
}
