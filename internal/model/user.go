package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// UserID identifies an account. The catalog sends it as either a JSON number
// or a string; it is always carried as a string client-side.
type UserID string

// UnmarshalJSON accepts a number or a string
func (u *UserID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*u = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*u = UserID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("user_id: %w", err)
	}
	*u = UserID(n.String())
	return nil
}

// MarshalJSON writes numeric ids as numbers so the catalog's integer column accepts them
func (u UserID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(u), 10, 64); err == nil {
		return []byte(u), nil
	}
	return json.Marshal(string(u))
}

func (u UserID) String() string {
	return string(u)
}

// Credentials are sent to /login and /register
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResult is the /login response
type LoginResult struct {
	Message string `json:"message"`
	UserID  UserID `json:"user_id"`
}

// Message is the generic {"message": ...} response
type Message struct {
	Message string `json:"message"`
}
