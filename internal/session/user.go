package session

import "fmt"

// User is the profile the backend returns alongside the token.
// JSON field names match the backend's user record.
type User struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	Role           Role   `json:"role"`
	Specialization string `json:"specialization,omitempty"`
	Department     string `json:"department,omitempty"`
	PatientID      string `json:"patientId,omitempty"`
}

// Validate checks the fields a stored user record must carry.
// Name is displayed but not required; role is checked for presence only,
// an unknown role is a navigation concern.
func (u User) Validate() error {
	switch {
	case u.ID == "":
		return fmt.Errorf("user record missing id")
	case u.Email == "":
		return fmt.Errorf("user record missing email")
	case u.Role == "":
		return fmt.Errorf("user record missing role")
	}
	return nil
}

// DisplayName returns the name, falling back to the email.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
