package session

import (
	"fmt"
	"strings"
)

// Role is the closed set of staff and patient roles the backend issues.
type Role string

// Known roles
const (
	RoleAdmin            Role = "admin"
	RoleDoctor           Role = "doctor"
	RoleReceptionist     Role = "receptionist"
	RolePatient          Role = "patient"
	RoleCashier          Role = "cashier"
	RoleNurse            Role = "nurse"
	RoleLabTechnician    Role = "lab_technician"
	RoleRadiologist      Role = "radiologist"
	RolePharmacist       Role = "pharmacist"
	RoleInsuranceOfficer Role = "insurance_officer"
)

var knownRoles = []Role{
	RoleAdmin,
	RoleDoctor,
	RoleReceptionist,
	RolePatient,
	RoleCashier,
	RoleNurse,
	RoleLabTechnician,
	RoleRadiologist,
	RolePharmacist,
	RoleInsuranceOfficer,
}

// Roles returns every known role in a stable order.
func Roles() []Role {
	out := make([]Role, len(knownRoles))
	copy(out, knownRoles)
	return out
}

// ParseRole validates s as a role tag.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if err := r.Validate(); err != nil {
		return "", err
	}
	return r, nil
}

// Validate checks that the role is one of the known tags
func (r Role) Validate() error {
	if r.IsKnown() {
		return nil
	}
	return fmt.Errorf("invalid role %q: must be one of %s", string(r), strings.Join(roleStrings(), ", "))
}

// IsKnown reports whether r is in the closed role set.
func (r Role) IsKnown() bool {
	for _, k := range knownRoles {
		if r == k {
			return true
		}
	}
	return false
}

// String returns the role tag
func (r Role) String() string {
	return string(r)
}

// Label returns a human readable form, e.g. "Lab Technician".
func (r Role) Label() string {
	parts := strings.Split(string(r), "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}

func roleStrings() []string {
	out := make([]string, len(knownRoles))
	for i, r := range knownRoles {
		out[i] = string(r)
	}
	return out
}
