package navigation

import (
	"slices"
	"strings"

	"github.com/hospital-is/hisctl/internal/session"
)

// MatchKind selects how a route pattern is compared with a path.
type MatchKind int

const (
	// MatchExact requires the path to equal the pattern.
	MatchExact MatchKind = iota
	// MatchPrefix requires the path to start with the pattern.
	MatchPrefix
)

func (k MatchKind) String() string {
	if k == MatchPrefix {
		return "prefix"
	}
	return "exact"
}

// Route maps a path pattern to a view and the roles allowed to see it.
// Empty Roles means any signed-in user.
type Route struct {
	Pattern string
	Match   MatchKind
	View    View
	Roles   []session.Role
}

// Matches reports whether path selects this route.
func (r Route) Matches(path string) bool {
	if r.Match == MatchPrefix {
		return strings.HasPrefix(path, r.Pattern)
	}
	return path == r.Pattern
}

// Allows reports whether role may see the route.
func (r Route) Allows(role session.Role) bool {
	if len(r.Roles) == 0 {
		return role.IsKnown()
	}
	return slices.Contains(r.Roles, role)
}

// Table is an ordered route list; the first match wins.
type Table []Route

// Match returns the first route matching path.
func (t Table) Match(path string) (Route, bool) {
	for _, r := range t {
		if r.Matches(path) {
			return r, true
		}
	}
	return Route{}, false
}

func roles(rs ...session.Role) []session.Role { return rs }

// DefaultTable is the client's route table in priority order.
var DefaultTable = Table{
	{Pattern: "/", Match: MatchExact, View: ViewDashboard},
	{Pattern: "", Match: MatchExact, View: ViewDashboard},
	{Pattern: "/admin/doctors", Match: MatchExact, View: ViewManageDoctors, Roles: roles(session.RoleAdmin)},
	{Pattern: "/admin/receptionists", Match: MatchExact, View: ViewManageReceptionists, Roles: roles(session.RoleAdmin)},
	{Pattern: "/admin/cashiers", Match: MatchExact, View: ViewManageCashiers, Roles: roles(session.RoleAdmin)},
	{Pattern: "/doctor/consultation/", Match: MatchPrefix, View: ViewConsultation, Roles: roles(session.RoleDoctor)},
	{Pattern: "/receptionist/register-patient", Match: MatchExact, View: ViewRegisterPatient, Roles: roles(session.RoleReceptionist)},
	{Pattern: "/receptionist/schedule", Match: MatchExact, View: ViewScheduleAppointment, Roles: roles(session.RoleReceptionist)},
	{Pattern: "/cashier", Match: MatchExact, View: ViewCashier, Roles: roles(session.RoleCashier)},
	{Pattern: "/hospital-map", Match: MatchExact, View: ViewHospitalMap},
	{Pattern: "/ipd", Match: MatchExact, View: ViewIPD, Roles: roles(session.RoleAdmin, session.RoleDoctor, session.RoleNurse)},
	{Pattern: "/emergency", Match: MatchExact, View: ViewEmergency, Roles: roles(session.RoleAdmin, session.RoleDoctor, session.RoleNurse, session.RoleReceptionist)},
	{Pattern: "/ot", Match: MatchExact, View: ViewOT, Roles: roles(session.RoleAdmin, session.RoleDoctor, session.RoleNurse)},
	{Pattern: "/pharmacy", Match: MatchExact, View: ViewPharmacy, Roles: roles(session.RoleAdmin, session.RolePharmacist, session.RoleDoctor)},
	{Pattern: "/lab", Match: MatchExact, View: ViewLab, Roles: roles(session.RoleAdmin, session.RoleLabTechnician, session.RoleDoctor)},
	{Pattern: "/radiology", Match: MatchExact, View: ViewRadiology, Roles: roles(session.RoleAdmin, session.RoleRadiologist, session.RoleDoctor)},
	{Pattern: "/insurance", Match: MatchExact, View: ViewInsurance, Roles: roles(session.RoleAdmin, session.RoleInsuranceOfficer)},
}
