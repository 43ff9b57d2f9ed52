package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/hospital-is/hisctl/internal/session"
)

func signedIn(role session.Role) session.Snapshot {
	return session.Snapshot{
		Token: "t",
		User:  &session.User{ID: "u1", Email: "a@b.com", Role: role},
	}
}

var signedOut = session.Snapshot{}

func TestResolveLoading(t *testing.T) {
	res := Resolve(ParseLocation("/admin/doctors"), session.Snapshot{Loading: true}, DefaultTable)
	assert.Equal(t, OutcomeLoading, res.Outcome)
	assert.Equal(t, ViewLoading, res.View)
	assert.Equal(t, RedirectNone, res.Redirect)
}

func TestResolveWithoutSessionRedirectsToLogin(t *testing.T) {
	res := Resolve(ParseLocation("/admin/doctors"), signedOut, DefaultTable)
	assert.Equal(t, OutcomeBlocked, res.Outcome)
	assert.Equal(t, RedirectToLogin, res.Redirect)
	assert.Equal(t, "/login", res.Target.String())

	res = Resolve(res.Target, signedOut, DefaultTable)
	assert.Equal(t, ViewLogin, res.View)
	assert.Equal(t, OutcomeRender, res.Outcome)
	assert.Equal(t, RedirectNone, res.Redirect)
}

func TestResolveExpiredSessionCarriesMarker(t *testing.T) {
	snap := session.Snapshot{Expired: true}
	res := Resolve(ParseLocation("/lab"), snap, DefaultTable)
	assert.Equal(t, RedirectToLogin, res.Redirect)
	assert.Equal(t, "/login?session_expired=true", res.Target.String())
}

func TestResolveMarkerSuppressesLoginRedirect(t *testing.T) {
	res := Resolve(ParseLocation("/lab?session_expired=true"), signedOut, DefaultTable)
	assert.Equal(t, RedirectNone, res.Redirect)
	assert.Equal(t, OutcomeBlocked, res.Outcome)
}

func TestResolveRoleMismatchIsBlocked(t *testing.T) {
	res := Resolve(ParseLocation("/admin/doctors"), signedIn(session.RoleDoctor), DefaultTable)
	assert.Equal(t, OutcomeBlocked, res.Outcome)
	assert.Equal(t, ViewManageDoctors, res.View)
	assert.Equal(t, RedirectNone, res.Redirect)
}

func TestResolveNotFound(t *testing.T) {
	res := Resolve(ParseLocation("/nowhere"), signedIn(session.RoleAdmin), DefaultTable)
	assert.Equal(t, OutcomeNotFound, res.Outcome)
	assert.Equal(t, RedirectNone, res.Redirect)

	res = Resolve(ParseLocation("/nowhere"), signedOut, DefaultTable)
	assert.Equal(t, OutcomeNotFound, res.Outcome)
	assert.Equal(t, RedirectToLogin, res.Redirect)
}

func TestResolveAuthPagesWhileSignedIn(t *testing.T) {
	for _, path := range []string{"/login", "/signup"} {
		res := Resolve(ParseLocation(path), signedIn(session.RolePatient), DefaultTable)
		assert.Equal(t, OutcomeRender, res.Outcome, path)
		assert.Equal(t, RedirectToDashboard, res.Redirect, path)
		assert.Equal(t, "/", res.Target.String(), path)
	}
}

func TestResolveDashboards(t *testing.T) {
	tests := map[session.Role]View{
		session.RoleAdmin:            ViewAdminDashboard,
		session.RoleDoctor:           ViewDoctorDashboard,
		session.RoleReceptionist:     ViewReceptionistDashboard,
		session.RolePatient:          ViewPatientDashboard,
		session.RoleCashier:          ViewCashier,
		session.RoleNurse:            ViewIPD,
		session.RoleLabTechnician:    ViewLab,
		session.RoleRadiologist:      ViewRadiology,
		session.RolePharmacist:       ViewPharmacy,
		session.RoleInsuranceOfficer: ViewInsurance,
		"janitor":                    ViewInvalidRole,
	}

	for role, want := range tests {
		for _, path := range []string{"/", ""} {
			res := Resolve(ParseLocation(path), signedIn(role), DefaultTable)
			assert.Equal(t, OutcomeRender, res.Outcome, role)
			assert.Equal(t, want, res.View, role)
		}
	}
}

func TestResolveUnknownRoleIsBlockedElsewhere(t *testing.T) {
	res := Resolve(ParseLocation("/hospital-map"), signedIn("janitor"), DefaultTable)
	assert.Equal(t, OutcomeBlocked, res.Outcome)

	res = Resolve(ParseLocation("/hospital-map"), signedIn(session.RolePatient), DefaultTable)
	assert.Equal(t, OutcomeRender, res.Outcome)
}

func TestResolvePrefixRoute(t *testing.T) {
	res := Resolve(ParseLocation("/doctor/consultation/42"), signedIn(session.RoleDoctor), DefaultTable)
	assert.Equal(t, ViewConsultation, res.View)
	assert.Equal(t, OutcomeRender, res.Outcome)

	res = Resolve(ParseLocation("/doctor/consultation"), signedIn(session.RoleDoctor), DefaultTable)
	assert.Equal(t, OutcomeNotFound, res.Outcome)
}

func TestTableFirstMatchWins(t *testing.T) {
	table := Table{
		{Pattern: "/lab", Match: MatchPrefix, View: ViewLab},
		{Pattern: "/lab/x", Match: MatchExact, View: ViewRadiology},
	}
	r, ok := table.Match("/lab/x")
	assert.True(t, ok)
	assert.Equal(t, ViewLab, r.View)
}

func TestRoleGatingIsPure(t *testing.T) {
	paths := make([]string, 0, len(DefaultTable)+3)
	for _, r := range DefaultTable {
		paths = append(paths, r.Pattern)
	}
	paths = append(paths, "/doctor/consultation/7", "/login", "/nowhere")
	roles := append(session.Roles(), "janitor")

	rapid.Check(t, func(t *rapid.T) {
		path := rapid.SampledFrom(paths).Draw(t, "path")
		role := rapid.SampledFrom(roles).Draw(t, "role")
		expired := rapid.Bool().Draw(t, "expired")

		snap := signedIn(role)
		snap.Expired = expired
		loc := ParseLocation(path)

		first := Resolve(loc, snap, DefaultTable)
		second := Resolve(loc, snap, DefaultTable)
		if first.Outcome != second.Outcome || first.View != second.View || first.Redirect != second.Redirect {
			t.Fatalf("resolution changed between calls: %+v vs %+v", first, second)
		}

		route, ok := DefaultTable.Match(path)
		if !ok || loc.IsAuthPage() || route.View == ViewDashboard {
			return
		}
		want := OutcomeBlocked
		if route.Allows(role) {
			want = OutcomeRender
		}
		if first.Outcome != want {
			t.Fatalf("%s as %s: got %s want %s", path, role, first.Outcome, want)
		}
	})
}
