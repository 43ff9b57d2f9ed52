package navigation

import "github.com/hospital-is/hisctl/internal/session"

// Outcome is what the client shows for a location.
type Outcome int

const (
	OutcomeLoading Outcome = iota
	OutcomeRender
	OutcomeBlocked
	OutcomeNotFound
)

func (o Outcome) String() string {
	switch o {
	case OutcomeLoading:
		return "loading"
	case OutcomeRender:
		return "render"
	case OutcomeBlocked:
		return "blocked"
	case OutcomeNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Redirect is a navigation the resolution asks for.
type Redirect int

const (
	RedirectNone Redirect = iota
	RedirectToLogin
	RedirectToDashboard
)

func (r Redirect) String() string {
	switch r {
	case RedirectToLogin:
		return "to_login"
	case RedirectToDashboard:
		return "to_dashboard"
	default:
		return "none"
	}
}

// Resolution is the single answer for (location, session). It is
// recomputed on every change and never reused across navigations.
type Resolution struct {
	Location Location
	View     View
	Roles    []session.Role
	Outcome  Outcome
	Redirect Redirect
	// Target is where Redirect leads; zero when Redirect is RedirectNone.
	Target Location
	// Seq orders resolutions published by a Controller. A later evaluation
	// always carries a higher Seq; Resolve leaves it zero.
	Seq uint64
}

// Resolve maps a location and session snapshot to a resolution. It is pure:
// the same inputs always give the same result.
func Resolve(loc Location, snap session.Snapshot, table Table) Resolution {
	res := Resolution{Location: loc}

	if snap.Loading {
		res.View = ViewLoading
		res.Outcome = OutcomeLoading
		return res
	}

	user := snap.User
	signedIn := snap.Authenticated()

	switch loc.Path {
	case LoginPath:
		res.View, res.Outcome = ViewLogin, OutcomeRender
	case SignupPath:
		res.View, res.Outcome = ViewSignup, OutcomeRender
	default:
		resolveRoute(&res, loc, user, table)
	}

	switch {
	case loc.IsAuthPage() && signedIn:
		res.Redirect = RedirectToDashboard
		res.Target = Location{Path: DashboardPath}
	case !signedIn && !loc.IsAuthPage() && !loc.SessionExpired():
		res.Redirect = RedirectToLogin
		res.Target = LoginLocation()
		if snap.Expired {
			res.Target = ExpiredLoginLocation()
		}
	}

	return res
}

func resolveRoute(res *Resolution, loc Location, user *session.User, table Table) {
	route, ok := table.Match(loc.Path)
	if !ok {
		res.View, res.Outcome = ViewNotFound, OutcomeNotFound
		return
	}
	res.Roles = route.Roles

	if user == nil {
		res.View, res.Outcome = route.View, OutcomeBlocked
		return
	}

	if route.View == ViewDashboard {
		res.View, res.Outcome = DashboardFor(user.Role), OutcomeRender
		return
	}

	res.View = route.View
	if route.Allows(user.Role) {
		res.Outcome = OutcomeRender
	} else {
		res.Outcome = OutcomeBlocked
	}
}
