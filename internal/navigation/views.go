package navigation

import "github.com/hospital-is/hisctl/internal/session"

// View identifies a screen.
type View string

// Control views.
const (
	ViewNone        View = ""
	ViewLoading     View = "loading"
	ViewLogin       View = "login"
	ViewSignup      View = "signup"
	ViewNotFound    View = "not_found"
	ViewInvalidRole View = "invalid_role"

	// ViewDashboard is the "/" route's placeholder; resolution replaces it
	// with the dashboard of the user's role.
	ViewDashboard View = "dashboard"
)

// Collaborator views.
const (
	ViewAdminDashboard        View = "admin_dashboard"
	ViewDoctorDashboard       View = "doctor_dashboard"
	ViewReceptionistDashboard View = "receptionist_dashboard"
	ViewPatientDashboard      View = "patient_dashboard"
	ViewManageDoctors         View = "manage_doctors"
	ViewManageReceptionists   View = "manage_receptionists"
	ViewManageCashiers        View = "manage_cashiers"
	ViewConsultation          View = "consultation"
	ViewRegisterPatient       View = "register_patient"
	ViewScheduleAppointment   View = "schedule_appointment"
	ViewCashier               View = "cashier"
	ViewHospitalMap           View = "hospital_map"
	ViewIPD                   View = "ipd"
	ViewEmergency             View = "emergency"
	ViewOT                    View = "ot"
	ViewPharmacy              View = "pharmacy"
	ViewLab                   View = "lab"
	ViewRadiology             View = "radiology"
	ViewInsurance             View = "insurance"
)

var viewTitles = map[View]string{
	ViewLoading:               "Loading",
	ViewLogin:                 "Sign in",
	ViewSignup:                "Create account",
	ViewNotFound:              "Page not found",
	ViewInvalidRole:           "Invalid role",
	ViewDashboard:             "Dashboard",
	ViewAdminDashboard:        "Admin Dashboard",
	ViewDoctorDashboard:       "Doctor Dashboard",
	ViewReceptionistDashboard: "Receptionist Dashboard",
	ViewPatientDashboard:      "Patient Dashboard",
	ViewManageDoctors:         "Manage Doctors",
	ViewManageReceptionists:   "Manage Receptionists",
	ViewManageCashiers:        "Manage Cashiers",
	ViewConsultation:          "Consultation",
	ViewRegisterPatient:       "Register Patient",
	ViewScheduleAppointment:   "Schedule Appointment",
	ViewCashier:               "Cashier",
	ViewHospitalMap:           "Hospital Map",
	ViewIPD:                   "In-Patient Department",
	ViewEmergency:             "Emergency",
	ViewOT:                    "Operation Theatre",
	ViewPharmacy:              "Pharmacy",
	ViewLab:                   "Laboratory",
	ViewRadiology:             "Radiology",
	ViewInsurance:             "Insurance",
}

// Title is the header shown for the view.
func (v View) Title() string {
	if t, ok := viewTitles[v]; ok {
		return t
	}
	return string(v)
}

var dashboards = map[session.Role]View{
	session.RoleAdmin:            ViewAdminDashboard,
	session.RoleDoctor:           ViewDoctorDashboard,
	session.RoleReceptionist:     ViewReceptionistDashboard,
	session.RolePatient:          ViewPatientDashboard,
	session.RoleCashier:          ViewCashier,
	session.RoleLabTechnician:    ViewLab,
	session.RoleRadiologist:      ViewRadiology,
	session.RolePharmacist:       ViewPharmacy,
	session.RoleInsuranceOfficer: ViewInsurance,
	session.RoleNurse:            ViewIPD,
}

// DashboardFor returns the landing view of a role, or ViewInvalidRole.
func DashboardFor(role session.Role) View {
	if v, ok := dashboards[role]; ok {
		return v
	}
	return ViewInvalidRole
}
