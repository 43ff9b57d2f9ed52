package tui

import (
	"strings"

	"github.com/hospital-is/hisctl/internal/navigation"
)

// listEndpoints is the backend collection each view shows.
var listEndpoints = map[navigation.View]string{
	navigation.ViewAdminDashboard:        "/admin/stats",
	navigation.ViewDoctorDashboard:       "/doctor/appointments/today",
	navigation.ViewReceptionistDashboard: "/receptionist/patients",
	navigation.ViewPatientDashboard:      "/patient/appointments",
	navigation.ViewManageDoctors:         "/admin/doctors",
	navigation.ViewManageReceptionists:   "/admin/receptionists",
	navigation.ViewManageCashiers:        "/admin/cashiers",
	navigation.ViewRegisterPatient:       "/receptionist/patients",
	navigation.ViewScheduleAppointment:   "/receptionist/appointments",
	navigation.ViewCashier:               "/cashier/bills",
	navigation.ViewHospitalMap:           "/hospital/map",
	navigation.ViewIPD:                   "/ipd/wards",
	navigation.ViewEmergency:             "/emergency",
	navigation.ViewOT:                    "/ot",
	navigation.ViewPharmacy:              "/pharmacy/inventory",
	navigation.ViewLab:                   "/lab/requests",
	navigation.ViewRadiology:             "/radiology/requests",
	navigation.ViewInsurance:             "/insurance/claims",
}

// EndpointFor returns the list endpoint of a view at loc. The consultation
// view loads the appointment named by the path.
func EndpointFor(view navigation.View, loc navigation.Location) (string, bool) {
	if view == navigation.ViewConsultation {
		id, ok := strings.CutPrefix(loc.Path, "/doctor/consultation/")
		if !ok || id == "" {
			return "", false
		}
		return "/doctor/appointments/" + id, true
	}
	ep, ok := listEndpoints[view]
	return ep, ok
}

// quickLink is an entry of the quick navigation bar.
type quickLink struct {
	Key   string
	Label string
	Path  string
}

var quickLinks = []quickLink{
	{"1", "Emergency", "/emergency"},
	{"2", "OT", "/ot"},
	{"3", "Pharmacy", "/pharmacy"},
	{"4", "Lab", "/lab"},
	{"5", "Radiology", "/radiology"},
	{"6", "Insurance", "/insurance"},
	{"7", "Map", "/hospital-map"},
}

func quickLinkFor(k string) (quickLink, bool) {
	for _, l := range quickLinks {
		if l.Key == k {
			return l, true
		}
	}
	return quickLink{}, false
}
