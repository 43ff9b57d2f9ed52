package tui

import (
	"github.com/hospital-is/hisctl/internal/navigation"
	"github.com/hospital-is/hisctl/internal/session"
)

// ResolutionMsg carries a new resolution from the navigation controller.
type ResolutionMsg struct {
	Resolution navigation.Resolution
}

// authResultMsg reports a finished login or signup.
type authResultMsg struct {
	user   *session.User
	err    error
	signup bool
}

// logoutMsg reports a finished logout.
type logoutMsg struct {
	err error
}

// dataLoadedMsg carries a view's list payload. seq ties it to the load
// that produced it; anything older than the model's seq is dropped.
type dataLoadedMsg struct {
	seq  int
	path string
	data Dataset
	err  error
}
