package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hospital-is/hisctl/internal/session"
)

// form is a vertical stack of text inputs with one focused field.
type form struct {
	inputs []textinput.Model
	labels []string
	focus  int
}

type field struct {
	label       string
	placeholder string
	secret      bool
}

func newForm(fields ...field) form {
	f := form{}
	for _, fd := range fields {
		in := textinput.New()
		in.Placeholder = fd.placeholder
		in.CharLimit = 128
		in.Width = 36
		if fd.secret {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
		}
		f.inputs = append(f.inputs, in)
		f.labels = append(f.labels, fd.label)
	}
	f.inputs[0].Focus()
	return f
}

func newLoginForm() form {
	return newForm(
		field{label: "Email or patient ID", placeholder: "you@hospital.org"},
		field{label: "Password", placeholder: "password", secret: true},
	)
}

func newSignupForm() form {
	return newForm(
		field{label: "Full name", placeholder: "Jane Doe"},
		field{label: "Email", placeholder: "you@example.com"},
		field{label: "Password", placeholder: "at least 8 characters", secret: true},
		field{label: "Confirm password", placeholder: "repeat password", secret: true},
	)
}

// value returns field i with surrounding whitespace removed. Passwords are
// returned as typed.
func (f form) value(i int) string {
	if f.inputs[i].EchoMode == textinput.EchoPassword {
		return f.inputs[i].Value()
	}
	return strings.TrimSpace(f.inputs[i].Value())
}

func (f *form) move(delta int) tea.Cmd {
	f.inputs[f.focus].Blur()
	n := len(f.inputs)
	f.focus = ((f.focus+delta)%n + n) % n
	return f.inputs[f.focus].Focus()
}

func (f form) last() bool {
	return f.focus == len(f.inputs)-1
}

func (f form) update(msg tea.Msg) (form, tea.Cmd) {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

func (f form) credentials() (email, password string) {
	return f.value(0), f.value(1)
}

func (f form) signupRequest() session.SignupRequest {
	return session.SignupRequest{
		Name:            f.value(0),
		Email:           f.value(1),
		Password:        f.value(2),
		ConfirmPassword: f.value(3),
	}
}
