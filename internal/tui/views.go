package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hospital-is/hisctl/internal/navigation"
)

const appTitle = "🏥 Hospital Information System"

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	switch {
	case m.res.Outcome == navigation.OutcomeLoading:
		return m.renderLoading()
	case m.res.View == navigation.ViewLogin:
		return m.renderLogin()
	case m.res.View == navigation.ViewSignup:
		return m.renderSignup()
	}
	return m.renderPage()
}

func (m Model) renderLoading() string {
	return fmt.Sprintf("\n  %s Restoring session...\n", m.spinner.View())
}

func (m Model) renderLogin() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render(appTitle))
	b.WriteString("\n")
	b.WriteString(m.styles.Subtitle.Render("Sign in to continue"))
	b.WriteString("\n\n")

	if m.expiredNotice {
		notice := m.styles.Border.
			BorderForeground(lipgloss.Color("214")).
			Render(m.styles.Warning.Render("Your session has expired. Please sign in again."))
		b.WriteString(notice)
		b.WriteString("\n\n")
	}

	b.WriteString(m.renderForm(m.login))
	b.WriteString(m.renderFormStatus("Signing in..."))
	b.WriteString(m.styles.Muted.Render("No account? Press ctrl+n to register as a patient."))
	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render(m.help.View(m.formKeys)))
	return b.String()
}

func (m Model) renderSignup() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render(appTitle))
	b.WriteString("\n")
	b.WriteString(m.styles.Subtitle.Render("Create a patient account"))
	b.WriteString("\n\n")

	b.WriteString(m.renderForm(m.signup))
	b.WriteString(m.renderFormStatus("Creating account..."))
	b.WriteString(m.styles.Muted.Render("Already registered? Press esc to sign in."))
	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render(m.help.View(m.formKeys)))
	return b.String()
}

func (m Model) renderForm(f form) string {
	var b strings.Builder
	for i, in := range f.inputs {
		label := m.styles.Muted.Render(f.labels[i])
		if i == f.focus {
			label = m.styles.Key.Render(f.labels[i])
		}
		b.WriteString(label)
		b.WriteString("\n")
		b.WriteString(in.View())
		b.WriteString("\n\n")
	}
	return b.String()
}

func (m Model) renderFormStatus(busy string) string {
	switch {
	case m.submitting:
		return fmt.Sprintf("%s %s\n\n", m.spinner.View(), m.styles.Status.Render(busy))
	case m.formErr != "":
		return m.styles.Error.Render("✗ "+m.formErr) + "\n\n"
	}
	return ""
}

func (m Model) renderPage() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderQuickLinks())
	b.WriteString("\n\n")

	switch {
	case m.res.Outcome == navigation.OutcomeNotFound:
		b.WriteString(m.renderNotFound())
	case m.res.View == navigation.ViewInvalidRole:
		b.WriteString(m.renderInvalidRole())
	case m.res.Outcome == navigation.OutcomeBlocked:
		b.WriteString(m.renderBlocked())
	default:
		b.WriteString(m.renderData())
	}
	b.WriteString("\n")

	if m.goToActive {
		b.WriteString("\n")
		b.WriteString(m.goTo.View())
		b.WriteString("\n")
	}

	b.WriteString(m.styles.Help.Render(m.help.View(m.keys)))
	return b.String()
}

func (m Model) renderHeader() string {
	title := m.styles.Title.Render(m.res.View.Title())
	if m.res.Outcome == navigation.OutcomeNotFound {
		title = m.styles.Title.Render(navigation.ViewNotFound.Title())
	}

	snap := m.session.Snapshot()
	if snap.User == nil {
		return title
	}
	who := m.styles.Muted.Render(snap.User.DisplayName() + " · ")
	role := m.styles.Highlighted.Render(snap.Role().Label())

	gap := m.width - lipgloss.Width(title) - lipgloss.Width(who) - lipgloss.Width(role)
	if gap < 2 {
		gap = 2
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, title, strings.Repeat(" ", gap), who, role)
}

func (m Model) renderQuickLinks() string {
	parts := make([]string, 0, len(quickLinks))
	for _, l := range quickLinks {
		style := m.styles.KeyDesc
		if m.res.Location.Path == l.Path {
			style = m.styles.Status
		}
		parts = append(parts, m.styles.Key.Render(l.Key)+" "+style.Render(l.Label))
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderNotFound() string {
	msg := fmt.Sprintf("Nothing lives at %s.", m.res.Location.Path)
	hint := m.styles.Muted.Render("Press enter to go to your dashboard.")
	return m.styles.Border.Render(m.styles.Warning.Render("404 ") + msg + "\n\n" + hint)
}

func (m Model) renderBlocked() string {
	snap := m.session.Snapshot()
	msg := fmt.Sprintf("%s is not available to your role (%s).", m.res.View.Title(), snap.Role().Label())
	if snap.User == nil {
		msg = "Sign in to open this page."
	}
	return m.styles.Border.
		BorderForeground(lipgloss.Color("196")).
		Render(m.styles.Error.Render("Access denied. ") + msg)
}

func (m Model) renderInvalidRole() string {
	role := string(m.session.Snapshot().Role())
	msg := fmt.Sprintf("Your account has an unrecognized role %q. Contact an administrator.", role)
	return m.styles.Border.
		BorderForeground(lipgloss.Color("196")).
		Render(m.styles.Error.Render("Invalid role. ") + msg)
}

func (m Model) renderData() string {
	switch {
	case m.loading:
		return fmt.Sprintf("%s %s", m.spinner.View(), m.styles.Muted.Render("Loading "+m.loadPath+"..."))
	case m.loadErr != "":
		return m.styles.Error.Render("✗ "+m.loadErr) + "\n" + m.styles.Muted.Render("Press r to retry.")
	case m.hasTable && len(m.dataset.Rows) == 0:
		return m.styles.Muted.Render("No records.")
	case m.hasTable:
		return m.table.View()
	}
	return m.styles.Muted.Render("Nothing to show for this view.")
}
