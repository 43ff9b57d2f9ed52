package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hospital-is/hisctl/internal/navigation"
)

// Controller is the navigation side the program follows.
type Controller interface {
	Navigator
	Subscribe(fn func(navigation.Resolution)) (cancel func())
}

// Run starts the console on the alternate screen and blocks until the user
// quits or ctx is cancelled. Every resolution the controller publishes is
// forwarded to the model.
func Run(ctx context.Context, sess Session, ctrl Controller, fetcher Fetcher, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(NewModel(sess, ctrl, fetcher), opts...)

	unsubscribe := ctrl.Subscribe(func(res navigation.Resolution) {
		p.Send(ResolutionMsg{Resolution: res})
	})
	defer unsubscribe()

	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}
