package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/existflow/animeshelf/internal/logger"
	"github.com/existflow/animeshelf/internal/sched"
)

// Run starts the full-screen program and blocks until the user quits.
// Scheduler callbacks are delivered to the bubbletea update loop as messages,
// so engines and the model only ever change on that loop.
func Run(ctx context.Context, deps Deps) error {
	bridge := sched.NewBridge()
	deps.Scheduler = bridge

	m := NewModel(ctx, deps)
	defer m.Close()

	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	// Send blocks until the program reads the message, and callbacks may be
	// posted from inside Update, so delivery happens off the caller's goroutine.
	bridge.Attach(func(fn func()) {
		go p.Send(runMsg(fn))
	})

	logger.Info("Launching TUI")
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		logger.Error("TUI error", logger.F("error", err))
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	logger.Info("TUI exited normally")
	return nil
}
