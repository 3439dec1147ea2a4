package commands

import (
	"context"

	"github.com/de-tools/fleet-atlas/pkg/models/domain"
	"github.com/de-tools/fleet-atlas/pkg/services/inventory"
)

// Inventory is what a command needs from the refresh service.
type Inventory interface {
	RunCycle(ctx context.Context) error
	View() inventory.View
	History(ctx context.Context) ([]domain.Summary, error)
}

// Session is a configured inventory ready for a single command.
type Session struct {
	Inventory Inventory
	Accounts  []string
	Close     func() error
}

// Opener builds a Session from the configuration selected on the command line.
type Opener func(ctx context.Context) (*Session, error)

func withSession(ctx context.Context, open Opener, fn func(*Session) error) error {
	session, err := open(ctx)
	if err != nil {
		return err
	}
	if session.Close != nil {
		defer session.Close()
	}
	return fn(session)
}
