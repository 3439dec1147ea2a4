package terminal

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/de-tools/fleet-atlas/pkg/runtime/terminal/commands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCLI_PassesConfigPath(t *testing.T) {
	var gotPath string
	var out bytes.Buffer

	cli := NewCLI(Options{
		Open: func(_ context.Context, configPath string) (*commands.Session, error) {
			gotPath = configPath
			return &commands.Session{Accounts: []string{"prod"}}, nil
		},
		Output: &out,
	})

	err := cli.ExecuteContext(context.Background(), "accounts", "--config", "/etc/fleet-atlas.yaml")

	require.NoError(t, err)
	assert.Equal(t, "/etc/fleet-atlas.yaml", gotPath)
	assert.Equal(t, "Configured accounts:\nprod\n", out.String())
}

func TestCLI_OpenError(t *testing.T) {
	cli := NewCLI(Options{
		Open: func(context.Context, string) (*commands.Session, error) {
			return nil, errors.New("failed to load config")
		},
		Output: &bytes.Buffer{},
	})

	err := cli.ExecuteContext(context.Background(), "accounts")

	assert.EqualError(t, err, "failed to load config")
}

func TestCLI_Commands(t *testing.T) {
	cli := NewCLI(Options{Output: &bytes.Buffer{}})

	var names []string
	for _, cmd := range cli.rootCmd.Commands() {
		names = append(names, cmd.Name())
	}

	assert.Subset(t, names, []string{"accounts", "history", "refresh", "ssh-config"})
}
