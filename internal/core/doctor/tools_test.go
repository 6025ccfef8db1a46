package doctor

import (
	"context"
	"fmt"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/vbisect/internal/core/config"
)

func stubLookPath(t *testing.T, missing ...string) {
	t.Helper()
	orig := lookPathFunc
	t.Cleanup(func() { lookPathFunc = orig })

	lookPathFunc = func(file string) (string, error) {
		for _, m := range missing {
			if file == m {
				return "", &exec.Error{Name: file, Err: fmt.Errorf("not found")}
			}
		}
		return "/usr/bin/" + file, nil
	}
}

func TestToolsCheck_NoHooks(t *testing.T) {
	stubLookPath(t)
	cfg := config.DefaultConfig()

	result := NewToolsCheck(&cfg).Run(context.Background())

	assert.Equal(t, "Tools", result.Name)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "sh", result.Items[0].Label)
	assert.Equal(t, StatusPass, result.Items[0].Status)
	assert.Equal(t, "/usr/bin/sh", result.Items[0].Detail)
}

func TestToolsCheck_ShellMissing(t *testing.T) {
	stubLookPath(t, "sh")
	cfg := config.DefaultConfig()

	result := NewToolsCheck(&cfg).Run(context.Background())

	require.Len(t, result.Items, 1)
	assert.Equal(t, StatusFail, result.Items[0].Status)
}

func TestToolsCheck_Hooks(t *testing.T) {
	stubLookPath(t, "missing-tool")
	cfg := config.DefaultConfig()
	cfg.DataDir = "/data"
	cfg.Commands.Activate = "evm use {{ .Version }}"
	cfg.Commands.Test = "missing-tool --check"

	result := NewToolsCheck(&cfg).Run(context.Background())

	require.Len(t, result.Items, 3)
	assert.Equal(t, "commands.activate", result.Items[1].Label)
	assert.Equal(t, StatusPass, result.Items[1].Status)
	assert.Equal(t, "/usr/bin/evm", result.Items[1].Detail)

	assert.Equal(t, "commands.test", result.Items[2].Label)
	assert.Equal(t, StatusWarn, result.Items[2].Status)
	assert.Contains(t, result.Items[2].Detail, "missing-tool not found")
}

func TestToolsCheck_BrokenTemplate(t *testing.T) {
	stubLookPath(t)
	cfg := config.DefaultConfig()
	cfg.Commands.Activate = "evm use {{ .Version"

	result := NewToolsCheck(&cfg).Run(context.Background())

	require.Len(t, result.Items, 2)
	assert.Equal(t, StatusFail, result.Items[1].Status)
}
