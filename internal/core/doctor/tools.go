package doctor

import (
	"context"
	"os/exec"
	"strings"

	"github.com/colonyops/vbisect/internal/core/config"
	"github.com/colonyops/vbisect/internal/core/version"
	"github.com/colonyops/vbisect/pkg/tmpl"
)

// lookPathFunc is the function used to find executables on PATH.
// Package-level variable to allow test overrides.
var lookPathFunc = exec.LookPath

// ToolsCheck verifies that the shell and the programs the command hooks
// start are available on $PATH.
type ToolsCheck struct {
	cfg *config.Config
}

// NewToolsCheck creates a new tools check.
func NewToolsCheck(cfg *config.Config) *ToolsCheck {
	return &ToolsCheck{cfg: cfg}
}

func (c *ToolsCheck) Name() string {
	return "Tools"
}

func (c *ToolsCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	// hooks run through sh -c
	if path, err := lookPathFunc("sh"); err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "sh",
			Status: StatusFail,
			Detail: "not found on PATH",
		})
	} else {
		result.Items = append(result.Items, CheckItem{
			Label:  "sh",
			Status: StatusPass,
			Detail: path,
		})
	}

	hooks := []struct {
		name string
		tpl  string
	}{
		{"commands.activate", c.cfg.Commands.Activate},
		{"commands.test", c.cfg.Commands.Test},
	}
	for _, hook := range hooks {
		if hook.tpl == "" {
			continue
		}
		result.Items = append(result.Items, c.checkHook(hook.name, hook.tpl))
	}

	return result
}

// checkHook looks up the program a hook starts. The template is rendered
// with sample data so templated program names resolve too.
func (c *ToolsCheck) checkHook(name, tpl string) CheckItem {
	sample := c.cfg.CommandDataFor(version.MustParse("1.0.0", version.SourceRemote))
	script, err := tmpl.Render(tpl, sample)
	if err != nil {
		return CheckItem{Label: name, Status: StatusFail, Detail: err.Error()}
	}

	fields := strings.Fields(script)
	if len(fields) == 0 {
		return CheckItem{Label: name, Status: StatusWarn, Detail: "renders to an empty command"}
	}

	program := fields[0]
	path, err := lookPathFunc(program)
	if err != nil {
		return CheckItem{
			Label:  name,
			Status: StatusWarn,
			Detail: program + " not found on PATH (fine if it is a shell builtin)",
		}
	}
	return CheckItem{Label: name, Status: StatusPass, Detail: path}
}
