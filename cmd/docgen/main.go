// Command docgen writes the CLI reference as markdown.
//
//	go run ./cmd/docgen [output]   # default docs/cli-reference.md
package main

import (
	"fmt"
	"os"
	"path/filepath"

	docs "github.com/urfave/cli-docs/v3"

	"github.com/colonyops/vbisect/internal/commands"
	"github.com/colonyops/vbisect/internal/vbisect"
)

const defaultOutput = "docs/cli-reference.md"

func generate(out string) error {
	root := commands.NewRoot(&commands.Flags{}, &vbisect.App{}, "dev")

	md, err := docs.ToMarkdown(root)
	if err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return err
	}
	return os.WriteFile(out, []byte(md), 0o644)
}

func main() {
	out := defaultOutput
	if len(os.Args) > 1 {
		out = os.Args[1]
	}

	if err := generate(out); err != nil {
		fmt.Fprintln(os.Stderr, "docgen:", err)
		os.Exit(1)
	}
	fmt.Println("wrote", out)
}
