package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/javiermolinar/aula/internal/config"
	"github.com/javiermolinar/aula/internal/ui"
)

func main() {
	if err := run(); err != nil {
		if errors.Is(err, ui.ErrConflictsFound) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	app := ui.NewApp(cfg)
	defer func() { _ = app.Close() }()
	return app.Execute()
}
