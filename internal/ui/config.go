package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/aula/internal/config"
	"github.com/javiermolinar/aula/internal/timetable"
	"github.com/javiermolinar/aula/internal/tui/theme"
)

func (a *App) configCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "View or edit configuration",
		Long: `Interactive configuration management.

If no config file exists, creates one with default values.
Otherwise, displays current config and allows editing.`,
		Example: `  aula config
  aula config --path ./aula.toml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if path == "" {
				path = config.DefaultConfigPath()
			}
			return runConfigInteractive(cmd.InOrStdin(), cmd.OutOrStdout(), path)
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "Config file (default "+config.DefaultConfigPath()+")")
	return cmd
}

func runConfigInteractive(in io.Reader, out io.Writer, configPath string) error {
	fmt.Fprintf(out, "Config file: %s\n\n", configPath)

	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	_, fileErr := os.Stat(configPath)
	if os.IsNotExist(fileErr) {
		fmt.Fprintln(out, "No config file found. Creating with default values...")
		if err := cfg.SaveTo(configPath); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Fprintf(out, "Created %s\n\n", configPath)
	}

	printConfig(out, cfg)

	reader := bufio.NewReader(in)
	if !promptYesNo(reader, out, "\nWould you like to edit the configuration?") {
		return nil
	}

	cfg.Timetable.GridStart = promptClock(reader, out, "Grid start", cfg.Timetable.GridStart)
	cfg.Timetable.GridEnd = promptClock(reader, out, "Grid end (last slot)", cfg.Timetable.GridEnd)
	cfg.Timetable.SlotMinutes = promptInt(reader, out, "Slot minutes", cfg.Timetable.SlotMinutes)
	cfg.Timetable.Days = promptSlice(reader, out, "Days (comma-separated)", cfg.Timetable.Days)
	cfg.Timetable.Lookup = promptValue(reader, out, "Grid lookup (exact or covering)", cfg.Timetable.Lookup)
	cfg.Advisor.Provider = promptValue(reader, out, "LLM provider", cfg.Advisor.Provider)
	cfg.Advisor.Model = promptValue(reader, out, "LLM model", cfg.Advisor.Model)
	cfg.Advisor.BaseURL = promptValue(reader, out, "LLM base URL (Ollama/LM Studio)", cfg.Advisor.BaseURL)
	cfg.Storage.DSN = promptValue(reader, out, "Database (:memory: or a file path)", cfg.Storage.DSN)
	cfg.Server.Addr = promptValue(reader, out, "HTTP listen address", cfg.Server.Addr)
	cfg.UI.Theme = promptTheme(reader, out, cfg.UI.Theme)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if err := cfg.SaveTo(configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Fprintln(out, "\nConfiguration saved!")
	return nil
}

func printConfig(out io.Writer, cfg *config.Config) {
	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintln(out, "──────────────────────")
	fmt.Fprintln(out, "[timetable]")
	fmt.Fprintf(out, "  grid_start       = %s\n", cfg.Timetable.GridStart)
	fmt.Fprintf(out, "  grid_end         = %s\n", cfg.Timetable.GridEnd)
	fmt.Fprintf(out, "  slot_minutes     = %d\n", cfg.Timetable.SlotMinutes)
	fmt.Fprintf(out, "  days             = %s\n", strings.Join(cfg.Timetable.Days, ", "))
	fmt.Fprintf(out, "  lookup           = %s\n", cfg.Timetable.Lookup)
	fmt.Fprintln(out, "\n[generator]")
	fmt.Fprintf(out, "  seed             = %d\n", cfg.Generator.Seed)
	fmt.Fprintf(out, "  sessions         = %d\n", cfg.Generator.Sessions)
	fmt.Fprintf(out, "  unaligned_share  = %g\n", cfg.Generator.UnalignedShare)
	fmt.Fprintln(out, "\n[advisor]")
	fmt.Fprintf(out, "  provider         = %s\n", cfg.Advisor.Provider)
	fmt.Fprintf(out, "  model            = %s\n", cfg.Advisor.Model)
	fmt.Fprintf(out, "  base_url         = %s\n", cfg.Advisor.BaseURL)
	fmt.Fprintln(out, "\n[storage]")
	fmt.Fprintf(out, "  dsn              = %s\n", cfg.Storage.DSN)
	fmt.Fprintln(out, "\n[server]")
	fmt.Fprintf(out, "  addr             = %s\n", cfg.Server.Addr)
	fmt.Fprintln(out, "\n[log]")
	fmt.Fprintf(out, "  level            = %s\n", cfg.Log.Level)
	fmt.Fprintf(out, "  format           = %s\n", cfg.Log.Format)
	fmt.Fprintln(out, "\n[ui]")
	fmt.Fprintf(out, "  theme            = %s\n", cfg.UI.Theme)
}

func promptYesNo(reader *bufio.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", question)
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}

func promptValue(reader *bufio.Reader, out io.Writer, label, current string) string {
	if current == "" {
		fmt.Fprintf(out, "  %s: ", label)
	} else {
		fmt.Fprintf(out, "  %s [%s]: ", label, current)
	}
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return current
	}
	return input
}

func promptInt(reader *bufio.Reader, out io.Writer, label string, current int) int {
	for {
		value := promptValue(reader, out, label, strconv.Itoa(current))
		n, err := strconv.Atoi(value)
		if err == nil && n > 0 {
			return n
		}
		fmt.Fprintf(out, "  Invalid number %q.\n", value)
		if _, err := reader.Peek(1); err != nil {
			return current
		}
	}
}

func promptClock(reader *bufio.Reader, out io.Writer, label, current string) string {
	for {
		value := promptValue(reader, out, label, current)
		if timetable.ValidClock(value) {
			return value
		}
		fmt.Fprintf(out, "  Invalid time %q. Use H:MM AM or H:MM PM.\n", value)
		if _, err := reader.Peek(1); err != nil {
			return current
		}
	}
}

func promptSlice(reader *bufio.Reader, out io.Writer, label string, current []string) []string {
	fmt.Fprintf(out, "  %s [%s]: ", label, strings.Join(current, ", "))
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return current
	}
	parts := strings.Split(input, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

func promptTheme(reader *bufio.Reader, out io.Writer, current string) string {
	options := strings.Join(theme.Available(), ", ")
	label := fmt.Sprintf("UI theme (%s)", options)
	for {
		value := strings.ToLower(promptValue(reader, out, label, current))
		if theme.IsAvailable(value) {
			return value
		}
		fmt.Fprintf(out, "  Invalid theme %q. Available: %s\n", value, options)
		if _, err := reader.Peek(1); err != nil {
			return current
		}
	}
}
