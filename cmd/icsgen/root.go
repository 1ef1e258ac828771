package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"icsgen/internal/config"
	"icsgen/internal/extract"
	"icsgen/internal/ics"
	"icsgen/internal/llm"
	appLog "icsgen/internal/log"
	"icsgen/internal/model"
)

// deps holds the collaborators the commands reach outside the process for.
type deps struct {
	newCompleter func(cfg *config.Config) llm.Completer
	now          func() time.Time
}

func defaultDeps() deps {
	return deps{
		newCompleter: func(cfg *config.Config) llm.Completer {
			return llm.NewAnthropicClient(llm.AnthropicConfig{
				APIKey:      cfg.APIKey,
				Model:       cfg.Model,
				APIURL:      cfg.APIURL,
				MaxTokens:   cfg.MaxTokens,
				Temperature: cfg.Temperature,
				Timeout:     cfg.Timeout(),
			})
		},
		now: time.Now,
	}
}

// rootFlags holds CLI flag values for the generate command.
type rootFlags struct {
	configPath string
	output     string
	timezone   string
	dryRun     bool
	preview    int
	verbose    bool
}

func newRootCmd(d deps) *cobra.Command {
	var flags rootFlags

	cmd := &cobra.Command{
		Use:   "icsgen <prompt>",
		Short: "Generate an ICS calendar file from a natural language prompt",
		Long: `icsgen asks a language model to turn a free-text event description
("lunch with Sam tomorrow at noon") into structured event details and writes
them as a single-event iCalendar file.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			appLog.SetOutput(cmd.ErrOrStderr())
			if flags.verbose {
				appLog.SetLevel(appLog.LevelDebug)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, d, flags, args[0])
		},
	}

	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "Path to a YAML config file (created with defaults if missing)")
	cmd.PersistentFlags().StringVar(&flags.timezone, "timezone", "", "Default IANA timezone (overrides config and "+config.EnvTimezone+")")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output ICS file path (default \""+config.DefaultOutput+"\")")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Write the calendar to stdout instead of a file")
	cmd.Flags().IntVar(&flags.preview, "preview", 0, "Print the first N occurrences of the event")

	cmd.AddCommand(newInspectCmd(&flags))
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// loadConfig layers defaults, the optional YAML file, .env/environment and
// finally CLI flags.
func loadConfig(flags rootFlags) (*config.Config, *time.Location, error) {
	config.LoadDotEnv()

	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	cfg.ApplyEnv()

	if !flags.verbose {
		appLog.SetLevel(appLog.ParseLevel(cfg.LogLevel))
	}
	if flags.timezone != "" {
		cfg.Timezone = flags.timezone
	}
	if flags.output != "" {
		cfg.Output = flags.output
	}

	loc, err := cfg.Location()
	if err != nil {
		appLog.Warn("timezone fallback", "timezone", cfg.Timezone, "using", loc.String(), "detail", err.Error())
	}
	return cfg, loc, nil
}

func runGenerate(cmd *cobra.Command, d deps, flags rootFlags, prompt string) error {
	cfg, loc, err := loadConfig(flags)
	if err != nil {
		return err
	}

	appLog.Info("generating event details", "model", cfg.Model, "timezone", loc.String())

	ex := extract.New(d.newCompleter(cfg), extract.WithLocation(loc), extract.WithClock(d.now))
	fields, err := ex.Extract(cmd.Context(), prompt, time.Time{})
	if err != nil {
		return err
	}

	ser := ics.NewSerializer(
		ics.WithDefaultLocation(loc),
		ics.WithProdID(cfg.ProdIDService),
		ics.WithClock(d.now),
	)
	out := cmd.OutOrStdout()

	if flags.dryRun {
		ev, warnings, err := ser.Build(fields)
		for _, w := range warnings {
			appLog.Warn("event degraded", "field", w.Field, "detail", w.Message)
		}
		if err != nil {
			return err
		}
		if err := ser.Encode(ev, out); err != nil {
			return err
		}
		return printPreview(cmd.ErrOrStderr(), ev, flags.preview)
	}

	path, err := ser.Serialize(fields, cfg.Output)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Successfully created ICS file: %s\n", path)

	if flags.preview > 0 {
		ev, err := decodeFile(path, loc)
		if err != nil {
			return err
		}
		return printPreview(cmd.ErrOrStderr(), ev, flags.preview)
	}
	return nil
}

func decodeFile(path string, loc *time.Location) (*model.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ev, err := ics.Decode(f, loc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ev, nil
}

// printPreview lists the next n starts. The generate command sends it to
// stderr so stdout carries only the calendar or the success line. A rule the expander cannot interpret
// is logged, not returned: the calendar file is already valid.
func printPreview(w io.Writer, ev *model.Event, n int) error {
	if n <= 0 {
		return nil
	}
	occ, err := ics.Occurrences(ev, n)
	if err != nil {
		appLog.Warn("cannot preview occurrences", "detail", err.Error())
		return nil
	}
	layout := "Mon 2006-01-02 15:04 MST"
	if ev.AllDay {
		layout = "Mon 2006-01-02"
	}
	fmt.Fprintf(w, "Next %d occurrence(s):\n", len(occ))
	for _, t := range occ {
		fmt.Fprintf(w, "  %s\n", t.Format(layout))
	}
	return nil
}
