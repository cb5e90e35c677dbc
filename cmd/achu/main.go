package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"

	"github.com/yurifrl/achu/pkg/config"
	"github.com/yurifrl/achu/pkg/csv"
	"github.com/yurifrl/achu/pkg/executors"
	"github.com/yurifrl/achu/pkg/nacha"
	"github.com/yurifrl/achu/pkg/parser"
	"github.com/yurifrl/achu/pkg/plan"
	"github.com/yurifrl/achu/pkg/service"
	"github.com/yurifrl/achu/pkg/ynab"
)

const dateLayout = "2006-01-02"

var (
	cfgFile    string
	dump       bool
	mirrorDate string
	cliFilters filters
)

var rootCmd = &cobra.Command{
	Use:          "achu",
	Short:        "Render NACHA ACH files from YAML plans",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		// Show help when no subcommand is provided
		return cmd.Help()
	},
}

var renderCmd = &cobra.Command{
	Use:   "render <plan_file>",
	Short: "Render a plan to a NACHA file (stdout unless -o is set)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		_, f, err := load(args[0], cfg, logger)
		if err != nil {
			return err
		}

		exec := executors.New(logger, cfg, nil)
		if out := cfg.GetOutputPath(); out != "" {
			return exec.Apply(f, out)
		}
		return exec.Render(f, os.Stdout)
	},
}

var previewCmd = &cobra.Command{
	Use:   "preview <plan_file>",
	Short: "Preview the entries and totals of a plan (dry-run)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		p, f, err := load(args[0], cfg, logger)
		if err != nil {
			return err
		}

		fmt.Printf("Plan preview for %s\n", args[0])
		p.Print(os.Stdout)
		fmt.Println()
		report := executors.New(logger, cfg, nil).Plan(f, os.Stdout)
		if dump {
			pp.Println(p)
			pp.Println(report.Batches)
		}
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register <plan_file>",
	Short: "Print the entries of a plan as CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		_, f, err := load(args[0], cfg, logger)
		if err != nil {
			return err
		}

		report := executors.BuildReport(f)
		fmt.Print(string(csv.Create(report.Items, cliFilters.toFilterFunc())))
		return nil
	},
}

var mirrorCmd = &cobra.Command{
	Use:   "mirror <plan_file>",
	Short: "Record the entries of a plan as YNAB transactions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		token := cfg.Token()
		if token == "" {
			return fmt.Errorf("ynab token not set, export %s", cfg.YNAB.TokenEnv)
		}

		date := time.Now()
		if mirrorDate != "" {
			if date, err = time.Parse(dateLayout, mirrorDate); err != nil {
				return fmt.Errorf("invalid --date %q: %w", mirrorDate, err)
			}
		}

		_, f, err := load(args[0], cfg, logger)
		if err != nil {
			return err
		}
		created, err := executors.New(logger, cfg, ynab.New(token)).Mirror(f, date)
		if err != nil {
			return err
		}
		fmt.Printf("created %d transaction(s)\n", created)
		return nil
	},
}

var renderDirCmd = &cobra.Command{
	Use:   "render-dir <directory>",
	Short: "Render every YAML plan in a directory to <name>.ach",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		written, err := service.NewProcessor(cfg, logger).ProcessDirectory(args[0], time.Now())
		if err != nil {
			return err
		}
		for _, path := range written {
			fmt.Println(path)
		}
		return nil
	},
}

// setup loads the configuration and builds the logger it asks for.
func setup(cmd *cobra.Command) (*config.Config, *log.Logger, error) {
	cfg, err := config.Build(cfgFile, cmd.Flags())
	if err != nil {
		return nil, nil, err
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "achu",
	})
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	logger.SetLevel(level)
	if level == log.DebugLevel {
		logger.SetReportCaller(true)
	}
	return cfg, logger, nil
}

// load reads a plan and builds its file, stamping it with the current time
// when the plan carries no created_at.
func load(path string, cfg *config.Config, logger *log.Logger) (*plan.Plan, *nacha.File, error) {
	p, err := plan.Load(path)
	if err != nil {
		return nil, nil, err
	}
	f, err := p.Build(plan.BuildOptions{
		Now:      time.Now(),
		Defaults: cfg.File,
		Parser:   parser.New(logger),
	})
	if err != nil {
		return nil, nil, err
	}
	return p, f, nil
}

func init() {
	// Global flags
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "", "Config file (default is ./achu.yaml)")
	pf.StringP("output", "o", "", "Output file for render, output directory for render-dir")
	pf.String("log-level", "info", "Log level (debug, info, warn, error)")
	pf.String("origin-id", "", "Immediate origin ID for the file header")
	pf.String("origin", "", "Immediate origin name for the file header")
	pf.String("dest-id", "", "Immediate destination ID for the file header")
	pf.String("dest", "", "Immediate destination name for the file header")
	pf.String("id-modifier", "", "File ID modifier")

	previewCmd.Flags().BoolVar(&dump, "dump", false, "Pretty print the decoded plan and batch summaries")

	registerCmd.Flags().Float64Var(&cliFilters.minAmount, "min", 0, "Minimum amount")
	registerCmd.Flags().Float64Var(&cliFilters.maxAmount, "max", 0, "Maximum amount")
	registerCmd.Flags().StringVar(&cliFilters.name, "name", "", "Filter by name (case insensitive)")
	registerCmd.Flags().StringVar(&cliFilters.kind, "kind", "", "Filter by kind (credit, debit, unclassified)")

	mirrorCmd.Flags().String("budget", "", "YNAB budget ID")
	mirrorCmd.Flags().String("account", "", "YNAB account ID")
	mirrorCmd.Flags().StringVar(&mirrorDate, "date", "", "Transaction date (YYYY-MM-DD, default today)")

	rootCmd.AddCommand(renderCmd, previewCmd, registerCmd, mirrorCmd, renderDirCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
