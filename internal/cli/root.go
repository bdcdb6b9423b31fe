// Package cli provides the command-line interface for ShiftGuard.
package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ccollicutt/shiftguard/internal/cli/commands"
	"github.com/ccollicutt/shiftguard/internal/logging"
)

// Execute runs the root command and returns the exit code.
func Execute() int {
	return Run(os.Args[1:], os.Stdout, os.Stderr)
}

// Run executes the command line args with the given output streams and
// returns the exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	commands.ExitCode = 0

	rootCmd := NewRootCommand()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.Execute(); err != nil {
		// Print error to stderr (SilenceErrors prevents Cobra from doing this)
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2 // Configuration or runtime error
	}
	return commands.ExitCode
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	var (
		logLevel string
		envFile  string
		log      *zap.Logger
	)

	rootCmd := &cobra.Command{
		Use:   "shiftguard",
		Short: "Check timecards for labor-compliance violations",
		Long: `ShiftGuard is a batch timecard analysis tool that flags shifts breaking
labor-compliance rules.

It identifies:
  - Consecutive days (too many shifts inside a rolling calendar window)
  - Short rest gaps (a new shift starting too soon after the previous one)
  - Long shifts (worked hours above the daily maximum)

Timecards are read from CSV, TSV and XLSX exports or from a SQL query.
Exit status is 0 when no findings are reported, 1 when findings are
reported, and 2 on configuration or input errors.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadEnvFile(envFile, cmd.Flags().Changed("env-file")); err != nil {
				return err
			}

			l, err := logging.New(logLevel, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			log = l
			commands.SetLogger(log)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if log != nil {
				_ = log.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Load environment variables from this file if it exists")

	// Add subcommands
	rootCmd.AddCommand(commands.NewAnalyzeCommand())
	rootCmd.AddCommand(commands.NewDetectCommand())
	rootCmd.AddCommand(commands.NewDiagnoseCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}

// loadEnvFile loads KEY=VALUE pairs without overriding the real environment.
// A missing default file is not an error; a missing explicit one is.
func loadEnvFile(path string, explicit bool) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return nil
	}
	return fmt.Errorf("loading env file: %w", err)
}
