package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	dirauditor "github.com/mattkeenan/dirauditor/pkg"
)

// options holds the command-line flags shared by all commands
type options struct {
	format          string
	color           string
	rebaseline      bool
	signatureLength int
	excludes        []string
	verbose         int
	debug           string
	configPath      string
	overrides       []string
}

// settings is the configuration after flags have been merged over the config file
type settings struct {
	printer     *printer
	auditorOpts []dirauditor.Option
}

func main() {
	if err := newRootCommand(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "dirauditor: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand(in io.Reader, out, errOut io.Writer) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "dirauditor [directory]",
		Short: "Detect modified, deleted, renamed and added files between runs",
		Long: `dirauditor records a fingerprint of every file in a directory tree in a
hidden .dirauditor file inside it. Each later run compares the tree with
that record, reports what changed, and replaces the record.

Without a directory argument the path is read from standard input.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAudit(cmd, opts, in, args)
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.format, "format", "human", "output format: human or json")
	flags.StringVar(&opts.color, "color", "auto", "colour output: auto, always or never")
	flags.BoolVar(&opts.rebaseline, "rebaseline", false, "replace a corrupt snapshot with a new baseline instead of failing")
	flags.IntVar(&opts.signatureLength, "signature-length", dirauditor.DefaultSignatureLength, "bytes sampled from the middle of each file")
	flags.StringArrayVar(&opts.excludes, "exclude", nil, "regular expression of relative paths to skip (repeatable)")
	flags.CountVarP(&opts.verbose, "verbose", "v", "increase verbosity (-v, -vv, -vvv)")
	flags.StringVar(&opts.debug, "debug", "", "comma-separated debug flags: scan, store, diff")
	flags.StringVar(&opts.configPath, "config", "", "configuration file (default <user config dir>/dirauditor/config)")
	flags.StringArrayVar(&opts.overrides, "set", nil, "override a configuration value as key:value (repeatable)")

	auditCmd := &cobra.Command{
		Use:   "audit [directory]",
		Short: "Compare the directory with its snapshot and record the new state",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAudit(cmd, opts, in, args)
		},
	}

	showCmd := &cobra.Command{
		Use:   "show [directory]",
		Short: "Print the snapshot stored for the directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, opts, in, args)
		},
	}

	dupesCmd := &cobra.Command{
		Use:   "dupes [directory]",
		Short: "List files in the directory that share the same content fingerprint",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDupes(cmd, opts, in, args)
		},
	}

	rootCmd.AddCommand(auditCmd, showCmd, dupesCmd)
	return rootCmd
}

func runAudit(cmd *cobra.Command, opts *options, in io.Reader, args []string) error {
	s, err := loadSettings(cmd, opts)
	if err != nil {
		return err
	}

	dir, err := resolveDirectory(args, in, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	auditor, err := dirauditor.NewAuditor(dir, s.auditorOpts...)
	if err != nil {
		return err
	}

	result, err := auditor.Audit()
	if result != nil {
		if renderErr := s.printer.Audit(result); renderErr != nil {
			return renderErr
		}
	}
	if err != nil {
		if errors.Is(err, dirauditor.ErrWriteFailure) {
			return fmt.Errorf("results above were not saved, the next run will compare against the previous snapshot: %w", err)
		}
		return err
	}
	return nil
}

func runShow(cmd *cobra.Command, opts *options, in io.Reader, args []string) error {
	s, err := loadSettings(cmd, opts)
	if err != nil {
		return err
	}

	dir, err := resolveDirectory(args, in, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	root, err := dirauditor.ValidateDirectory(dir)
	if err != nil {
		return err
	}

	snapshot, err := dirauditor.NewStore(root).Load()
	if err != nil {
		if errors.Is(err, dirauditor.ErrNoSnapshot) {
			return fmt.Errorf("%w recorded for %s, run an audit first", err, root)
		}
		return err
	}
	return s.printer.Snapshot(snapshot)
}

func runDupes(cmd *cobra.Command, opts *options, in io.Reader, args []string) error {
	s, err := loadSettings(cmd, opts)
	if err != nil {
		return err
	}

	dir, err := resolveDirectory(args, in, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	auditor, err := dirauditor.NewAuditor(dir, s.auditorOpts...)
	if err != nil {
		return err
	}

	snapshot, err := auditor.Scan()
	if err != nil {
		return err
	}
	return s.printer.Duplicates(snapshot.DuplicateGroups())
}

// loadConfig reads the file named by --config, or the per-user default
// file which is created on first use
func loadConfig(opts *options) (*dirauditor.Config, error) {
	if opts.configPath != "" {
		return dirauditor.LoadConfigFile(opts.configPath)
	}

	configDir, err := dirauditor.DefaultConfigDir()
	if err != nil {
		dirauditor.VerboseLog(1, "Using built-in defaults: %v", err)
		return dirauditor.DefaultConfig(), nil
	}
	return dirauditor.LoadConfig(configDir)
}

// loadSettings merges explicitly set flags over --set overrides over the config file
func loadSettings(cmd *cobra.Command, opts *options) (*settings, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyOverrides(opts.overrides); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	all := cfg.GetAllConfig()
	flags := cmd.Flags()

	format := all.Output.Format
	if flags.Changed("format") {
		format = opts.format
	}
	if err := dirauditor.ValidateOutputFormat(format); err != nil {
		return nil, err
	}

	color := all.Output.Color
	if flags.Changed("color") {
		color = opts.color
	}
	if err := dirauditor.ValidateColorMode(color); err != nil {
		return nil, err
	}

	level := all.Verbose.Level
	if flags.Changed("verbose") {
		level = opts.verbose
	}
	dirauditor.SetLogOutput(cmd.ErrOrStderr())
	dirauditor.SetVerboseLevel(level)

	debug := all.Verbose.Debug
	if flags.Changed("debug") {
		debug = opts.debug
	}
	dirauditor.SetDebugFlags(debug)

	auditorOpts := []dirauditor.Option{dirauditor.WithConfig(cfg)}
	if flags.Changed("signature-length") {
		auditorOpts = append(auditorOpts, dirauditor.WithSignatureLength(opts.signatureLength))
	}
	if len(opts.excludes) > 0 {
		auditorOpts = append(auditorOpts, dirauditor.WithExcludes(opts.excludes...))
	}
	if flags.Changed("rebaseline") {
		auditorOpts = append(auditorOpts, dirauditor.WithRebaseline(opts.rebaseline))
	}

	return &settings{
		printer:     newPrinter(cmd.OutOrStdout(), format, color),
		auditorOpts: auditorOpts,
	}, nil
}

// resolveDirectory returns the directory argument, prompting for one when absent
func resolveDirectory(args []string, in io.Reader, out io.Writer) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}

	fmt.Fprint(out, "Enter the full path of the directory to audit: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read directory path: %w", err)
	}
	return strings.TrimSpace(line), nil
}
