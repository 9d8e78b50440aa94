package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/svt/orm/internal/metrics"
	"github.com/svt/orm/internal/obslog"
	"github.com/svt/orm/internal/pipeline"
	"github.com/svt/orm/internal/testrunner"
)

var (
	flagOutputDir        string
	flagRulesPath        string
	flagGlobalsPath      string
	flagCachePath        string
	flagCheck            bool
	flagNoCheck          bool
	flagTestTarget       string
	flagTestTargetInsecure bool
	flagLogLevel         string
	flagLogFormat        string
	flagWorkers          int
)

func bindSharedFlags(fs *cobra.Command) {
	fs.Flags().StringVarP(&flagOutputDir, "output-dir", "o", "out", "directory emitted configs are written to")
	fs.Flags().StringVarP(&flagRulesPath, "orm-rules-path", "r", "namespaces/**/*.yml", "glob pattern matching rule YAML files")
	fs.Flags().StringVarP(&flagGlobalsPath, "globals-path", "G", "globals.yml", "path to the Globals YAML document")
	fs.Flags().StringVar(&flagCachePath, "cache-path", "", "path to the persistent FSM cache database; unset disables the cache")
	fs.Flags().StringVarP(&flagTestTarget, "test-target", "t", "", "scheme://host[:port], or bare host[:port] for plain http, to run the rules' tests blocks against after emission")
	fs.Flags().BoolVarP(&flagTestTargetInsecure, "test-target-insecure", "k", false, "skip TLS certificate verification when running tests")
	fs.Flags().StringVar(&flagLogLevel, "log-level", "info", "log level: debug, info, warn, error")
	fs.Flags().StringVar(&flagLogFormat, "log-format", "json", "log format: json or text")
	fs.Flags().IntVar(&flagWorkers, "workers", 0, "worker pool size for FSM construction (0 = GOMAXPROCS)")

	for _, name := range sharedFlagNames {
		_ = viper.BindPFlag(name, fs.Flags().Lookup(name))
	}
}

var sharedFlagNames = []string{"output-dir", "orm-rules-path", "globals-path", "cache-path", "test-target", "test-target-insecure", "log-level", "log-format", "workers"}

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Run the full pipeline: parse, validate, collide, and emit",
	RunE:  runCompile,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate and collision-check rules without emitting configs (alias for compile -c)",
	RunE: func(cmd *cobra.Command, args []string) error {
		flagCheck = true
		return runCompile(cmd, args)
	},
}

func init() {
	bindSharedFlags(compileCmd)
	compileCmd.Flags().BoolVarP(&flagCheck, "check", "c", false, "validate and collision-check only, skip emission")
	compileCmd.Flags().BoolVarP(&flagNoCheck, "no-check", "C", false, "explicitly request full compile (default); mutually exclusive with --check")
	compileCmd.MarkFlagsMutuallyExclusive("check", "no-check")

	bindSharedFlags(checkCmd)
}

func runCompile(cmd *cobra.Command, args []string) error {
	// compile and check register the same keys on separate flag sets and
	// viper keeps only the last binding per key, so bind the running
	// command's flags before reading any of them.
	for _, name := range sharedFlagNames {
		_ = viper.BindPFlag(name, cmd.Flags().Lookup(name))
	}

	log, _ := obslog.New(obslog.Config{
		Level:  viper.GetString("log-level"),
		Format: viper.GetString("log-format"),
		Output: "stdout",
	})

	m := metrics.New()

	cfg := pipeline.Config{
		RulesGlob:   viper.GetString("orm-rules-path"),
		GlobalsPath: viper.GetString("globals-path"),
		CachePath:   viper.GetString("cache-path"),
		CheckOnly:   flagCheck,
		Workers:     viper.GetInt("workers"),
	}

	result, err := pipeline.Run(cmd.Context(), cfg, log, m)
	if err != nil {
		return fmt.Errorf("ormc: %w", err)
	}

	for _, d := range result.Report.Diagnostics {
		log.Error(d.Message, "kind", d.Kind, "severity", d.Severity, "location", d.Location.String())
	}

	if result.Report.HasFatal() {
		os.Exit(result.Report.ExitCode())
	}

	if !flagCheck && result.CacheTier != nil {
		if err := writeEmittedConfigs(viper.GetString("output-dir"), result); err != nil {
			return fmt.Errorf("ormc: writing emitted configs: %w", err)
		}
	}

	if target := viper.GetString("test-target"); target != "" && result.Merged != nil {
		if err := runTests(cmd.Context(), target, viper.GetBool("test-target-insecure"), result, log); err != nil {
			return fmt.Errorf("ormc: running tests: %w", err)
		}
	}

	return nil
}

func runTests(ctx context.Context, target string, insecure bool, result *pipeline.Result, log *slog.Logger) error {
	runner := testrunner.New(testrunner.Config{Target: target, InsecureTLS: insecure})
	results, err := runner.Run(ctx, result.Merged.Tests)
	if err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if !r.Passed {
			failed++
			fmt.Fprintf(os.Stderr, "FAIL %s: %s\n", r.Test.Name, r.Reason)
		}
	}
	log.Info("test run complete", "total", len(results), "failed", failed)
	if failed > 0 {
		os.Exit(1)
	}
	return nil
}
