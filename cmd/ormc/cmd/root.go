package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version   string
	gitCommit string
	buildDate string
)

var rootCmd = &cobra.Command{
	Use:   "ormc",
	Short: "Compile declarative routing rules into cache-tier and load-balancer configs",
	Long: `ormc reads YAML routing rule documents and a Globals document, validates
them against the bundled schema, checks same-domain rules for colliding
paths, and lowers the surviving rules into the structured inputs a
text-template engine renders into VCL-style cache-tier configuration and
load-balancer configuration.

Environment variables override any flag except --check/--no-check using
the ORMC_ prefix, e.g. ORMC_OUTPUT_DIR overrides --output-dir.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion records build metadata for the version subcommand.
func SetVersion(v, commit, date string) {
	version = v
	gitCommit = commit
	buildDate = date
}

func init() {
	viper.SetEnvPrefix("ormc")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "ormc version %s\n", version)
		fmt.Fprintf(out, "commit: %s\n", gitCommit)
		fmt.Fprintf(out, "built: %s\n", buildDate)
	},
}
