package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"p3a-hq/manifest/pkg/mdl/grammar"
)

var (
	// Version is the semantic version (set by build flags)
	Version = "0.1.0"
	// GitCommit is the git commit hash (set by build flags)
	GitCommit = "unknown"
	// BuildDate is the build timestamp (set by build flags)
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print detailed version information including Git commit, build date and supported grammars.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "p3ac %s\n", Version)
		fmt.Fprintf(out, "Git Commit: %s\n", GitCommit)
		fmt.Fprintf(out, "Build Date: %s\n", BuildDate)
		fmt.Fprintf(out, "Go Version: %s\n", runtime.Version())
		fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		for _, g := range grammar.Generations() {
			marker := ""
			if g == grammar.DefaultGeneration {
				marker = " (default)"
			}
			fmt.Fprintf(out, "Grammar: %s %s%s\n", g, g.Name(), marker)
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
