package cmd

import (
	"github.com/spf13/cobra"

	_ "github.com/joho/godotenv/autoload"

	"github.com/bnema/skiff/internal/common"
)

var rootCmd = &cobra.Command{
	Use:   "skiff",
	Short: "skiff - browser-based file manager with a GitHub backend",
	Long: `Skiff is a single-binary file manager: browse and upload local files,
browse your GitHub repositories, and mint time-limited share links that
serve private files to anonymous visitors.`,
}

// ExecuteCLI wires the commands and runs the CLI.
func ExecuteCLI(build, commit, date string) {
	buildInfo := &common.BuildConfig{
		BuildVersion: build,
		BuildCommit:  commit,
		BuildDate:    date,
	}

	rootCmd.AddCommand(NewServeCommand(buildInfo))
	rootCmd.AddCommand(NewShareCommand())
	rootCmd.AddCommand(NewVersionCommand(buildInfo))

	cobra.CheckErr(rootCmd.Execute())
}
