// Command witsmlserver is a small administrative CLI over the channel
// engine: inspecting and tuning its configuration, and exercising a
// bolt-backed engine against a home directory on disk.
//
// Logging:
//   - Base logger is created here with output format and level
//   - Logger is passed to all components via dependency injection
//   - No global slog configuration (no slog.SetDefault)
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nilsbenson/witsml-server/internal/logging"
)

var version = "dev"

func main() {
	base := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	filter := logging.NewComponentFilterHandler(base, slog.LevelInfo)
	logger := slog.New(filter)

	rootCmd := &cobra.Command{
		Use:   "witsmlserver",
		Short: "Channel-data engine administrative CLI",
	}
	rootCmd.PersistentFlags().String("home", defaultHome(), "engine home directory (bbolt database + config file)")

	rootCmd.AddCommand(
		newConfigCmd(logger),
		newVersionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}
}

// defaultHome returns the platform config directory plus a "witsmlserver"
// subdirectory, falling back to ".witsmlserver" in the working directory if
// the platform default cannot be resolved.
func defaultHome() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".witsmlserver"
	}
	return dir + string(os.PathSeparator) + "witsmlserver"
}
