package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╦  ╦╦╦═╗╔═╗╔═╗
  ╚╗╔╝║╠╦╝║╣ ║ ║
   ╚╝ ╩╩╚═╚═╝╚═╝
`

func main() {
	rootCmd := &cobra.Command{
		Use:   "vireo",
		Short: "Server-driven reactive UI for Go",
		Long: `Vireo is a server-driven reactive UI runtime for Go.

Components render on the server, state changes propagate through a
reactive scheduler, and a thin WebSocket client applies binary DOM
patches in the browser:

  • Reactive state with watchers and computed values
  • Virtual DOM diffing with keyed reconciliation
  • Live sessions over a binary patch protocol
  • Static export for pages without server state`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		benchCmd(),
		exportCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

// printBanner prints the Vireo ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Printf("\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}

// errorMsg prints an error message.
func errorMsg(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "\033[31m✗\033[0m %s\n", fmt.Sprintf(format, args...))
}
