package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var serverURL string

var rootCmd = &cobra.Command{
	Use:   "chatfiles",
	Short: "Store and search chat messages with extracted file attachments",
	Long: `chatfiles stores chat messages whose file attachments are converted to
text and embedded in the message body. It runs as an HTTP server (serve)
and ships client commands that talk to a running server.`,
	SilenceUsage: true,
}

// Execute runs the root command and exits on error
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://127.0.0.1:8787", "base URL of the chatfiles server")
}
