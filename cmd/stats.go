package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show store statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		var out statsResponse
		if err := getJSON("/api/stats", &out); err != nil {
			return err
		}

		fmt.Printf("Messages:          %d\n", out.TotalMessages)
		fmt.Printf("With attachments:  %d\n", out.WithAttachments)
		fmt.Printf("Attachments:       %d\n", out.TotalAttachments)
		if out.LastMessageAt != nil {
			fmt.Printf("Last message:      %s\n", out.LastMessageAt.Local().Format("2006-01-02 15:04:05"))
		}
		if out.LastReindexAt != nil {
			fmt.Printf("Last reindex:      %s\n", out.LastReindexAt.Local().Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
