package cmd

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	listLimit  int
	listOffset int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored messages, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		params := url.Values{}
		params.Set("limit", strconv.Itoa(listLimit))
		if listOffset > 0 {
			params.Set("offset", strconv.Itoa(listOffset))
		}

		var out listResponse
		if err := getJSON("/api/messages?"+params.Encode(), &out); err != nil {
			return err
		}

		if out.Total == 0 {
			fmt.Println("No messages stored.")
			return nil
		}

		fmt.Printf("%-6s %-10s %-6s %-20s %s\n", "ID", "ROLE", "FILES", "CREATED", "TEXT")
		for _, msg := range out.Messages {
			fmt.Printf("%-6d %-10s %-6d %-20s %s\n",
				msg.ID, msg.Role, msg.AttachmentCount,
				msg.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				firstLine(msg.DisplayText, 60))
		}
		fmt.Printf("\nShowing %d of %d messages\n", len(out.Messages), out.Total)
		return nil
	},
}

func init() {
	listCmd.Flags().IntVar(&listLimit, "limit", 20, "maximum number of messages to list")
	listCmd.Flags().IntVar(&listOffset, "offset", 0, "number of messages to skip")
	rootCmd.AddCommand(listCmd)
}
