package cmd

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var (
	searchLimit       int
	searchRole        string
	searchAttachments bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search message text and attachment names",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")

		params := url.Values{}
		params.Set("q", query)
		params.Set("limit", strconv.Itoa(searchLimit))
		if searchRole != "" {
			params.Set("role", searchRole)
		}
		if searchAttachments {
			params.Set("attachments", "true")
		}

		var out searchResponse
		if err := getJSON("/api/search?"+params.Encode(), &out); err != nil {
			return err
		}

		if out.Count == 0 {
			fmt.Println("No matches.")
			return nil
		}

		fmt.Printf("%-6s %-10s %-6s %s\n", "ID", "ROLE", "FILES", "SNIPPET")
		for _, r := range out.Results {
			fmt.Printf("%-6d %-10s %-6d %s\n",
				r.ID, r.Role, r.AttachmentCount, firstLine(stripMarks(r.Snippet), 80))
		}
		fmt.Printf("\n%d matches\n", out.Count)
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 20, "maximum number of results")
	searchCmd.Flags().StringVar(&searchRole, "role", "", "restrict results to one role")
	searchCmd.Flags().BoolVar(&searchAttachments, "attachments", false, "only messages with attachments")
	rootCmd.AddCommand(searchCmd)
}
