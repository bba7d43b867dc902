package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild derived search data from stored message bodies",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := apiClient.Post(apiURL("/api/reindex"), "application/json", nil)
		if err != nil {
			return fmt.Errorf("failed to reach server: %w", err)
		}
		defer resp.Body.Close()

		var out reindexResponse
		if err := decodeResponse(resp, &out); err != nil {
			return err
		}

		fmt.Printf("Reindexed %d messages in %s: %d updated, %d unchanged, %d failed\n",
			out.Total, out.Duration, out.Updated, out.Unchanged, out.Failed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reindexCmd)
}
