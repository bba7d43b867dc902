package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

var showRaw bool

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a message with its attachments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid message id: %s", args[0])
		}

		if showRaw {
			return showRawBody(id)
		}

		var msg messageView
		if err := getJSON(fmt.Sprintf("/api/messages/%d", id), &msg); err != nil {
			return err
		}

		fmt.Printf("Message %d (%s), created %s\n",
			msg.ID, msg.Role, msg.CreatedAt.Local().Format("2006-01-02 15:04:05"))
		if msg.DisplayText != "" {
			fmt.Println()
			fmt.Println(msg.DisplayText)
		}
		if len(msg.Attachments) > 0 {
			fmt.Println()
			fmt.Println("Attachments:")
			for _, att := range msg.Attachments {
				fmt.Printf("  [%d] %s\n", att.Index, att.Name)
			}
		}
		return nil
	},
}

func init() {
	showCmd.Flags().BoolVar(&showRaw, "raw", false, "print the stored body verbatim, envelopes included")
	rootCmd.AddCommand(showCmd)
}

// showRawBody streams the raw stored body to stdout
func showRawBody(id int64) error {
	resp, err := apiClient.Get(apiURL(fmt.Sprintf("/api/messages/%d/raw", id)))
	if err != nil {
		return fmt.Errorf("failed to reach server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiError(resp)
	}
	if _, err := io.Copy(os.Stdout, resp.Body); err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	return nil
}
