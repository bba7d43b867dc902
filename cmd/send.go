package cmd

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/felo/chatfiles/internal/scanner"
	"github.com/spf13/cobra"
)

var (
	sendText string
	sendRole string
	sendDir  string
)

var sendCmd = &cobra.Command{
	Use:   "send [files...]",
	Short: "Send a message with optional file attachments",
	Long: `Send posts a new message to the server. Attachments are given as file
arguments, or collected from a directory tree with --dir. Each file's
content is extracted to text on the server and embedded in the message.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		files := append([]string{}, args...)

		if sendDir != "" {
			s := scanner.NewScanner(sendDir)
			err := s.ScanWithCallback(func(path string, index, total int) error {
				fmt.Printf("Adding file %d/%d: %s\n", index, total, path)
				files = append(files, filepath.Join(s.GetRootPath(), filepath.FromSlash(path)))
				return nil
			})
			if err != nil {
				return fmt.Errorf("failed to scan directory: %w", err)
			}
		}

		if strings.TrimSpace(sendText) == "" && len(files) == 0 {
			return fmt.Errorf("nothing to send: provide --text or at least one file")
		}

		msg, err := postMessage(sendText, sendRole, files)
		if err != nil {
			return err
		}

		fmt.Printf("Created message %d (%s)\n", msg.ID, msg.Role)
		for _, att := range msg.Attachments {
			fmt.Printf("  [%d] %s\n", att.Index, att.Name)
		}
		return nil
	},
}

func init() {
	sendCmd.Flags().StringVarP(&sendText, "text", "t", "", "typed message text")
	sendCmd.Flags().StringVar(&sendRole, "role", "user", "message role (user or assistant)")
	sendCmd.Flags().StringVarP(&sendDir, "dir", "d", "", "attach every file found under this directory")
	rootCmd.AddCommand(sendCmd)
}

// postMessage uploads text and files as a multipart request and returns
// the created message
func postMessage(text, role string, paths []string) (*messageView, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if text != "" {
		if err := w.WriteField("text", text); err != nil {
			return nil, err
		}
	}
	if role != "" {
		if err := w.WriteField("role", role); err != nil {
			return nil, err
		}
	}
	for _, path := range paths {
		if err := addFilePart(w, path); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	resp, err := apiClient.Post(apiURL("/api/messages"), w.FormDataContentType(), &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to reach server: %w", err)
	}
	defer resp.Body.Close()

	var msg messageView
	if err := decodeResponse(resp, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func addFilePart(w *multipart.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	part, err := w.CreateFormFile("files", filepath.Base(path))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return nil
}
