package config

import (
	"github.com/spf13/cobra"
)

// Config holds application configuration
type Config struct {
	// Server settings
	Host string
	Port string

	// Database settings
	DBPath string

	// Upload limit in bytes for POST /api/messages
	MaxUploadBytes int64

	// Page cap for PDF extraction, 0 means uncapped
	MaxPDFPages int
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Host:           "127.0.0.1",
		Port:           "8787",
		DBPath:         "./chatfiles.db",
		MaxUploadBytes: 32 << 20, // 32 MiB
		MaxPDFPages:    0,
	}
}

// RegisterFlags binds the config fields to flags on the given command,
// with defaults taken from Default()
func RegisterFlags(cmd *cobra.Command) {
	def := Default()
	cmd.Flags().String("host", def.Host, "interface to listen on")
	cmd.Flags().String("port", def.Port, "port to listen on")
	cmd.Flags().String("db", def.DBPath, "path to the SQLite database")
	cmd.Flags().Int64("max-upload", def.MaxUploadBytes, "maximum upload size in bytes")
	cmd.Flags().Int("max-pdf-pages", def.MaxPDFPages, "maximum PDF pages to extract, 0 for all")
}

// FromCommand builds a Config from the flags registered by RegisterFlags
func FromCommand(cmd *cobra.Command) (*Config, error) {
	cfg := Default()

	var err error
	if cfg.Host, err = cmd.Flags().GetString("host"); err != nil {
		return nil, err
	}
	if cfg.Port, err = cmd.Flags().GetString("port"); err != nil {
		return nil, err
	}
	if cfg.DBPath, err = cmd.Flags().GetString("db"); err != nil {
		return nil, err
	}
	if cfg.MaxUploadBytes, err = cmd.Flags().GetInt64("max-upload"); err != nil {
		return nil, err
	}
	if cfg.MaxPDFPages, err = cmd.Flags().GetInt("max-pdf-pages"); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Address returns the full server address
func (c *Config) Address() string {
	return c.Host + ":" + c.Port
}

// URL returns the full server URL
func (c *Config) URL() string {
	return "http://" + c.Address()
}
