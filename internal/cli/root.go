// Package cli implements the rbxsim command-line interface.
// Apart from `serve`, every command is a thin HTTP client against the
// locally running daemon.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rbxsim/rbxsim/internal/daemon"
)

var rootCmd = &cobra.Command{
	Use:   "rbxsim",
	Short: "A fictional RBX currency simulator",
	Long: `rbxsim is an offline, single-user RBX currency simulator.
It keeps a local wallet with a transaction history and a fun zone of
daily-limited reward activities. Everything is fictional and stays on
this machine — RBX has no real-world value.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// ─── Daemon Client Helpers ──────────────────────────────────────────────────

// apiBase resolves the daemon address from the config file.
func apiBase() (string, error) {
	dir, err := daemon.Home()
	if err != nil {
		return "", err
	}
	cfg, err := daemon.Load(daemon.ConfigPath(dir))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("http://%s:%d", cfg.API.Host, cfg.API.Port), nil
}

var httpClient = &http.Client{Timeout: 10 * time.Second}

// callDaemon issues a request against the daemon and decodes the JSON reply
// into out (when out is non-nil). Non-2xx replies become errors carrying the
// response body.
func callDaemon(method, path string, body io.Reader, out interface{}) error {
	base, err := apiBase()
	if err != nil {
		return err
	}

	req, err := http.NewRequest(method, base+path, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("is the daemon running? start it with 'rbxsim serve': %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("daemon replied %s: %s", resp.Status, strings.TrimSpace(string(raw)))
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode daemon reply: %w", err)
		}
	}
	return nil
}

// jsonBody encodes v for a request body.
func jsonBody(v interface{}) (io.Reader, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return strings.NewReader(string(raw)), nil
}
