package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/binhbb2204/BookHub/cli/config"
	"github.com/spf13/cobra"
)

var systemCmd = &cobra.Command{
	Use:   "system",
	Short: "System information",
	Long:  `Display system information and diagnostics.`,
}

// probe returns the HTTP status and the "status"/"reason" fields of a
// health endpoint.
func probe(client *http.Client, url string) (int, string, error) {
	resp, err := client.Get(url)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	var body struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	}
	json.NewDecoder(resp.Body).Decode(&body)

	detail := body.Status
	if body.Reason != "" {
		detail += " (" + body.Reason + ")"
	}
	return resp.StatusCode, detail, nil
}

var systemInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show system info",
	Long:  `Display detailed system information including OS, architecture, and server status.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("System Information:")
		fmt.Println("-------------------")
		fmt.Printf("OS: %s\n", runtime.GOOS)
		fmt.Printf("Architecture: %s\n", runtime.GOARCH)
		fmt.Printf("Go Version: %s\n", runtime.Version())
		fmt.Printf("CPUs: %d\n", runtime.NumCPU())

		cfg, err := config.Load()
		if err != nil {
			fmt.Println("\nConfiguration: Not initialized")
			fmt.Println("\nServer Connectivity:")
			fmt.Println("  Status: Unknown (Config error)")
			return nil
		}

		path, _ := config.GetConfigPath()
		fmt.Println("\nConfiguration:")
		fmt.Printf("  Config Path: %s\n", path)
		fmt.Printf("  Server: %s\n", cfg.ServerURL())
		if cfg.User.Username != "" {
			fmt.Printf("  Logged in as: %s\n", cfg.User.Username)
		} else {
			fmt.Println("  Logged in as: (nobody)")
		}

		fmt.Println("\nServer Connectivity:")
		client := &http.Client{Timeout: 2 * time.Second}
		for _, endpoint := range []string{"/health", "/readyz"} {
			code, detail, err := probe(client, cfg.ServerURL()+endpoint)
			switch {
			case err != nil:
				fmt.Printf("  %-8s ✗ Unreachable (%s)\n", endpoint, err.Error())
			case code == http.StatusOK:
				fmt.Printf("  %-8s ✓ %s (HTTP %d)\n", endpoint, detail, code)
			default:
				fmt.Printf("  %-8s ⚠ %s (HTTP %d)\n", endpoint, detail, code)
			}
		}

		return nil
	},
}

func init() {
	systemCmd.AddCommand(systemInfoCmd)
}
