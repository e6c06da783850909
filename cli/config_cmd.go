package cli

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/binhbb2204/BookHub/cli/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `View and modify BookHub CLI configuration.`,
}

func maskToken(token string) string {
	if len(token) <= 8 {
		return strings.Repeat("*", len(token))
	}
	return token[:4] + "..." + token[len(token)-4:]
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current configuration values.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			printError("Configuration not initialized")
			fmt.Println("Run: bookhub init")
			return err
		}

		fmt.Println("Current Configuration:")
		fmt.Println("----------------------")

		v := reflect.ValueOf(*cfg)
		t := v.Type()

		for i := 0; i < v.NumField(); i++ {
			field := v.Field(i)
			section := t.Field(i).Tag.Get("yaml")

			fmt.Printf("[%s]\n", section)
			for j := 0; j < field.NumField(); j++ {
				tag := field.Type().Field(j).Tag.Get("yaml")
				value := field.Field(j).Interface()
				if section == "user" && tag == "token" {
					value = maskToken(field.Field(j).String())
				}
				fmt.Printf("  %s: %v\n", tag, value)
			}
			fmt.Println()
		}

		return nil
	},
}

// applySetting updates one section.key value in cfg.
func applySetting(cfg *config.Config, key, value string) error {
	parts := strings.Split(key, ".")
	if len(parts) != 2 {
		return fmt.Errorf("invalid key format. Use 'section.key'")
	}

	switch strings.ToLower(parts[0]) + "." + strings.ToLower(parts[1]) {
	case "server.host":
		cfg.Server.Host = value
	case "server.http_port":
		v, err := strconv.Atoi(value)
		if err != nil || v <= 0 || v > 65535 {
			return fmt.Errorf("invalid port for http_port")
		}
		cfg.Server.HTTPPort = v
	case "server.tls":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for tls")
		}
		cfg.Server.TLS = v
	case "logging.level":
		cfg.Logging.Level = value
	case "logging.path":
		cfg.Logging.Path = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Long:  `Set a configuration value. Key should be in format 'section.key' (e.g., server.host).`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		cfg, err := config.Load()
		if err != nil {
			printError("Configuration not initialized")
			return err
		}

		if err := applySetting(cfg, key, value); err != nil {
			return err
		}

		if err := config.Save(cfg); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		printSuccess(fmt.Sprintf("Updated %s to %s", key, value))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
