package cli

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/binhbb2204/BookHub/cli/config"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	username string
	email    string
)

type authResult struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  `Register, login, and logout commands for BookHub authentication.`,
}

func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	b, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(b), nil
}

func anonymousClient() (*apiClient, error) {
	cfg, err := config.Load()
	if err != nil {
		printError("Configuration not initialized")
		fmt.Println("Run: bookhub init")
		return nil, err
	}
	return newAPIClient(cfg), nil
}

var authRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a new account",
	Long:  `Register a new BookHub account with username and email.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if username == "" {
			return fmt.Errorf("username is required (--username)")
		}
		if email == "" {
			return fmt.Errorf("email is required (--email)")
		}

		password, err := readPassword("Password: ")
		if err != nil {
			return err
		}
		confirm, err := readPassword("Confirm password: ")
		if err != nil {
			return err
		}
		if password != confirm {
			printError("Passwords do not match")
			return fmt.Errorf("passwords do not match")
		}

		client, err := anonymousClient()
		if err != nil {
			return err
		}

		var res authResult
		_, err = client.decode(http.MethodPost, "/v1/auth/register", map[string]string{
			"username": username,
			"email":    email,
			"password": password,
		}, &res)
		if err != nil {
			msg := err.Error()
			printError("Registration failed: " + msg)
			switch {
			case strings.Contains(msg, "already exists"):
				fmt.Printf("Try: bookhub auth login --username %s\n", username)
			case strings.Contains(msg, "weak"):
				fmt.Println("Password must be at least 8 characters with mixed case and numbers")
			}
			return fmt.Errorf("registration failed")
		}

		if err := config.UpdateUserToken(res.Username, res.UserID, res.Token); err != nil {
			fmt.Println("Warning: Failed to save token to config")
		}

		printSuccess("Account created successfully!")
		fmt.Printf("User ID: %s\n", res.UserID)
		fmt.Printf("Username: %s\n", res.Username)
		fmt.Printf("Email: %s\n", res.Email)
		fmt.Printf("Created: %s\n", res.CreatedAt.Format("2006-01-02 15:04:05 MST"))
		fmt.Println("\nYou are now logged in!")
		fmt.Println("Try: bookhub book list")
		return nil
	},
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login to your account",
	Long:  `Login to your BookHub account with username or email.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if username == "" && email == "" {
			return fmt.Errorf("username or email is required (--username or --email)")
		}

		password, err := readPassword("Password: ")
		if err != nil {
			return err
		}

		client, err := anonymousClient()
		if err != nil {
			return err
		}

		body := map[string]string{"password": password}
		if username != "" {
			body["username"] = username
		}
		if email != "" {
			body["email"] = email
		}

		var res authResult
		if _, err := client.decode(http.MethodPost, "/v1/auth/login", body, &res); err != nil {
			var apiErr *apiError
			if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
				printError("Login failed: " + apiErr.Message)
				fmt.Println("Check your username and password")
			} else {
				printError("Login failed: " + err.Error())
				fmt.Println("Check server status: bookhub system info")
			}
			return fmt.Errorf("login failed")
		}

		if err := config.UpdateUserToken(res.Username, res.UserID, res.Token); err != nil {
			fmt.Println("Warning: Failed to save token to config")
		}

		printSuccess("Login successful!")
		fmt.Printf("Welcome back, %s!\n", res.Username)
		fmt.Printf("  Token expires: %s\n", res.ExpiresAt.Format("2006-01-02 15:04:05 MST"))
		return nil
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Logout from your account",
	Long:  `Remove the stored token from the local configuration.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			printError("Configuration not found")
			fmt.Println("Run: bookhub init")
			return err
		}

		if cfg.User.Token == "" {
			printInfo("You are not logged in")
			return nil
		}

		currentUser := cfg.User.Username
		if err := config.ClearUserToken(); err != nil {
			return fmt.Errorf("failed to logout: %w", err)
		}

		printSuccess("Logged out successfully!")
		fmt.Printf("Goodbye, %s!\n", currentUser)
		return nil
	},
}

var authChangePasswordCmd = &cobra.Command{
	Use:   "change-password",
	Short: "Change your account password",
	Long:  `Change your BookHub account password with verification of current password.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := loggedInClient()
		if err != nil {
			return err
		}

		current, err := readPassword("Current password: ")
		if err != nil {
			return err
		}
		next, err := readPassword("New password: ")
		if err != nil {
			return err
		}
		confirm, err := readPassword("Confirm new password: ")
		if err != nil {
			return err
		}
		if next != confirm {
			printError("Passwords do not match")
			return fmt.Errorf("new passwords do not match")
		}

		_, err = client.decode(http.MethodPost, "/v1/auth/change-password", map[string]string{
			"currentPassword": current,
			"newPassword":     next,
		}, nil)
		if err != nil {
			printError("Failed to change password: " + err.Error())
			return fmt.Errorf("password change failed")
		}

		printSuccess("Password changed successfully!")
		return nil
	},
}

func init() {
	authRegisterCmd.Flags().StringVarP(&username, "username", "u", "", "Username")
	authRegisterCmd.Flags().StringVarP(&email, "email", "e", "", "Email address")
	authLoginCmd.Flags().StringVarP(&username, "username", "u", "", "Username")
	authLoginCmd.Flags().StringVarP(&email, "email", "e", "", "Email address")

	authCmd.AddCommand(authRegisterCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authChangePasswordCmd)
}
