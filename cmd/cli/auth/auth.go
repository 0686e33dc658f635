package auth

import (
	"bufio"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/crucial707/blog-api/cmd/cli/client"
	"github.com/crucial707/blog-api/cmd/cli/config"
	"github.com/spf13/cobra"
)

// InitAuth registers login, logout and whoami on the root command.
func InitAuth(rootCmd *cobra.Command) {
	rootCmd.AddCommand(loginCmd(), logoutCmd(), whoamiCmd())
}

// loginCmd creates a command that logs in a user and stores the JWT token locally.
func loginCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the blog API",
		Long:  "Authenticate with the blog API and store a JWT token for subsequent CLI commands.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" {
				return fmt.Errorf("username is required")
			}
			if password == "" {
				fmt.Fprint(cmd.OutOrStdout(), "Password: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimSpace(line)
			}

			var loginResp struct {
				Token     string `json:"token"`
				ExpiresIn string `json:"expiresIn"`
				User      struct {
					Username string `json:"username"`
					Role     string `json:"role"`
				} `json:"user"`
			}
			payload := map[string]string{"username": username, "password": password}
			if err := client.Do(http.MethodPost, "/api/auth/login", "", payload, &loginResp); err != nil {
				return fmt.Errorf("failed to login: %w", err)
			}
			if loginResp.Token == "" {
				return fmt.Errorf("login succeeded but no token returned")
			}

			if err := config.SaveToken(loginResp.Token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s). Token valid for %s.\n",
				loginResp.User.Username, loginResp.User.Role, loginResp.ExpiresIn)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username to authenticate as")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted when omitted)")

	return cmd
}

// logoutCmd revokes the token server side, then removes it locally.
func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and forget the saved token",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := client.DoAuth(http.MethodPost, "/api/auth/logout", nil, nil)
			if errors.Is(err, config.ErrNotLoggedIn) {
				fmt.Fprintln(cmd.OutOrStdout(), "No user logged in.")
				return nil
			}
			var apiErr *client.APIError
			if err != nil && !(errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized) {
				return err
			}
			if err := config.ClearToken(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out successfully.")
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the identity of the saved token",
		RunE: func(cmd *cobra.Command, args []string) error {
			var out struct {
				User struct {
					Username string `json:"username"`
					Role     string `json:"role"`
				} `json:"user"`
			}
			if err := client.DoAuth(http.MethodPost, "/api/auth/verify", nil, &out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", out.User.Username, out.User.Role)
			return nil
		},
	}
}
