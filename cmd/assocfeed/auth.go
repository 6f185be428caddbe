package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"assocfeed/pkg/auth"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage stored portal credentials",
	Long: `Store the portal username/password pair in the system keychain so the
config file does not need to carry it.`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store portal credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		reader := bufio.NewReader(os.Stdin)

		fmt.Print("Portal username: ")
		username, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read username: %w", err)
		}
		username = strings.TrimSpace(username)

		fmt.Print("Portal password: ")
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}

		err = auth.NewManager().Store(&auth.Credentials{
			Username: username,
			Password: string(password),
		})
		if err != nil {
			return fmt.Errorf("failed to store credentials: %w", err)
		}

		fmt.Println("Credentials stored.")
		return nil
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove stored portal credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := auth.NewManager().Delete(); err != nil {
			return fmt.Errorf("failed to remove credentials: %w", err)
		}
		fmt.Println("Credentials removed.")
		return nil
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether portal credentials are stored",
	RunE: func(cmd *cobra.Command, args []string) error {
		manager := auth.NewManager()
		if !manager.Exists() {
			fmt.Println("No credentials stored.")
			return nil
		}
		creds, err := manager.Retrieve()
		if err != nil {
			return fmt.Errorf("failed to read credentials: %w", err)
		}
		fmt.Printf("Credentials stored for %s (updated %s)\n",
			creds.Username, creds.UpdatedAt.Format("2006-01-02 15:04:05"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
}
