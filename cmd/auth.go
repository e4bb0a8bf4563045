package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	loginEmail    string
	loginPassword string
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the guard session",
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in against the gate pass service",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		email := loginEmail
		if email == "" {
			email = prompt("Email: ")
		}
		password := loginPassword
		if password == "" {
			password = prompt("Password: ")
		}

		sess, err := sessions.Login(ctx, email, password)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Login failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Logged in as %s (%s), session expires %s\n",
			sess.User.FullName(), sess.User.Role, sess.ExpiresAt.Format("2006-01-02 15:04"))
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and clear the stored session",
	Run: func(cmd *cobra.Command, args []string) {
		sessions.Logout(context.Background())
		fmt.Println("Logged out")
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current guard session",
	Run: func(cmd *cobra.Command, args []string) {
		sess, err := sessions.Current(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read session: %v\n", err)
			os.Exit(1)
		}
		if sess == nil {
			fmt.Println("Not logged in")
			os.Exit(1)
		}
		fmt.Printf("%s <%s>, role %s, session expires %s\n",
			sess.User.FullName(), sess.User.Email, sess.User.Role,
			sess.ExpiresAt.Format("2006-01-02 15:04"))
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Exchange the current token for a fresh one",
	Run: func(cmd *cobra.Command, args []string) {
		sess, err := sessions.Refresh(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Refresh failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Token refreshed, expires %s\n", sess.ExpiresAt.Format("2006-01-02 15:04"))
	},
}

func prompt(label string) string {
	fmt.Print(label)
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func init() {
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "guard account email")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "guard account password")

	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(whoamiCmd)
	authCmd.AddCommand(refreshCmd)
}
