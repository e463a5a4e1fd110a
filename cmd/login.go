package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and save the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		username, _ := cmd.Flags().GetString("username")
		password, _ := cmd.Flags().GetString("password")
		in := bufio.NewReader(cmd.InOrStdin())
		if username == "" {
			if username, err = prompt(cmd.OutOrStdout(), in, "Username: "); err != nil {
				return err
			}
		}
		if password == "" {
			if password, err = prompt(cmd.OutOrStdout(), in, "Password: "); err != nil {
				return err
			}
		}

		if err := e.auth.Login(cmd.Context(), username, password); err != nil {
			return fmt.Errorf("sign in: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s.\n", e.auth.Username())
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the saved session",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if !e.auth.LoggedIn() {
			fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
			return nil
		}
		if err := e.auth.Logout(cmd.Context()); err != nil {
			fmt.Fprintln(os.Stderr, "warning:", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
		return nil
	},
}

func init() {
	loginCmd.Flags().StringP("username", "u", "", "Account name")
	loginCmd.Flags().StringP("password", "p", "", "Password (prompted when empty)")
}

func prompt(w io.Writer, r *bufio.Reader, label string) (string, error) {
	fmt.Fprint(w, label)
	line, err := r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(strings.ToLower(label), ": "), err)
	}
	return strings.TrimSpace(line), nil
}
