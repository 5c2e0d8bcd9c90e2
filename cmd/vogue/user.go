package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/voguefx/vogue/internal/ui"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var (
	flagUserEmail string
	flagUserRoles []string
)

var userAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a user (password prompted, never echoed)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		password, err := promptPassword("Password: ")
		if err != nil {
			fatal(err)
		}
		confirm, err := promptPassword("Confirm: ")
		if err != nil {
			fatal(err)
		}
		if password != confirm {
			fatal(fmt.Errorf("passwords do not match"))
		}

		mgr, err := newManager()
		if err != nil {
			fatal(err)
		}
		defer mgr.Close()

		u, err := mgr.AddUser(args[0], flagUserEmail, password, flagUserRoles)
		if err != nil {
			fatal(err)
		}
		fmt.Println(ui.OK("user %s (%s)", ui.Accent(u.Name), strings.Join(u.Roles, ", ")))
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	Run: func(cmd *cobra.Command, args []string) {
		mgr, err := newManager()
		if err != nil {
			fatal(err)
		}
		defer mgr.Close()

		users, err := mgr.ListUsers()
		if err != nil {
			fatal(err)
		}
		for _, u := range users {
			last := "never"
			if u.LastLogin != nil {
				last = u.LastLogin.Local().Format("2006-01-02 15:04")
			}
			fmt.Printf("%-16s %-24s %-20s last login %s\n", u.Name, u.Email, strings.Join(u.Roles, ","), ui.Dim(last))
		}
	},
}

var userLoginCmd = &cobra.Command{
	Use:   "login <name>",
	Short: "Verify credentials",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		password, err := promptPassword("Password: ")
		if err != nil {
			fatal(err)
		}

		mgr, err := newManager()
		if err != nil {
			fatal(err)
		}
		defer mgr.Close()

		u, err := mgr.Authenticate(args[0], password)
		if err != nil {
			fatal(err)
		}
		fmt.Println(ui.OK("welcome, %s", ui.Accent(u.Name)))
	},
}

func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}

func init() {
	userAddCmd.Flags().StringVar(&flagUserEmail, "email", "", "email address")
	userAddCmd.Flags().StringSliceVar(&flagUserRoles, "role", nil, "roles (artist, supervisor, admin)")

	userCmd.AddCommand(userAddCmd)
	userCmd.AddCommand(userListCmd)
	userCmd.AddCommand(userLoginCmd)
	rootCmd.AddCommand(userCmd)
}
