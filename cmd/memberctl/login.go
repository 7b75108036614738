package main

import (
	"fmt"

	"github.com/goliatone/go-print"
	"github.com/spf13/cobra"
)

var loginPassword string

var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Authenticate and persist the session",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogin,
}

func init() {
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "password (prompted when omitted)")
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	password := loginPassword
	if password == "" {
		password, err = promptLine("Password: ")
		if err != nil {
			return err
		}
	}

	sess, err := a.store.Login(cmd.Context(), args[0], password)
	if err != nil {
		return err
	}

	fmt.Printf("Logged in as %s (%s)\n", sess.Username, sess.Role)
	if verbose {
		fmt.Println(print.MaybePrettyJSON(sess))
	}

	a.flow.SyncSession(sess)
	if a.flow.Required() {
		fmt.Println("Your password is temporary. Change it now with: memberctl passwd")
	}

	return nil
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the persisted session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		a.store.Logout()
		fmt.Println("Logged out.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
