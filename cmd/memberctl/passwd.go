package main

import (
	"fmt"

	"github.com/spf13/cobra"

	memberhub "github.com/memberhub/go-memberhub"
)

var (
	passwdOld     string
	passwdNew     string
	passwdConfirm string
)

var passwdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Change your password (required when it is temporary)",
	Args:  cobra.NoArgs,
	RunE:  runPasswd,
}

func init() {
	passwdCmd.Flags().StringVar(&passwdOld, "old", "", "current password (prompted when omitted)")
	passwdCmd.Flags().StringVar(&passwdNew, "new", "", "new password (prompted when omitted)")
	passwdCmd.Flags().StringVar(&passwdConfirm, "confirm", "", "confirmation of the new password (prompted when omitted)")
	rootCmd.AddCommand(passwdCmd)
}

func runPasswd(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if !a.store.IsLoggedIn() {
		return fmt.Errorf("not logged in, run: memberctl login <username>")
	}
	a.flow.SyncSession(a.store.Current())

	payload := memberhub.ChangePasswordRequest{
		OldPassword:     passwdOld,
		NewPassword:     passwdNew,
		ConfirmPassword: passwdConfirm,
	}
	if payload.OldPassword == "" {
		if payload.OldPassword, err = promptLine("Current password: "); err != nil {
			return err
		}
	}
	if payload.NewPassword == "" {
		if payload.NewPassword, err = promptLine("New password: "); err != nil {
			return err
		}
	}
	if payload.ConfirmPassword == "" {
		if payload.ConfirmPassword, err = promptLine("Confirm new password: "); err != nil {
			return err
		}
	}

	// The flow handles voluntary changes as well as forced ones. Either
	// way a successful change signs the session out.
	if err := a.flow.Submit(cmd.Context(), payload); err != nil {
		return formErr(err)
	}
	return nil
}
