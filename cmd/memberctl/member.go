package main

import (
	"fmt"

	"github.com/goliatone/go-print"
	"github.com/spf13/cobra"

	memberhub "github.com/memberhub/go-memberhub"
)

var meCmd = &cobra.Command{
	Use:   "me",
	Short: "Show your own member record",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.requireSession(); err != nil {
			return err
		}

		me, err := a.client.MyProfile(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Println(print.MaybePrettyJSON(me))
		return nil
	},
}

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a member record by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.requireSession(); err != nil {
			return err
		}

		m, err := a.client.GetMember(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Println(print.MaybePrettyJSON(m))
		return nil
	},
}

var createInput memberhub.SignupRequest

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a member (the backend issues a temporary password)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.requireSession(); err != nil {
			return err
		}

		created, err := a.roster.Create(cmd.Context(), createInput)
		if err != nil {
			return formErr(err)
		}

		if verbose {
			fmt.Println(print.MaybePrettyJSON(created))
		}
		return nil
	},
}

var updateInput memberhub.MemberUpdateRequest

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a member's editable fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.requireSession(); err != nil {
			return err
		}

		// unset flags keep the record's current values, so a partial
		// edit never silently rewrites the role
		target, err := a.client.GetMember(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		input := mergeUpdateInput(*target, updateInput, cmd.Flags().Changed)

		if err := a.roster.LoadRoster(cmd.Context()); err != nil {
			return err
		}

		updated, err := a.roster.Update(cmd.Context(), args[0], input)
		if err != nil {
			return formErr(err)
		}

		if verbose {
			fmt.Println(print.MaybePrettyJSON(updated))
		}
		return nil
	},
}

var deleteYes bool

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a member after confirmation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.requireSession(); err != nil {
			return err
		}

		target, err := a.client.GetMember(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		ask := memberhub.ConfirmFunc(confirm)
		if deleteYes {
			ask = func(string) bool { return true }
		}

		deleted, err := a.roster.Delete(cmd.Context(), *target, ask)
		if err != nil {
			return err
		}
		if !deleted {
			fmt.Println("Aborted.")
		}
		return nil
	},
}

var roleCmd = &cobra.Command{
	Use:   "role <id> <USER|ADMIN>",
	Short: "Change a member's role (invalidates their sessions)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.requireSession(); err != nil {
			return err
		}

		role, ok := memberhub.ParseRole(args[1])
		if !ok {
			return fmt.Errorf("unknown role %q", args[1])
		}

		message, err := a.client.UpdateRole(cmd.Context(), args[0], role)
		if err != nil {
			return err
		}

		fmt.Println(message)
		return nil
	},
}

func init() {
	createCmd.Flags().StringVar(&createInput.Username, "username", "", "login name")
	createCmd.Flags().StringVar(&createInput.Name, "name", "", "display name")
	createCmd.Flags().StringVar(&createInput.Email, "email", "", "email address")
	createCmd.Flags().StringVar(&createInput.PhoneNumber, "phone", "", "mobile number")
	createCmd.Flags().StringVar((*string)(&createInput.Role), "role", string(memberhub.RoleUser), "USER or ADMIN")

	updateCmd.Flags().StringVar(&updateInput.Name, "name", "", "display name (defaults to current)")
	updateCmd.Flags().StringVar(&updateInput.Email, "email", "", "email address (defaults to current)")
	updateCmd.Flags().StringVar(&updateInput.PhoneNumber, "phone", "", "mobile number (defaults to current)")
	updateCmd.Flags().StringVar((*string)(&updateInput.Role), "role", "", "USER or ADMIN (defaults to current)")

	deleteCmd.Flags().BoolVar(&deleteYes, "yes", false, "skip the confirmation prompt")

	rootCmd.AddCommand(meCmd, getCmd, createCmd, updateCmd, deleteCmd, roleCmd)
}

// mergeUpdateInput starts from the record's current values and applies
// only the flags the caller actually set.
func mergeUpdateInput(current memberhub.Member, flags memberhub.MemberUpdateRequest, changed func(name string) bool) memberhub.MemberUpdateRequest {
	out := memberhub.MemberUpdateRequest{
		Name:        current.Name,
		Email:       current.Email,
		PhoneNumber: current.PhoneNumber,
		Role:        current.Role,
	}
	if changed("name") {
		out.Name = flags.Name
	}
	if changed("email") {
		out.Email = flags.Email
	}
	if changed("phone") {
		out.PhoneNumber = flags.PhoneNumber
	}
	if changed("role") {
		out.Role = flags.Role
	}
	return out
}

// formErr expands validation failures into per-field messages so flag
// mistakes read like form errors instead of one opaque line.
func formErr(err error) error {
	fields := memberhub.FormatValidationErrorToMap(err)
	if len(fields) == 0 {
		return err
	}
	for field, msg := range fields {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "  %s: %s\n", field, msg)
	}
	return err
}
