package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/goliatone/go-print"
	"github.com/spf13/cobra"

	memberhub "github.com/memberhub/go-memberhub"
)

var listPage int

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List members (admins see everyone, others their own record)",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().IntVar(&listPage, "page", 1, "page to show")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.requireSession(); err != nil {
		return err
	}

	if err := a.roster.LoadRoster(cmd.Context()); err != nil {
		return err
	}

	if listPage != 1 && !a.roster.ChangePage(listPage) {
		return fmt.Errorf("page %d out of range (1..%d)", listPage, a.roster.TotalPages())
	}

	visible := a.roster.Visible()
	if verbose {
		fmt.Println(print.MaybePrettyJSON(visible))
	} else {
		printMemberTable(visible)
	}

	fmt.Printf("page %d of %d (%d members)\n",
		a.roster.CurrentPage(), a.roster.TotalPages(), a.roster.Len())

	return nil
}

func printMemberTable(members []memberhub.Member) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tNAME\tEMAIL\tPHONE\tROLE")
	for _, m := range members {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			m.ID, m.Username, m.Name, m.Email, m.PhoneNumber, m.Role)
	}
	w.Flush()
}
