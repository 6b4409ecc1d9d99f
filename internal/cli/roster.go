package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sanskruthi/fest-service/internal/api/dto"
)

// NewRosterCommand creates the roster command.
func NewRosterCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "roster",
		Short: "List attendees currently checked in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoster(cmd, rootOpts)
		},
	}
}

func runRoster(cmd *cobra.Command, opts *RootOptions) error {
	rt, err := openRuntime(cmd.Context(), opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	entries, err := rt.stores.Attendance.Roster(cmd.Context())
	if err != nil {
		return fmt.Errorf("load roster: %w", err)
	}
	rows := dto.FromRoster(entries)

	out := newPrinter(opts, cmd.OutOrStdout())
	if out.json() {
		return out.emit(map[string]any{"data": rows, "count": len(rows)}, "")
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "USER\tNAME\tCOLLEGE\tCHECKED IN")
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", row.UserID, row.FullName, row.College, row.CheckInTime.Local().Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintf(tw, "\n%d checked in\n", len(rows))
	return tw.Flush()
}
