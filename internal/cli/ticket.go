package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sanskruthi/fest-service/internal/qr"
	"github.com/sanskruthi/fest-service/internal/service"
)

// TicketOptions holds flags for the ticket command.
type TicketOptions struct {
	Output string
	Size   int
}

// NewTicketCommand creates the ticket command.
func NewTicketCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TicketOptions{}
	cmd := &cobra.Command{
		Use:   "ticket <user-id>",
		Short: "Render the QR ticket for a registered attendee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTicket(cmd, rootOpts, opts, args[0])
		},
	}
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "PNG file to write (default <user-id>.png)")
	cmd.Flags().IntVar(&opts.Size, "size", qr.DefaultSize, "image width and height in pixels")
	return cmd
}

func runTicket(cmd *cobra.Command, rootOpts *RootOptions, opts *TicketOptions, userID string) error {
	rt, err := openRuntime(cmd.Context(), rootOpts)
	if err != nil {
		return err
	}
	defer rt.Close()

	registrations := service.NewRegistrationService(service.RegistrationDependencies{
		Registrations: rt.stores.Registrations,
		Logger:        rt.logger,
	})
	png, err := registrations.Ticket(cmd.Context(), userID, opts.Size)
	if err != nil {
		return fmt.Errorf("render ticket for %s: %w", userID, err)
	}

	path := opts.Output
	if path == "" {
		path = userID + ".png"
	}
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return fmt.Errorf("write ticket: %w", err)
	}

	out := newPrinter(rootOpts, cmd.OutOrStdout())
	return out.emit(map[string]any{"user_id": userID, "path": path, "bytes": len(png)},
		"wrote ticket for %s to %s", userID, path)
}
