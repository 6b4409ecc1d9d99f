package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sanskruthi/fest-service/internal/api/dto"
	"github.com/sanskruthi/fest-service/internal/checkin"
	"github.com/sanskruthi/fest-service/internal/events"
	"github.com/sanskruthi/fest-service/internal/qr"
	"github.com/sanskruthi/fest-service/internal/worker"
)

// messageHold keeps outcome messages on the console long enough to be
// reported before the next frame is read.
const messageHold = 50 * time.Millisecond

// ScanOptions holds flags for the scan command.
type ScanOptions struct {
	Frames  string
	Mode    string
	Confirm bool
}

// ScanSummary is printed when the frame directory is exhausted.
type ScanSummary struct {
	Mode       checkin.Mode `json:"mode"`
	Resolved   int          `json:"resolved"`
	Confirmed  int          `json:"confirmed"`
	Rejected   int          `json:"rejected"`
	RosterSize int          `json:"roster_size"`
}

// NewScanCommand creates the scan command.
func NewScanCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ScanOptions{}
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run a check-in console over a directory of camera frames",
		Long: `Replay PNG/JPEG frames from a directory through a check-in console.

Every decoded ticket is resolved against the registrations. With --confirm
the attendee is checked in (or out) as an operator would; without it the
resolution is printed and the console moves on.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, rootOpts, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Frames, "frames", "", "directory of frame images (required)")
	cmd.Flags().StringVar(&opts.Mode, "mode", string(checkin.ModeCheckIn), "check-in or check-out")
	cmd.Flags().BoolVar(&opts.Confirm, "confirm", false, "confirm every attendee that can be confirmed")
	_ = cmd.MarkFlagRequired("frames")
	return cmd
}

func runScan(cmd *cobra.Command, rootOpts *RootOptions, opts *ScanOptions) error {
	mode, err := checkin.ParseMode(opts.Mode)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	rt, err := openRuntime(ctx, rootOpts)
	if err != nil {
		return err
	}
	defer rt.Close()

	dispatcher := events.NewInMemoryDispatcher()
	worker.Start(dispatcher, worker.Deps{AttendanceLog: rt.stores.AttendanceLog, Logger: rt.logger})

	mutator := checkin.NewMutator(rt.stores.Attendance, rt.stores.Locker, rt.cfg.Scanner.LockTTL())
	console := checkin.NewConsole(uuid.NewString(), mode, checkin.Deps{
		Camera:   checkin.NewDirCamera(opts.Frames),
		Decoder:  qr.NewDecoder(),
		Resolver: checkin.NewResolver(rt.stores.Registrations, rt.stores.Attendance),
		Mutator:  mutator,
		Events:   dispatcher,
		Logger:   rt.logger,
	}, checkin.Options{
		RecoveryDelay:  messageHold,
		SuccessHold:    messageHold,
		ResolveTimeout: rt.cfg.Scanner.ResolveTimeout(),
	})
	defer console.Close()

	if err := console.RefreshRoster(ctx); err != nil {
		return err
	}
	if err := console.Start(ctx); err != nil {
		return err
	}

	out := newPrinter(rootOpts, cmd.OutOrStdout())
	summary, err := drive(ctx, console, opts.Confirm, out)
	if err != nil {
		return err
	}
	return out.emit(summary, "%s: %d resolved, %d confirmed, %d rejected, %d on roster",
		summary.Mode, summary.Resolved, summary.Confirmed, summary.Rejected, summary.RosterSize)
}

// drive plays the operator: it waits for each resolved attendee, confirms or
// skips it, and returns once the frame stream has ended.
func drive(ctx context.Context, console *checkin.Console, confirm bool, out *printer) (ScanSummary, error) {
	var (
		summary  ScanSummary
		lastSeen uint64
		reported string
	)
	for {
		snap, changed := console.Watch()
		summary.Mode = snap.Mode
		summary.RosterSize = snap.RosterSize

		if m := snap.Message; m != nil && snap.State == checkin.StateIdle {
			key := fmt.Sprintf("%d/%s", snap.Cycle, m.Code)
			if key != reported && (m.Code == checkin.CodeUnknownIdentity || m.Code == checkin.CodeLookupFailed) {
				reported = key
				summary.Rejected++
				if err := report(out, snap); err != nil {
					return summary, err
				}
			}
		}

		switch {
		case snap.State == checkin.StateResolved && snap.Cycle != lastSeen:
			lastSeen = snap.Cycle
			summary.Resolved++
			if err := report(out, snap); err != nil {
				return summary, err
			}
			if confirm && snap.CanConfirm {
				var storeErr *checkin.StoreError
				err := console.Confirm(ctx)
				switch {
				case err == nil:
					summary.Confirmed++
				case errors.As(err, &storeErr):
					return summary, err
				default:
					summary.Rejected++
				}
				if err := report(out, console.Snapshot()); err != nil {
					return summary, err
				}
			} else if !snap.CanConfirm {
				summary.Rejected++
			}
			if console.Snapshot().State == checkin.StateResolved {
				if err := console.Reset(); err != nil {
					return summary, err
				}
			}
			continue
		case snap.State == checkin.StateIdle && snap.CameraError != "":
			return summary, nil
		}

		select {
		case <-changed:
		case <-ctx.Done():
			return summary, ctx.Err()
		}
	}
}

func report(out *printer, snap checkin.Snapshot) error {
	resp := dto.FromSnapshot(snap)
	if out.json() {
		return out.emit(resp, "")
	}
	line := ""
	if resp.Attendee != nil {
		line = resp.Attendee.UserID + " " + resp.Attendee.FullName
	}
	if resp.Message != nil {
		if line != "" {
			line += ": "
		}
		line += fmt.Sprintf("[%s] %s", resp.Message.Severity, resp.Message.Text)
	}
	if line == "" {
		return nil
	}
	return out.emit(nil, "%s", line)
}
