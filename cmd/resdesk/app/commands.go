package app

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/voyagekit/resdesk/pkg/booking"
	"github.com/voyagekit/resdesk/pkg/constants"
	"github.com/voyagekit/resdesk/pkg/errors"
	"github.com/voyagekit/resdesk/pkg/overlay"
)

// NewCreateCommand creates the create command.
func (a *App) NewCreateCommand() *cobra.Command {
	var extract bool

	cmd := &cobra.Command{
		Use:   "create [file]",
		Short: "Capture raw booking text as a new draft",
		Long: `Create captures raw booking text as a new draft.

The text is read from the given file, or from stdin when no file is
given or the file is "-". With --extract the extraction oracle runs
immediately and the draft lands in the normalized status.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rawText, err := readInput(args)
			if err != nil {
				return err
			}

			rd, err := a.Resdesk(cmd.Context())
			if err != nil {
				return err
			}

			draft, err := rd.CreateDraft(cmd.Context(), rawText)
			if err != nil {
				return err
			}

			if extract {
				draft, err = rd.ExtractDraft(cmd.Context(), draft.ID)
				if err != nil {
					return err
				}
			}
			return a.render(cmd, draft)
		},
	}

	cmd.Flags().BoolVar(&extract, "extract", false, "run the extraction oracle immediately")
	return cmd
}

// NewExtractCommand creates the extract command.
func (a *App) NewExtractCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "extract <draft-id>",
		Short: "Run the extraction oracle on a draft",
		Long: `Extract runs the configured extraction oracle over the draft's raw
text and ingests the guess. When no GEMINI_API_KEY is configured, or the
oracle fails, the draft gets an empty guess and stays completable by hand.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rd, err := a.Resdesk(cmd.Context())
			if err != nil {
				return err
			}

			draft, err := rd.ExtractDraft(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.render(cmd, draft)
		},
	}
}

// NewEditCommand creates the edit command.
func (a *App) NewEditCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <draft-id> <field=value>...",
		Short: "Apply manual corrections to a draft",
		Long: `Edit merges field corrections into the draft's manual layer.

Each argument is a field=value pair. Manual values win over extracted
and normalized values at commit time. Use field=null to clear a field,
and reservation_no=ASSIGN_ON_SAVE to request a synthesized number.`,
		Example: `  resdesk edit 4f7c usage_date=2025-04-12 adults=2
  resdesk edit 4f7c memo=null`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := booking.Patch{}
			for _, arg := range args[1:] {
				key, value, found := strings.Cut(arg, "=")
				if !found {
					return errors.Wrapf(errors.ErrInvalidInput, "expected field=value, got %q", arg)
				}
				if value == "ASSIGN_ON_SAVE" {
					patch[key] = booking.AssignOnSave
					continue
				}
				patch[key] = parsePatchValue(value)
			}

			rd, err := a.Resdesk(cmd.Context())
			if err != nil {
				return err
			}

			draft, err := rd.EditDraft(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			return a.render(cmd, draft)
		},
	}
}

// NewCommitCommand creates the commit command.
func (a *App) NewCommitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "commit <draft-id>",
		Short: "Validate a draft and commit it as a reservation",
		Long: `Commit validates the draft's effective record and, when valid,
produces the canonical reservation with an audit diff.

A blocked validation is reported as the command output, not as an
error: the draft stays reviewable and the findings list what to fix.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rd, err := a.Resdesk(cmd.Context())
			if err != nil {
				return err
			}

			result, err := rd.CommitDraft(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.render(cmd, result)
		},
	}
}

// NewRejectCommand creates the reject command.
func (a *App) NewRejectCommand() *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "reject <draft-id>",
		Short: "Terminally reject a draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rd, err := a.Resdesk(cmd.Context())
			if err != nil {
				return err
			}

			draft, err := rd.RejectDraft(cmd.Context(), args[0], reason)
			if err != nil {
				return err
			}
			return a.render(cmd, draft)
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "why the draft is being rejected")
	return cmd
}

// NewShowCommand creates the show command with its subcommands.
func (a *App) NewShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show drafts, effective records, and reservations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "draft <draft-id>",
		Short: "Show a draft with all its layers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rd, err := a.Resdesk(cmd.Context())
			if err != nil {
				return err
			}

			draft, err := rd.GetDraft(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.render(cmd, draft)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "effective <draft-id>",
		Short: "Show a draft's merged record with field provenance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rd, err := a.Resdesk(cmd.Context())
			if err != nil {
				return err
			}

			record, prov, err := rd.Effective(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.render(cmd, struct {
				Record     *booking.Record    `json:"record" yaml:"record"`
				Provenance overlay.Provenance `json:"provenance" yaml:"provenance"`
			}{record, prov})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reservation <reservation-id>",
		Short: "Show a committed reservation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rd, err := a.Resdesk(cmd.Context())
			if err != nil {
				return err
			}

			reservation, err := rd.GetReservation(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.render(cmd, reservation)
		},
	})

	return cmd
}

// NewListCommand creates the list command.
func (a *App) NewListCommand() *cobra.Command {
	var (
		status string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List drafts, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			rd, err := a.Resdesk(cmd.Context())
			if err != nil {
				return err
			}

			drafts, err := rd.ListDrafts(cmd.Context(), booking.Status(status), limit)
			if err != nil {
				return err
			}
			if len(drafts) == 0 {
				cmd.Println("No drafts found")
				return nil
			}
			return a.render(cmd, drafts)
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "filter by status: draft, normalized, reviewed, committed, rejected")
	cmd.Flags().IntVar(&limit, "limit", constants.DefaultListLimit, "maximum number of drafts to return")
	return cmd
}

// NewVersionCommand creates the version command.
func (a *App) NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("resdesk %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
			}
		},
	}
}

// readInput reads raw booking text from the file argument or stdin.
func readInput(args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", errors.Wrapf(err, "reading %s", args[0])
		}
		return string(data), nil
	}

	data, err := io.ReadAll(io.LimitReader(os.Stdin, constants.MaxRawTextBytes+1))
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), nil
}
