package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Shivanand-hulikatti/guestlist/internal/model"
	"github.com/Shivanand-hulikatti/guestlist/internal/service"
)

type importOptions struct {
	from, to string
	create   bool
	jsonOut  bool
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &importOptions{}

	cmd := &cobra.Command{
		Use:   "import <file.ics|file.zip>",
		Short: "Preview or create guest lists from a calendar file",
		Long: `Read events from an iCalendar file (or a zip of them), expand
recurring events inside the date range and print the proposed lists.

Dates that already have a list are flagged and skipped. Pass --create to
create the remaining lists.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, rootOpts, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.from, "from", "", "first date to import (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&opts.to, "to", "", "last date to import (YYYY-MM-DD, default three months after --from)")
	cmd.Flags().BoolVar(&opts.create, "create", false, "create the selected lists")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "print the result as JSON")
	return cmd
}

func runImport(cmd *cobra.Command, rootOpts *RootOptions, opts *importOptions, path string) error {
	cfg, err := rootOpts.load()
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	req := service.ImportRequest{Filename: filepath.Base(path), Data: data, Create: opts.create}
	if req.From, err = flagDate("from", opts.from); err != nil {
		return err
	}
	if req.To, err = flagDate("to", opts.to); err != nil {
		return err
	}

	logger := newLogger(cfg.Log, cfg.Production(), cmd.ErrOrStderr())
	a, err := newApp(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	res, err := a.gigs.Import(cmd.Context(), req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	printImport(out, res, opts.create)
	return nil
}

func flagDate(name, v string) (*model.Date, error) {
	if v == "" {
		return nil, nil
	}
	d, err := model.ParseDate(v)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", name, err)
	}
	return &d, nil
}

func printImport(w io.Writer, res *service.ImportResult, create bool) {
	fmt.Fprintf(w, "%d events between %s and %s\n\n", len(res.Events), res.From, res.To)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tDJ\tCAP\tSTATUS")
	for _, ev := range res.Events {
		status := "new"
		if !ev.Selected {
			status = "exists: " + strings.Join(ev.Conflicts, ", ")
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", ev.Date, ev.DJName, ev.GuestCap, status)
	}
	tw.Flush()

	for _, e := range res.Errors {
		fmt.Fprintf(w, "warning: %s\n", e)
	}
	if create {
		fmt.Fprintf(w, "\ncreated %d guest lists\n", len(res.Created))
	}
}
