package cmd

import (
	"fmt"
	"io"

	"github.com/foomo/menuserver/menu"
	"github.com/foomo/menuserver/pkg/render"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

var errInvalidDocument = errors.New("invalid menu document")

func NewValidateCommand() *cobra.Command {
	v := newViper()
	cmd := &cobra.Command{
		Use:               "validate <file|url>",
		Short:             "Validate a menu document",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: urlArgCompletion,
		SilenceUsage:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			styles := render.StylesFor(w)

			menus, err := loadDocument(cmd.Context(), v, args[0])
			if err != nil {
				printProblems(w, styles, "", err)
				return errInvalidDocument
			}

			var invalid bool
			for _, name := range siteNames(menus) {
				if err := menu.Validate(menus[name]); err != nil {
					invalid = true
					printProblems(w, styles, name, err)
					continue
				}
				_, _ = fmt.Fprintf(w, "%s %s\n", styles.Text.Render("ok"), styles.Summary.Render(fmt.Sprintf("site %q: %d nodes", name, menus[name].Count())))
			}
			if invalid {
				return errInvalidDocument
			}
			return nil
		},
	}

	flags := cmd.Flags()
	addSourceFormatFlag(flags, v)
	addDefaultSiteFlag(flags, v)
	addRepositoryTimeoutFlag(flags, v)

	return cmd
}

// printProblems writes one line per violation
func printProblems(w io.Writer, styles render.Styles, site string, err error) {
	prefix := "error"
	if site != "" {
		prefix = fmt.Sprintf("error site %q", site)
	}
	for _, e := range multierr.Errors(err) {
		var schemaErr *menu.SchemaError
		if errors.As(e, &schemaErr) {
			for _, msg := range schemaErr.Errors {
				_, _ = fmt.Fprintf(w, "%s: %s\n", styles.Fragment.Render(prefix), msg)
			}
			continue
		}
		_, _ = fmt.Fprintf(w, "%s: %s\n", styles.Fragment.Render(prefix), e.Error())
	}
}
