package cmd

import (
	"fmt"

	"github.com/foomo/menuserver/pkg/render"
	"github.com/spf13/cobra"
)

func NewPrintCommand() *cobra.Command {
	v := newViper()
	cmd := &cobra.Command{
		Use:               "print <file|url>",
		Short:             "Print the menu tree",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: urlArgCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			menus, err := loadDocument(cmd.Context(), v, args[0])
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			styles := render.StylesFor(w)
			opts := []render.Option{
				render.WithStyles(styles),
				render.WithURLs(urlsFlag(v)),
				render.WithMaxDepth(depthFlag(v)),
			}

			names := siteNames(menus)
			if site := siteFlag(v); site != "" {
				name, _, err := selectSite(menus, site)
				if err != nil {
					return err
				}
				names = []string{name}
			}
			for i, name := range names {
				if len(names) > 1 {
					if i > 0 {
						_, _ = fmt.Fprintln(w)
					}
					_, _ = fmt.Fprintln(w, styles.Text.Render(name))
				}
				if err := render.Tree(w, menus[name], opts...); err != nil {
					return err
				}
			}
			return nil
		},
	}

	flags := cmd.Flags()
	addSiteFlag(flags, v)
	addDepthFlag(flags, v)
	addURLsFlag(flags, v)
	addSourceFormatFlag(flags, v)
	addDefaultSiteFlag(flags, v)
	addRepositoryTimeoutFlag(flags, v)

	return cmd
}
