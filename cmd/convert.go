package cmd

import (
	"os"

	"github.com/foomo/menuserver/menu"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func NewConvertCommand() *cobra.Command {
	v := newViper()
	cmd := &cobra.Command{
		Use:               "convert <file|url>",
		Short:             "Convert a menu between js, json and yaml",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: urlArgCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			to, err := toFlag(v)
			if err != nil {
				return err
			}
			if to == menu.FormatAuto {
				return errors.New("output format must be one of js, json, yaml")
			}

			menus, err := loadDocument(cmd.Context(), v, args[0])
			if err != nil {
				return err
			}
			_, m, err := selectSite(menus, siteFlag(v))
			if err != nil {
				return err
			}

			var out []byte
			if to == menu.FormatJS {
				out, err = menu.MarshalJS(m,
					menu.WithVarName(varNameFlag(v)),
					menu.WithLicenseHeader(licenseHeaderFlag(v)),
				)
			} else {
				out, err = menu.Marshal(to, m)
			}
			if err != nil {
				return err
			}

			if output := outputFlag(v); output != "" {
				return errors.Wrap(os.WriteFile(output, out, 0o644), "failed to write output")
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	flags := cmd.Flags()
	addToFlag(flags, v)
	addSiteFlag(flags, v)
	addOutputFlag(flags, v)
	addVarNameFlag(flags, v)
	addLicenseHeaderFlag(flags, v)
	addSourceFormatFlag(flags, v)
	addDefaultSiteFlag(flags, v)
	addRepositoryTimeoutFlag(flags, v)

	return cmd
}
