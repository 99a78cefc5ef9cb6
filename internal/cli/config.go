package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Davincible/gfaes/pkg/config"
	"github.com/Davincible/gfaes/pkg/storage"
)

func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the configuration file",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				path, _ := cmd.Flags().GetString("config")
				cm, err := config.NewConfigManager(path)
				if err != nil {
					return asInput(err)
				}

				data, err := cm.Marshal()
				if err != nil {
					return err
				}
				cyan.Fprintf(cmd.OutOrStdout(), "# %s\n", cm.Path())
				fmt.Fprint(cmd.OutOrStdout(), string(data))
				return nil
			},
		},
		newConfigInitCommand(),
	)

	return cmd
}

func newConfigInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			cm, err := config.NewDefaultManager(path)
			if err != nil {
				return err
			}

			if storage.Exists(cm.Path()) && !force {
				return invalidInput("%s already exists, use --force to overwrite", cm.Path())
			}

			if err := cm.SaveConfig(); err != nil {
				return err
			}

			green.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", cm.Path())
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration file")
	return cmd
}
