package cli

import (
	"github.com/spf13/cobra"

	"github.com/Makepad-fr/checklist/internal/tui"
)

func (a *app) newTUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive list",
		Long: `Open the interactive list.

Keys: a add, space toggle, d delete (asks first), r reload, / filter, q quit.
Logs go to log_file when it is configured and are discarded otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(true); err != nil {
				return err
			}
			return tui.Run(cmd.Context(), a.svc, tui.Options{
				Log:     a.log,
				Timeout: a.cfg.Timeout(),
			})
		},
	}
}
