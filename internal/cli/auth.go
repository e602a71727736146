package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/checklist/internal/auth"
	"github.com/Makepad-fr/checklist/internal/ui"
)

func (a *app) newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the token sent to the GraphQL endpoint",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "login [token]",
			Short: "Store a token (read from stdin when omitted)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				var token string
				if len(args) == 1 {
					token = args[0]
				} else {
					fmt.Fprint(cmd.OutOrStdout(), "Paste your token: ")
					line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
					if err != nil && line == "" {
						return fmt.Errorf("read token: %w", err)
					}
					token = line
				}
				if err := auth.SetToken(token, nil); err != nil {
					return fmt.Errorf("save token: %w", err)
				}
				ui.OK(cmd.OutOrStdout(), "logged in")
				return nil
			},
		},
		&cobra.Command{
			Use:   "logout",
			Short: "Delete the stored token",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				ti, _ := auth.GetToken()
				if ti != nil && ti.Source == "env" {
					ui.OK(cmd.OutOrStdout(), "token is provided by "+auth.EnvToken+" (nothing to delete)")
					return nil
				}
				if err := auth.DeleteToken(); err != nil {
					return fmt.Errorf("logout: %w", err)
				}
				ui.OK(cmd.OutOrStdout(), "logged out")
				return nil
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show where the token comes from",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				out := cmd.OutOrStdout()
				ti, err := auth.GetToken()
				if err != nil {
					return err
				}
				if ti == nil {
					ui.Note(out, "not logged in")
					fmt.Fprintln(out, "Run: checklist auth login")
					return nil
				}
				fmt.Fprintf(out, "source: %s\n", ti.Source)
				if ti.ExpiresAt != nil {
					fmt.Fprintf(out, "expires: %s\n", ti.ExpiresAt.UTC().Format(time.RFC3339))
				} else {
					fmt.Fprintln(out, "expires: (unknown)")
				}
				fmt.Fprintln(out, "env override: "+auth.EnvToken)
				return nil
			},
		},
		&cobra.Command{
			Use:   "whoami",
			Short: "Print the token's JWT claims, unverified",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				out := cmd.OutOrStdout()
				ti, err := auth.GetToken()
				if err != nil {
					return err
				}
				if ti == nil || strings.TrimSpace(ti.Token) == "" {
					return errors.New("not logged in. Run: checklist auth login")
				}
				if p, ok := auth.Payload(ti.Token); ok {
					fmt.Fprintln(out, "JWT payload:")
					fmt.Fprintln(out, p)
					return nil
				}
				fmt.Fprintln(out, "Opaque token (cannot introspect locally).")
				fmt.Fprintln(out, "source:", ti.Source)
				return nil
			},
		},
	)
	return cmd
}
