package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/checklist/internal/controller"
	"github.com/Makepad-fr/checklist/internal/model"
	"github.com/Makepad-fr/checklist/internal/ui"
)

func (a *app) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List todos",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := a.loaded(cmd.Context(), controller.NeverConfirm)
			if err != nil {
				return err
			}
			todos := ctrl.View().Todos
			d, p := model.Stats(todos)

			lines := []string{
				ui.Header(todos),
				ui.C(ui.Current().Muted, ui.ProgressBar(d, d+p, 28)),
				"",
			}
			lines = append(lines, ui.TodoLines(todos, a.cfg.Group)...)
			lines = append(lines, "", ui.C(ui.Current().Muted, "Tip: add with `checklist add \"Buy milk\"`"))
			ui.Panel(cmd.OutOrStdout(), lines)
			return nil
		},
	}
}

func (a *app) newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <text...>",
		Short: "Add a todo (text can be multiple words)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(false); err != nil {
				return err
			}
			ctrl := a.newController(controller.NeverConfirm)
			ctrl.SetDraft(strings.Join(args, " "))

			created, err := ctrl.Submit(cmd.Context())
			if created == nil && err == nil {
				ui.Note(cmd.ErrOrStderr(), "nothing to add")
				return nil
			}
			if created != nil {
				ui.OK(cmd.OutOrStdout(), "added "+created.Text)
			}
			return err
		},
	}
}

func (a *app) newDoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done <index>",
		Short: "Toggle done for the todo at a 1-based index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := parseIndex("done", args[0])
			if err != nil {
				return err
			}
			ctrl, err := a.loaded(cmd.Context(), controller.NeverConfirm)
			if err != nil {
				return err
			}
			t, err := todoAt(ctrl.View().Todos, n)
			if err != nil {
				return err
			}
			updated, err := ctrl.ToggleDone(cmd.Context(), t.ID, t.Done)
			if err != nil {
				return err
			}
			state := "pending"
			if updated.Done {
				state = "done"
			}
			ui.OK(cmd.OutOrStdout(), fmt.Sprintf("toggled %s (%s)", updated.Text, state))
			return nil
		},
	}
}

func (a *app) newRemoveCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "rm <index>",
		Short: "Delete the todo at a 1-based index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := parseIndex("rm", args[0])
			if err != nil {
				return err
			}
			confirm := promptConfirmer(cmd.InOrStdin(), cmd.OutOrStdout())
			if yes {
				confirm = controller.AlwaysConfirm
			}
			ctrl, err := a.loaded(cmd.Context(), confirm)
			if err != nil {
				return err
			}
			t, err := todoAt(ctrl.View().Todos, n)
			if err != nil {
				return err
			}
			removed, err := ctrl.Remove(cmd.Context(), t.ID)
			if err != nil {
				return err
			}
			if !removed {
				ui.Note(cmd.OutOrStdout(), "kept "+t.Text)
				return nil
			}
			ui.OK(cmd.OutOrStdout(), "removed "+t.Text)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "delete without asking")
	return cmd
}

// promptConfirmer asks on out and reads a y/N answer from in.
func promptConfirmer(in io.Reader, out io.Writer) controller.Confirmer {
	r := bufio.NewReader(in)
	return controller.ConfirmFunc(func(_ context.Context, prompt string) bool {
		fmt.Fprintf(out, "%s [y/N] ", prompt)
		line, err := r.ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(out)
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		}
		return false
	})
}

func parseIndex(cmd, arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("%s: not a number: %s", cmd, arg)
	}
	return n, nil
}

func todoAt(todos []model.Todo, n int) (model.Todo, error) {
	if n < 1 || n > len(todos) {
		return model.Todo{}, fmt.Errorf("index out of range: have %d, got %d (run `checklist ls` to see valid indexes)", len(todos), n)
	}
	return todos[n-1], nil
}
