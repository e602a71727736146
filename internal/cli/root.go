// Package cli is the checklist command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Makepad-fr/checklist/internal/auth"
	"github.com/Makepad-fr/checklist/internal/config"
	"github.com/Makepad-fr/checklist/internal/controller"
	"github.com/Makepad-fr/checklist/internal/graphql"
	"github.com/Makepad-fr/checklist/internal/logger"
	"github.com/Makepad-fr/checklist/internal/ui"
)

// Deps are the process resources the commands use. Zero fields fall back to
// the standard streams and a GraphQL client built from config.
type Deps struct {
	In      io.Reader
	Out     io.Writer
	Err     io.Writer
	Service controller.DataService
	Logger  *zap.Logger
}

type app struct {
	deps Deps

	configDir string
	group     bool
	theme     string
	color     string
	verbose   bool

	cfg *config.Config
	log *zap.Logger
	svc controller.DataService
}

// Execute runs the root command against os.Args and returns an exit code.
func Execute(ctx context.Context) int {
	root := NewRootCmd(Deps{})
	if err := root.ExecuteContext(ctx); err != nil {
		ui.Fail(os.Stderr, err.Error())
		return 1
	}
	return 0
}

func NewRootCmd(deps Deps) *cobra.Command {
	if deps.In == nil {
		deps.In = os.Stdin
	}
	if deps.Out == nil {
		deps.Out = os.Stdout
	}
	if deps.Err == nil {
		deps.Err = os.Stderr
	}
	a := &app{deps: deps}

	root := &cobra.Command{
		Use:   "checklist",
		Short: "A GraphQL-backed todo list",
		Long: `checklist lists, adds, toggles and deletes todos stored behind a
GraphQL endpoint. Run "checklist tui" for the interactive list.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setColor()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.log != nil {
				_ = logger.Sync(a.log)
			}
			return nil
		},
	}
	root.SetIn(deps.In)
	root.SetOut(deps.Out)
	root.SetErr(deps.Err)

	pf := root.PersistentFlags()
	pf.StringVar(&a.configDir, "config-dir", "", "directory holding checklist.yml (default $"+config.EnvDir+" or .)")
	pf.BoolVar(&a.group, "group", false, "group output by pending/done")
	pf.StringVar(&a.theme, "theme", "", "output theme: classic, neon or mono")
	pf.StringVar(&a.color, "color", "auto", "color output: auto, always or never")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "log requests to stderr")

	root.AddCommand(
		a.newListCmd(),
		a.newAddCmd(),
		a.newDoneCmd(),
		a.newRemoveCmd(),
		a.newTUICmd(),
		a.newAuthCmd(),
	)
	return root
}

// setup loads config, logger and service once. With an injected service no
// config file is required.
func (a *app) setup(interactive bool) error {
	if a.svc != nil {
		return nil
	}

	if a.deps.Service != nil {
		a.cfg = &config.Config{}
	} else {
		cfg, err := config.Load(a.configDir)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}
	if a.group {
		a.cfg.Group = true
	}
	if a.theme != "" {
		a.cfg.Theme = a.theme
	}
	ui.SetTheme(a.cfg.Theme)

	log, err := a.newLogger(interactive)
	if err != nil {
		return err
	}
	a.log = log

	if a.deps.Service != nil {
		a.svc = a.deps.Service
		return nil
	}

	opts := []graphql.Option{graphql.WithLogger(a.log)}
	if a.cfg.AdminSecret != "" {
		opts = append(opts, graphql.WithAdminSecret(a.cfg.AdminSecret))
	}
	ti, err := auth.GetToken()
	if err != nil {
		return fmt.Errorf("credentials: %w", err)
	}
	if ti != nil {
		opts = append(opts, graphql.WithToken(ti.Token))
	}
	a.svc = graphql.New(a.cfg.Endpoint, opts...)
	return nil
}

func (a *app) newLogger(interactive bool) (*zap.Logger, error) {
	switch {
	case a.deps.Logger != nil:
		return a.deps.Logger, nil
	case a.verbose && !interactive:
		return logger.New("debug", "", true)
	default:
		level := a.cfg.LogLevel
		if level == "" {
			level = "info"
		}
		return logger.FileOnly(level, a.cfg.LogFile)
	}
}

func (a *app) newController(confirm controller.Confirmer) *controller.Controller {
	return controller.New(a.svc,
		controller.WithConfirmer(confirm),
		controller.WithLogger(a.log),
		controller.WithRequestTimeout(a.cfg.Timeout()),
	)
}

// loaded builds a controller and runs the initial list query.
func (a *app) loaded(ctx context.Context, confirm controller.Confirmer) (*controller.Controller, error) {
	if err := a.setup(false); err != nil {
		return nil, err
	}
	ctrl := a.newController(confirm)
	if err := ctrl.Load(ctx); err != nil {
		return nil, err
	}
	return ctrl, nil
}

// setColor applies --color. auto colors terminals unless NO_COLOR is set.
func (a *app) setColor() error {
	switch a.color {
	case "", "auto":
		ui.SetColorForcing(false, os.Getenv("NO_COLOR") != "")
	case "always":
		ui.SetColorForcing(true, false)
	case "never":
		ui.SetColorForcing(false, true)
	default:
		return fmt.Errorf("invalid --color %q: want auto, always or never", a.color)
	}
	return nil
}
