package main

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-topology/pkg/client"
	"github.com/dd0wney/cluso-topology/pkg/config"
	"github.com/dd0wney/cluso-topology/pkg/engine"
	"github.com/dd0wney/cluso-topology/pkg/health"
	"github.com/dd0wney/cluso-topology/pkg/logging"
	"github.com/dd0wney/cluso-topology/pkg/session"
	"github.com/dd0wney/cluso-topology/pkg/visualization"
)

var (
	viewLayout   string
	viewSettings string
	viewLogFile  string
)

func init() {
	addFilterFlags(viewCmd)
	viewCmd.Flags().StringVar(&viewLayout, "layout", "", "Seed layout: spiral, circular or hierarchical")
	viewCmd.Flags().StringVar(&viewSettings, "settings", "", "Settings file to watch for live changes")
	viewCmd.Flags().StringVar(&viewLogFile, "log-file", "", "Write logs to this file while the view is open")
	rootCmd.AddCommand(viewCmd)
}

var viewCmd = &cobra.Command{
	Use:     "view",
	Aliases: []string{"v", "tui"},
	Short:   "Open the interactive graph view",
	Long: `Open the graph in a full-screen terminal view. The layout relaxes as a
force simulation; click a node for its details and neighbours.

Keys:
  /        search by title or name
  f        node and relation filters
  s        link width, opacity and node spread
  c        fit the camera to the graph
  r        reload from the backend
  esc      close the detail panel
  ?        all key bindings

With --settings the file is watched and edits apply live.`,
	Args: cobra.NoArgs,
	RunE: runView,
}

func runView(cmd *cobra.Command, args []string) error {
	if viewLayout != "" {
		cfg.View.Layout = viewLayout
	}
	if viewSettings != "" {
		cfg.View.SettingsFile = viewSettings
	}
	if viewLogFile != "" {
		cfg.Log.File = viewLogFile
	}
	if err := cfg.Validate(); err != nil {
		return configError{err}
	}
	filter, err := filterFromFlags(cmd)
	if err != nil {
		return configError{err}
	}

	logger, closer, err := newTUILogger()
	if err != nil {
		return configError{err}
	}
	defer closer.Close()

	reg := newRegistry()
	c := newClient(logger, reg)

	layout, _ := engine.LayoutByName(cfg.View.Layout, nil)
	eng := engine.New(
		engine.WithLayout(layout),
		engine.WithLogger(logger),
		engine.WithMetrics(reg),
	)

	// p is assigned before the watcher starts, so onChange never sees nil
	// once events can arrive.
	var p *tea.Program
	settings := cfg.View.Settings
	var watcher *config.SettingsWatcher
	if cfg.View.SettingsFile != "" {
		watcher, err = config.NewSettingsWatcher(cfg.View.SettingsFile, logger, func(s visualization.Settings) {
			if p != nil {
				p.Send(settingsMsg(s))
			}
		})
		if err != nil {
			return configError{err}
		}
		settings = watcher.Current()
	}

	view, err := visualization.NewView(eng,
		visualization.WithLogger(logger),
		visualization.WithMetrics(reg),
		visualization.WithSettings(settings),
	)
	if err != nil {
		return configError{err}
	}
	sess := session.New(c, view, logger)

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	m := newModel(ctx, c, sess, eng, filter, cfg.FrameInterval())
	p = tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	if watcher != nil {
		watcher.Start()
		defer watcher.Stop()
	}

	if reg != nil {
		go runDiagnostics(ctx, viewHealth(c, eng), reg, logger)
	}

	logger.Info("view started",
		logging.String("api", cfg.API.BaseURL),
		logging.String("layout", cfg.View.Layout))

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("view: %w", err)
	}
	return nil
}

// viewHealth reports the backend as readiness and the simulation and
// process memory as liveness.
func viewHealth(c *client.Client, eng *engine.Engine) *health.HealthChecker {
	hc := health.NewHealthChecker()
	hc.RegisterReadinessCheck("backend", health.BackendCheck(c.Ping, c.BreakerOpen, 0))
	hc.RegisterLivenessCheck("simulation", health.SimulationCheck(func() health.SimulationState {
		nodes, links := eng.Counts()
		return health.SimulationState{
			Alpha:    eng.Alpha(),
			Ticks:    eng.Ticks(),
			Settled:  eng.Settled(),
			Nodes:    nodes,
			Links:    links,
			Dangling: eng.DanglingLinks(),
		}
	}))
	hc.RegisterLivenessCheck("memory", health.MemoryCheck(nil))
	return hc
}
