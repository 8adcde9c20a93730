package commands

import (
	"io"

	"github.com/rs/zerolog"
	"virtest/internal/config"
	"virtest/internal/declaration"
	"virtest/internal/discovery"
	"virtest/internal/execution"
	"virtest/internal/exitguard"
	"virtest/internal/loader"
	"virtest/internal/logging"
	"virtest/internal/orchestrator"
	"virtest/internal/parser"
	"virtest/internal/storage"
	"virtest/internal/ui"
)

// App holds the dependencies shared by the commands of one invocation.
type App struct {
	Config       *config.Config
	Logger       zerolog.Logger
	Orchestrator *orchestrator.Orchestrator
	Storage      storage.Storage
	Parser       parser.Parser
	Formatter    *ui.Formatter
	Viewer       ui.Viewer
}

// NewApp wires the run pipeline for cfg. Every executing test registers on
// guard.
func NewApp(cfg *config.Config, guard *exitguard.Guard, out io.Writer) *App {
	logger := logging.New(cfg.Logging())

	registry := loader.NewRegistry()
	yamlLoader := loader.NewYAMLLoader(loader.NewCommandRunner(), logging.WithComponent(logger, "loader"))
	registry.Register(".yaml", yamlLoader)
	registry.Register(".yml", yamlLoader)

	executor := execution.NewExecutor(guard, logging.WithComponent(logger, "executor"))
	runner := execution.NewRunner(executor, logging.WithComponent(logger, "runner"))
	runner.SetFailFast(cfg.Flags.FailFast)

	orch := orchestrator.New(
		discovery.NewScanner(cfg.PathsToIgnore, cfg.Patterns),
		registry,
		declaration.NewContext(logging.WithComponent(logger, "declaration")),
		runner,
		logging.WithComponent(logger, "orchestrator"),
	)
	orch.SetNameFilter(cfg.Flags.NameFilter)

	jsonStorage := storage.NewJSONStorage(cfg)
	return &App{
		Config:       cfg,
		Logger:       logger,
		Orchestrator: orch,
		Storage:      jsonStorage,
		Parser:       parser.NewResultParser(),
		Formatter:    ui.NewFormatter(cfg, out),
		Viewer:       ui.NewErrorViewer(jsonStorage, logging.WithComponent(logger, "faills")),
	}
}

// inputs are the command arguments, or the configured test path.
func (a *App) inputs(args []string) []string {
	if len(args) > 0 {
		return args
	}
	return []string{a.Config.GetTestPath()}
}
