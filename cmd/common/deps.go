// Package common provides shared utilities for command implementations.
package common

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/viper"

	"github.com/jonesrussell/north-cloud/interlinker/internal/config"
	"github.com/jonesrussell/north-cloud/interlinker/internal/injector"
	"github.com/jonesrussell/north-cloud/interlinker/internal/logger"
)

// Viper keys bound by the root command.
const (
	KeyConfig = "config"
	KeyDebug  = "debug"
)

// CommandDeps holds the dependencies every command needs.
type CommandDeps struct {
	Logger logger.Logger
	Config *config.Config
}

// Validate ensures all required dependencies are present.
func (d CommandDeps) Validate() error {
	if d.Logger == nil {
		return ErrLoggerRequired
	}
	if d.Config == nil {
		return ErrConfigRequired
	}
	return nil
}

// NewCommandDeps loads the configuration named by --config (or
// INTERLINKER_CONFIG) and builds the logger from it.
func NewCommandDeps() (CommandDeps, error) {
	cfg, err := config.Load(config.ResolvePath(viper.GetString(KeyConfig)))
	if err != nil {
		return CommandDeps{}, fmt.Errorf("load config: %w", err)
	}

	if viper.GetBool(KeyDebug) {
		cfg.Service.Debug = true
		cfg.Logging.Level = "debug"
	}

	log, err := logger.New(cfg.Logging.Logger())
	if err != nil {
		return CommandDeps{}, fmt.Errorf("create logger: %w", err)
	}

	deps := CommandDeps{Logger: log, Config: cfg}
	if validateErr := deps.Validate(); validateErr != nil {
		return CommandDeps{}, fmt.Errorf("validate deps: %w", validateErr)
	}
	return deps, nil
}

// NewInjector builds an injector from the loaded injection options.
func (d CommandDeps) NewInjector(options ...injector.Option) (*injector.Injector, error) {
	inj, err := injector.New(d.Logger, d.Config.Injection, options...)
	if err != nil {
		return nil, fmt.Errorf("create injector: %w", err)
	}
	return inj, nil
}

// ReadInput reads path, or stdin when path is "-".
func ReadInput(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
