package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/AdrienGannerie/gridboard/pkg/grid"
)

// commandContext bundles what every subcommand needs: the cobra context, the
// context-attached logger, and the resolved configuration.
type commandContext struct {
	ctx    context.Context
	logger *log.Logger
	cfg    Config
}

func newCommandContext(cmd *cobra.Command, configPath *string) (*commandContext, error) {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	cfg, err := loadConfig(*configPath)
	if err != nil {
		return nil, err
	}
	return &commandContext{ctx: ctx, logger: logger, cfg: cfg}, nil
}

// attachEngine opens the configured store and attaches a fresh engine to it.
// The returned cleanup must run after the engine is no longer used.
func (cc *commandContext) attachEngine() (*grid.Engine, func(), error) {
	st, cleanup, err := cc.cfg.openStore(cc)
	if err != nil {
		return nil, cleanup, err
	}
	eng := grid.NewEngine(cc.logger)
	start := time.Now()
	if err := eng.Attach(cc.ctx, st, cc.cfg.gridOptions()); err != nil {
		cleanup()
		return nil, func() {}, err
	}
	cc.logger.Infof("%s (%s)", pluralItems(len(eng.Items())), time.Since(start).Round(time.Millisecond))
	return eng, cleanup, nil
}

func pluralItems(n int) string {
	if n == 1 {
		return "Mounted 1 item"
	}
	return fmt.Sprintf("Mounted %d items", n)
}
