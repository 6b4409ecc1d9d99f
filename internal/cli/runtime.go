package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/sanskruthi/fest-service/internal/bootstrap"
	"github.com/sanskruthi/fest-service/internal/config"
	"github.com/sanskruthi/fest-service/internal/observability"
)

// runtime is what a command needs to talk to the store.
type runtime struct {
	cfg    *config.Config
	logger *zap.Logger
	stores *bootstrap.Stores
}

func openRuntime(ctx context.Context, opts *RootOptions, tweaks ...func(*config.Config)) (*runtime, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	for _, tweak := range tweaks {
		tweak(cfg)
	}

	logger := zap.NewNop()
	if opts.Verbose {
		cfg.Logger.Output = "stderr"
		cfg.Logger.Format = "console"
		if logger, err = observability.NewLogger(cfg.Logger); err != nil {
			return nil, fmt.Errorf("init logger: %w", err)
		}
	}

	stores, err := bootstrap.OpenStores(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return &runtime{cfg: cfg, logger: logger, stores: stores}, nil
}

func (r *runtime) Close() {
	r.stores.Close()
	_ = r.logger.Sync()
}

// printer writes either human lines or one JSON document per call.
type printer struct {
	format string
	w      io.Writer
}

func newPrinter(opts *RootOptions, w io.Writer) *printer {
	return &printer{format: opts.Format, w: w}
}

func (p *printer) json() bool {
	return p.format == "json"
}

func (p *printer) emit(v any, text string, args ...any) error {
	if p.json() {
		return json.NewEncoder(p.w).Encode(v)
	}
	_, err := fmt.Fprintf(p.w, text+"\n", args...)
	return err
}
