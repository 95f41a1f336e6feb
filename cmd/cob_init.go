package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/salus-health/benefits-cli/internal/cob"
	"github.com/salus-health/benefits-cli/internal/store"
	"github.com/salus-health/benefits-cli/pkg/reasoning"
)

// cobEnv holds the initialized store and pipeline shared by the analyze,
// chat, batch, and serve commands.
type cobEnv struct {
	Store    store.Store
	Pipeline *cob.Pipeline
}

// Close releases resources held by the environment.
func (e *cobEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initCOB sets up the store, the reasoning client (when a key is
// configured), and the coordination pipeline. Callers should defer
// env.Close().
func initCOB(ctx context.Context) (*cobEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	var client reasoning.Client
	if cfg.Reasoning.Key != "" {
		client = reasoning.NewClient(cfg.Reasoning.Key, cfg.Reasoning.Model,
			reasoning.WithMaxTokens(cfg.Reasoning.MaxTokens),
			reasoning.WithRateLimit(cfg.Reasoning.RateRPS, cfg.Reasoning.RateBurst),
		)
	} else {
		zap.L().Warn("SALUS_REASONING_KEY not set, all stages will use rule-based fallbacks")
	}

	return &cobEnv{
		Store:    st,
		Pipeline: cob.New(cfg.Coverage, st, client),
	}, nil
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "salus.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}
