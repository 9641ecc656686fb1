package cli

import (
	"context"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"worldquiz/internal/app"
	"worldquiz/internal/config"
	"worldquiz/internal/dataset"
	"worldquiz/internal/infra/memory"
	infraredis "worldquiz/internal/infra/redis"
	"worldquiz/internal/infra/store"
)

// deps holds everything a subcommand needs, wired from config.
type deps struct {
	cfg   config.Config
	store *store.Store
	redis *redis.Client
}

// openDeps loads config and opens the store. The schema is created when
// migrate is true.
func openDeps(ctx context.Context, configPath string, migrate bool) (*deps, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	if migrate {
		if err := st.InitializeSchema(ctx); err != nil {
			_ = st.Close()
			return nil, err
		}
	}

	d := &deps{cfg: cfg, store: st}
	if cfg.Redis.Addr != "" {
		d.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	return d, nil
}

func (d *deps) Close() {
	if d.redis != nil {
		_ = d.redis.Close()
	}
	if err := d.store.Close(); err != nil {
		glog.Warningf("close store: %v", err)
	}
}

// datasetLines returns the configured dataset, or the bundled one.
func (d *deps) datasetLines(path string) ([]string, error) {
	if path == "" {
		path = d.cfg.Dataset.Path
	}
	if path == "" {
		return dataset.Bundled(), nil
	}
	return dataset.ReadFile(path)
}

// importReferenceData runs the importer off the calling goroutine and waits
// for it. observer receives the single completion notification.
func (d *deps) importReferenceData(ctx context.Context, path string, observer app.ImportObserver) (app.ImportReport, error) {
	lines, err := d.datasetLines(path)
	if err != nil {
		return app.ImportReport{}, err
	}
	importer := app.NewImporter(d.store, observer)
	return importer.ImportAsync(ctx, lines).Wait(ctx)
}

// ensureReferenceData imports the dataset only when the store has none.
func (d *deps) ensureReferenceData(ctx context.Context, observer app.ImportObserver) error {
	ok, err := d.store.HasReferenceData(ctx)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	_, err = d.importReferenceData(ctx, "", observer)
	return err
}

func (d *deps) resultHistory() app.ResultHistory {
	ttl := historyTTL(d.cfg)
	if d.redis != nil {
		return infraredis.NewResultHistory(d.redis, d.store, ttl)
	}
	return memory.NewResultHistory(d.store, ttl)
}

// historyTTL disables the in-process history cache when the database is
// shared and no Redis carries invalidations between processes.
func historyTTL(cfg config.Config) time.Duration {
	if cfg.Redis.Addr == "" && cfg.Database.Driver == store.DriverPostgres {
		return 0
	}
	return config.TTLDuration(cfg.History.TTL, 5*time.Minute)
}

func (d *deps) runLedger() app.CompletionLedger {
	if d.redis != nil {
		return infraredis.NewRunLedger(d.redis, config.TTLDuration(d.cfg.Redis.TTL, 24*time.Hour))
	}
	return memory.NewRunLedger()
}

func (d *deps) quizService() *app.QuizService {
	generator := app.NewQuestionGenerator(d.store, app.WithQuestionCount(d.cfg.Quiz.Questions))
	return app.NewQuizService(d.store, generator, d.runLedger(), d.resultHistory(),
		app.WithSessionLabel(d.cfg.Quiz.Label))
}

func wrapImportErr(err error) error {
	return errors.Wrap(err, "import reference data")
}
