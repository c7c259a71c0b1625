package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/Veraticus/ifrec/internal/backup"
	"github.com/Veraticus/ifrec/internal/common"
	"github.com/Veraticus/ifrec/internal/config"
	"github.com/Veraticus/ifrec/internal/model"
	"github.com/Veraticus/ifrec/internal/quotes"
	"github.com/Veraticus/ifrec/internal/repair"
	"github.com/Veraticus/ifrec/internal/storage"
	"github.com/spf13/viper"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, common.NewUserError("Configuration is invalid", err)
	}
	return cfg, nil
}

func initStorage(ctx context.Context, cfg *config.Config) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(cfg.Data.Database)
	if err != nil {
		return nil, common.NewUserError("Cannot open audit database", err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

func closeStorage(store *storage.SQLiteStorage) {
	if err := store.Close(); err != nil {
		common.LogError(err, "failed to close storage", common.Fields{"path": store.Path()})
	}
}

func newBackupStore(cfg *config.Config) *backup.Store {
	return backup.NewStore(cfg.Data.BackupRoot, backup.WithRawMarker(filepath.Base(cfg.Data.RawRoot)))
}

func newCodec(cfg *config.Config) (*quotes.Codec, error) {
	codec, err := quotes.NewCodec(cfg.Validation.Encoding)
	if err != nil {
		return nil, common.NewUserError("Unsupported file encoding", err)
	}
	return codec, nil
}

func newEngine(cfg *config.Config) (*repair.Engine, error) {
	codec, err := newCodec(cfg)
	if err != nil {
		return nil, err
	}
	return repair.NewEngine(quotes.NewClassifier(codec), newBackupStore(cfg)), nil
}

func recordRun(ctx context.Context, cfg *config.Config, run *model.Run, results []model.ValidationResult, tables []model.TableResult) error {
	store, err := initStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStorage(store)

	if err := store.SaveRun(ctx, run, results, tables); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	slog.Info("run recorded", "run_id", run.ID, "kind", run.Kind)
	return nil
}
