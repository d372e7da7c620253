package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/alem-hub/student-records/config"
	"github.com/alem-hub/student-records/internal/application/registry"
	"github.com/alem-hub/student-records/internal/domain/shared"
	"github.com/alem-hub/student-records/internal/domain/student"
	"github.com/alem-hub/student-records/internal/infrastructure/persistence/badger"
	"github.com/alem-hub/student-records/internal/infrastructure/persistence/jsonfile"
	"github.com/alem-hub/student-records/internal/infrastructure/persistence/postgres"
	"github.com/alem-hub/student-records/internal/infrastructure/persistence/redis"
	"github.com/alem-hub/student-records/internal/interface/console"
	"github.com/alem-hub/student-records/pkg/logger"
)

func run(ctx context.Context, configPath string, in io.Reader, out io.Writer) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. КОНФИГУРАЦИЯ
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	dataDir := cfg.Storage.DataDir
	if dataDir == "" {
		if dataDir, err = jsonfile.ExecutableDir(); err != nil {
			return err
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. ЛОГИРОВАНИЕ (в файл, чтобы не мешать меню)
	// ─────────────────────────────────────────────────────────────────────────
	log, closeLog := setupLogger(cfg, dataDir)
	defer closeLog()

	log = log.WithSessionID(uuid.NewString())
	log.Info("starting "+cfg.App.Name,
		logger.String("version", cfg.App.Version),
		logger.Backend(string(cfg.Storage.Driver)),
		logger.String("data_dir", dataDir),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. ХРАНИЛИЩЕ
	// ─────────────────────────────────────────────────────────────────────────
	gw, closeGateway, err := openGateway(ctx, cfg, dataDir, log)
	if err != nil {
		log.Error("failed to open storage", logger.Err(err))
		return fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Driver, err)
	}
	defer closeGateway()

	// ─────────────────────────────────────────────────────────────────────────
	// 4. ЗАГРУЗКА ЗАПИСЕЙ (ошибка не фатальна - стартуем с пустым списком)
	// ─────────────────────────────────────────────────────────────────────────
	store, report, err := registry.Open(ctx, gw, log)
	switch {
	case err != nil:
		fmt.Fprintln(out, "警告：数据加载失败，将以空数据启动")
	case report.Skipped > 0:
		fmt.Fprintf(out, "警告：已跳过 %d 条无效记录\n", report.Skipped)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. МЕНЮ
	// ─────────────────────────────────────────────────────────────────────────
	if err := console.New(store, in, out, log).Run(ctx); err != nil {
		if shared.IsPersistence(err) {
			// уже показано пользователю как предупреждение
			log.Warn("exiting with unsaved changes", logger.Err(err))
			return nil
		}
		return err
	}

	log.Info("stopped", logger.Count(store.Count()))
	return nil
}

// setupLogger открывает файл журнала. Если файл открыть нельзя, журнал отключается.
func setupLogger(cfg *config.Config, dataDir string) (*logger.Logger, func()) {
	opts := logger.DefaultOptions()
	opts.Level = logger.ParseLevel(cfg.Observability.LogLevel)

	path := config.ResolvePath(dataDir, cfg.Observability.LogFile)
	switch path {
	case "":
		return logger.Nop(), func() {}
	case "-":
		opts.Output = os.Stderr
		log := logger.New(opts)
		return log, func() { _ = log.Sync() }
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: logging disabled: %v\n", err)
		return logger.Nop(), func() {}
	}

	opts.Output = f
	log := logger.New(opts)
	return log, func() {
		_ = log.Sync()
		_ = f.Close()
	}
}

// openGateway создаёт gateway выбранного драйвера и функцию его закрытия.
func openGateway(ctx context.Context, cfg *config.Config, dataDir string, log *logger.Logger) (student.Gateway, func(), error) {
	noop := func() {}

	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		pgCfg := postgres.DefaultConfig()
		pgCfg.URL = cfg.Database.URL
		if cfg.Database.MaxConns > 0 {
			pgCfg.MaxConns = cfg.Database.MaxConns
		}
		if cfg.Database.ConnectTimeout > 0 {
			pgCfg.ConnectTimeout = cfg.Database.ConnectTimeout
		}

		conn, err := postgres.NewConnection(ctx, pgCfg, log)
		if err != nil {
			return nil, noop, err
		}
		gw := postgres.NewRecordGateway(conn)
		if err := gw.Migrate(ctx); err != nil {
			conn.Close()
			return nil, noop, err
		}
		return gw, conn.Close, nil

	case config.DriverRedis:
		client, err := redis.NewClient(ctx, redis.Config{
			Host:        cfg.Redis.Host,
			Port:        cfg.Redis.Port,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			Key:         cfg.Redis.Key,
			DialTimeout: cfg.Redis.DialTimeout,
		}, log)
		if err != nil {
			return nil, noop, err
		}
		return redis.NewDocumentGateway(client, cfg.Redis.Key), func() { _ = client.Close() }, nil

	case config.DriverBadger:
		gw, err := badger.Open(badger.Config{
			Path:       config.ResolvePath(dataDir, cfg.Badger.Path),
			SyncWrites: cfg.Badger.SyncWrites,
		}, log)
		if err != nil {
			return nil, noop, err
		}
		return gw, func() { _ = gw.Close() }, nil

	default:
		gw, err := jsonfile.New(jsonfile.Config{
			Dir:            dataDir,
			FileName:       cfg.Storage.FileName,
			LegacyFileName: cfg.Storage.LegacyFileName,
		})
		if err != nil {
			return nil, noop, err
		}
		return gw, noop, nil
	}
}
