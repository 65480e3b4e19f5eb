package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KirkDiggler/rpg-toolkit/events"

	"github.com/superpet/superpet-api/internal/catalog"
	"github.com/superpet/superpet-api/internal/clients/cloudsync"
	"github.com/superpet/superpet-api/internal/engine"
	"github.com/superpet/superpet-api/internal/handlers/superpet/v1alpha1"
	battleorch "github.com/superpet/superpet-api/internal/orchestrators/battle"
	characterorch "github.com/superpet/superpet-api/internal/orchestrators/character"
	cloudorch "github.com/superpet/superpet-api/internal/orchestrators/cloud"
	inventoryorch "github.com/superpet/superpet-api/internal/orchestrators/inventory"
	missionorch "github.com/superpet/superpet-api/internal/orchestrators/mission"
	"github.com/superpet/superpet-api/internal/pkg/clock"
	"github.com/superpet/superpet-api/internal/pkg/idgen"
	"github.com/superpet/superpet-api/internal/pkg/rng"
	redisclient "github.com/superpet/superpet-api/internal/redis"
	battlerepo "github.com/superpet/superpet-api/internal/repositories/battle"
	characterrepo "github.com/superpet/superpet-api/internal/repositories/character"
	inventoryrepo "github.com/superpet/superpet-api/internal/repositories/inventory"
	missionrepo "github.com/superpet/superpet-api/internal/repositories/mission"
	"github.com/superpet/superpet-api/internal/repositories/storage"
)

// Storage backends selectable with --storage.
const (
	storageMemory = "memory"
	storageRedis  = "redis"
	storageSQLite = "sqlite"
)

// app holds the wired game services and whatever needs closing on shutdown.
type app struct {
	handler  *v1alpha1.Handler
	battles  *battleorch.Orchestrator
	missions *missionorch.Orchestrator
	closers  []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func openStore(ctx context.Context) (storage.Store, func(), error) {
	switch storageBackend {
	case storageMemory:
		return storage.NewMemory(), func() {}, nil
	case storageRedis:
		client, err := redisclient.NewClient(redisAddr, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create redis client: %w", err)
		}
		store, err := storage.NewRedis(&storage.RedisConfig{Client: client, Version: storageVersion})
		if err != nil {
			return nil, nil, err
		}
		if err := store.Init(ctx); err != nil {
			return nil, nil, fmt.Errorf("failed to initialize redis store: %w", err)
		}
		return store, func() {
			if err := client.Close(); err != nil {
				slog.Warn("failed to close redis client", "error", err)
			}
		}, nil
	case storageSQLite:
		db, err := storage.InitSQLite(sqlitePath)
		if err != nil {
			return nil, nil, err
		}
		store, err := storage.NewSQLite(&storage.SQLiteConfig{DB: db, Version: storageVersion})
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		if err := store.Init(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("failed to initialize sqlite store: %w", err)
		}
		return store, func() {
			if err := db.Close(); err != nil {
				slog.Warn("failed to close sqlite database", "error", err)
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", storageBackend)
	}
}

func newRandom() rng.Source {
	if seed != 0 {
		return rng.NewSeeded(seed)
	}
	return rng.NewDice(nil)
}

// newApp wires repositories, orchestrators and the gRPC handler.
func newApp(ctx context.Context) (*app, error) {
	a := &app{}
	ok := false
	defer func() {
		if !ok {
			a.Close()
		}
	}()

	content, err := catalog.LoadEmbedded()
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	rules, err := engine.New(&engine.Config{Catalog: content, Random: newRandom()})
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	store, closeStore, err := openStore(ctx)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeStore)

	instanceIDs := idgen.NewInstanceIDs(idgen.NewUUID(""))
	characters, err := characterrepo.NewStore(&characterrepo.StoreConfig{Store: store, InstanceIDs: instanceIDs})
	if err != nil {
		return nil, err
	}
	inventories, err := inventoryrepo.NewStore(&inventoryrepo.StoreConfig{Store: store})
	if err != nil {
		return nil, err
	}
	missionStates, err := missionrepo.NewStore(&missionrepo.StoreConfig{Store: store})
	if err != nil {
		return nil, err
	}

	var (
		saver       cloudsync.Saver = cloudsync.Noop{}
		cloudClient cloudsync.Client
		scheduler   *cloudsync.Scheduler
	)
	if syncURL != "" {
		cloudClient, err = cloudsync.New(&cloudsync.Config{BaseURL: syncURL})
		if err != nil {
			return nil, fmt.Errorf("failed to create cloud client: %w", err)
		}
		scheduler, err = cloudsync.NewScheduler(&cloudsync.SchedulerConfig{
			Client: cloudClient,
			Store:  store,
			Delay:  saveDelay,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create save scheduler: %w", err)
		}
		a.closers = append(a.closers, scheduler.Close)
		saver = scheduler
		slog.Info("cloud sync enabled", "url", syncURL)
	}

	bus := events.NewBus()
	clk := clock.New()

	characterCfg := &characterorch.Config{
		CharacterRepo: characters,
		InventoryRepo: inventories,
		Engine:        rules,
		Catalog:       content,
		IDGenerator:   idgen.NewUUID("char"),
		InstanceIDs:   instanceIDs,
		Clock:         clk,
		Saver:         saver,
	}
	inventoryCfg := &inventoryorch.Config{
		CharacterRepo: characters,
		InventoryRepo: inventories,
		Engine:        rules,
		Catalog:       content,
		InstanceIDs:   instanceIDs,
		Saver:         saver,
	}
	if cloudClient != nil {
		characterCfg.Gems = cloudClient
		inventoryCfg.Gems = cloudClient
	}

	characterService, err := characterorch.New(characterCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create character orchestrator: %w", err)
	}
	inventoryService, err := inventoryorch.New(inventoryCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create inventory orchestrator: %w", err)
	}
	a.battles, err = battleorch.New(&battleorch.Config{
		CharacterRepo: characters,
		InventoryRepo: inventories,
		BattleRepo:    battlerepo.NewInMemory(),
		Engine:        rules,
		Catalog:       content,
		IDGenerator:   idgen.NewUUID("battle"),
		InstanceIDs:   instanceIDs,
		EventBus:      bus,
		Saver:         saver,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create battle orchestrator: %w", err)
	}
	a.missions, err = missionorch.New(&missionorch.Config{
		CharacterRepo: characters,
		InventoryRepo: inventories,
		MissionRepo:   missionStates,
		Catalog:       content,
		Clock:         clk,
		InstanceIDs:   instanceIDs,
		EventBus:      bus,
		Saver:         saver,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create mission orchestrator: %w", err)
	}
	a.closers = append(a.closers, func() {
		if err := a.missions.Close(); err != nil {
			slog.Warn("failed to close mission orchestrator", "error", err)
		}
	})

	handlerCfg := &v1alpha1.HandlerConfig{
		CharacterService: characterService,
		InventoryService: inventoryService,
		BattleService:    a.battles,
		MissionService:   a.missions,
	}
	if scheduler != nil {
		cloudService, err := cloudorch.New(&cloudorch.Config{Client: cloudClient, Syncer: scheduler})
		if err != nil {
			return nil, fmt.Errorf("failed to create cloud orchestrator: %w", err)
		}
		handlerCfg.CloudService = cloudService
	}

	a.handler, err = v1alpha1.NewHandler(handlerCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create game handler: %w", err)
	}

	ok = true
	return a, nil
}
