package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/at-ishikawa/pobcards/internal/clock"
	"github.com/at-ishikawa/pobcards/internal/config"
	"github.com/at-ishikawa/pobcards/internal/database"
	"github.com/at-ishikawa/pobcards/internal/deck"
	"github.com/at-ishikawa/pobcards/internal/gateway"
	"github.com/at-ishikawa/pobcards/internal/gateway/dbgateway"
	"github.com/at-ishikawa/pobcards/internal/gateway/firebase"
	"github.com/at-ishikawa/pobcards/internal/gateway/rpcclient"
	"github.com/at-ishikawa/pobcards/internal/gateway/s3share"
)

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("load config loader: %w", err)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func currentUser(cfg *config.Config) (gateway.User, error) {
	if cfg.User.ID == "" {
		return gateway.User{}, errors.New("user.id is not configured; set it in the config file or POBCARDS_USER_ID")
	}
	return gateway.User{ID: cfg.User.ID}, nil
}

// newGateway builds the configured gateway backend. The returned function releases
// whatever connections the backend holds.
func newGateway(ctx context.Context, cfg *config.Config) (gateway.Gateway, func() error, error) {
	var closers []func() error
	closeAll := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		return errors.Join(errs...)
	}

	var backend gateway.Gateway
	switch cfg.Gateway.Backend {
	case config.GatewayDatabase:
		db, err := database.Open(cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}
		closers = append(closers, db.Close)
		backend = dbgateway.New(db)
	case config.GatewayFirebase:
		timeout := time.Duration(cfg.Gateway.Firebase.TimeoutSeconds) * time.Second
		client := firebase.New(cfg.Gateway.Firebase.URL, cfg.Gateway.Firebase.Token, timeout)
		closers = append(closers, client.Close)
		backend = client
	default:
		backend = rpcclient.New(http.DefaultClient, cfg.Gateway.RPC.BaseURL)
	}

	if cfg.Shares.Backend == config.SharesS3 {
		shares, err := s3share.NewFromConfig(ctx, cfg.Shares.S3)
		if err != nil {
			_ = closeAll()
			return nil, nil, fmt.Errorf("create s3 share store: %w", err)
		}
		backend = gateway.Composite{
			ContentStore: backend,
			ScoreStore:   backend,
			ShareStore:   shares,
		}
	}

	slog.Debug("gateway ready", "backend", cfg.Gateway.Backend, "shares", cfg.Shares.Backend)
	return backend, closeAll, nil
}

// newLibrary loads the personal decks from the configured slot.
func newLibrary(cfg *config.Config) (*deck.Library, func() error, error) {
	var slot deck.Slot
	closeSlot := func() error { return nil }

	switch cfg.Storage.Backend {
	case config.StorageMemory:
		slot = deck.NewMemorySlot()
	case config.StorageSQLite:
		sqliteSlot, err := deck.OpenSQLiteSlot(cfg.Storage.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite slot: %w", err)
		}
		slot = sqliteSlot
		closeSlot = sqliteSlot.Close
	default:
		slot = deck.NewFileSlot(filepath.Clean(cfg.Storage.Path))
	}

	logger := slog.Default()
	library := deck.NewLibrary(
		deck.NewStore(slot, logger),
		deck.WithIDGenerator(deck.NewUUIDGenerator(clock.Real{})),
		deck.WithLogger(logger),
	)
	return library, closeSlot, nil
}

func findDeck(library *deck.Library, id string) (deck.Deck, error) {
	d, ok := library.Find(id)
	if !ok {
		return deck.Deck{}, fmt.Errorf("deck %s not found", id)
	}
	return d, nil
}

// warnStorage prints the unsaved-changes warning and reports whether err was a storage failure.
// The change is still in memory when it was.
func warnStorage(w io.Writer, err error) bool {
	var storageErr *deck.StorageError
	if !errors.As(err, &storageErr) {
		return false
	}
	slog.Warn("failed to save decks", "error", storageErr)
	fmt.Fprintf(w, "Warning: %s\n", deck.UnsavedWarning)
	return true
}
