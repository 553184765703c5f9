package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/healthlog/internal/client/client"
	"github.com/dmitrijs2005/healthlog/internal/client/config"
	"github.com/dmitrijs2005/healthlog/internal/client/keyvault"
	"github.com/dmitrijs2005/healthlog/internal/client/models"
	"github.com/dmitrijs2005/healthlog/internal/client/securestore"
	"github.com/dmitrijs2005/healthlog/internal/client/services"
	"github.com/dmitrijs2005/healthlog/internal/common"
	"github.com/dmitrijs2005/healthlog/internal/filex"
	"github.com/dmitrijs2005/healthlog/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// authService is the part of services.AuthService the CLI drives.
type authService interface {
	Register(ctx context.Context, email, password string) (*models.Session, error)
	Login(ctx context.Context, email, password string) (*models.Session, error)
	Logout(ctx context.Context) error
	CurrentSession(ctx context.Context) (*models.Session, error)
	RotateKey(ctx context.Context, sess *models.Session, reencrypt func(ctx context.Context, newKey string) error) (*models.Session, error)
	Close() error
}

// syncEngine is the part of services.SyncEngine the CLI drives.
type syncEngine interface {
	CheckConnectivity(ctx context.Context) bool
	GetStatus(ctx context.Context, ownerID int64) (*models.SyncStatus, error)
	RetryWithBackoff(ctx context.Context, ownerID int64, maxAttempts int) (*models.SyncResult, error)
	GetStats(ctx context.Context, ownerID int64) (*models.SyncStats, error)
}

type App struct {
	config *config.Config
	logger logging.Logger
	reader *bufio.Reader
	out    io.Writer

	auth       authService
	engine     syncEngine
	newRecords func(key string) (*services.RecordService, error)
	closers    []io.Closer

	mu      sync.RWMutex
	mode    Mode
	session *models.Session
	records *services.RecordService
}

// NewApp builds the client from cfg: it prepares the data directory and the
// device wrap key, opens the local database, and wires the secure store,
// key vault, remote client, auth service and sync engine.
func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	dir, err := filex.EnsureDir(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("error preparing data dir: %w", err)
	}
	cfg.DataDir = dir

	wrapKey, err := filex.LoadOrCreateKeyFile(cfg.DeviceKeyPath(), securestore.WrapKeySize, common.GenerateRandByteArray)
	if err != nil {
		return nil, fmt.Errorf("error loading device key: %w", err)
	}
	defer common.WipeByteArray(wrapKey)

	repos, err := client.InitDatabase(ctx, cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	store, err := securestore.NewSealedStore(repos.Metadata, wrapKey)
	if err != nil {
		_ = repos.Close()
		return nil, err
	}
	vault := keyvault.New(store, logger)

	api, err := client.NewGRPCClient(cfg.ServerEndpointAddr)
	if err != nil {
		_ = repos.Close()
		return nil, err
	}

	auth := services.NewAuthService(api, repos.Users, vault, store, logger, cfg.RemoteTimeout)
	engine := services.NewSyncEngine(repos.Records, api, logger,
		services.WithRemoteTimeout(cfg.RemoteTimeout),
		services.WithBackoffBase(cfg.BackoffBase),
	)
	if err := engine.Initialize(ctx); err != nil {
		_ = api.Close()
		_ = repos.Close()
		return nil, err
	}

	newRecords := func(key string) (*services.RecordService, error) {
		return services.NewRecordService(repos.Records, key, logger, services.WithResyncOnEdit(cfg.ResyncOnEdit))
	}

	a := newApp(cfg, logger, bufio.NewReader(os.Stdin), os.Stdout, auth, engine, newRecords)
	a.closers = []io.Closer{auth, repos}
	return a, nil
}

func newApp(cfg *config.Config, logger logging.Logger, r *bufio.Reader, out io.Writer,
	auth authService, engine syncEngine, newRecords func(string) (*services.RecordService, error)) *App {
	return &App{
		config:     cfg,
		logger:     logger.With("module", "cli"),
		reader:     r,
		out:        out,
		auth:       auth,
		engine:     engine,
		newRecords: newRecords,
	}
}

// Run restores the saved session, starts the connectivity watcher and
// blocks in the REPL until the user exits or ctx is done.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	fmt.Fprintln(a.out, "Welcome to healthlog (type 'help' for commands)")
	if err := a.restoreSession(ctx); err != nil {
		a.logger.Warn(ctx, "could not restore session", "error", err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.StartOnlineStatusWatcher(watchCtx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader))
}

func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) restoreSession(ctx context.Context) error {
	sess, err := a.auth.CurrentSession(ctx)
	if err != nil || sess == nil {
		return err
	}
	if err := a.startSession(sess); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Signed in as %s\n", sess.Email)
	return nil
}

// startSession binds a record service to the session key.
func (a *App) startSession(sess *models.Session) error {
	recs, err := a.newRecords(sess.EncryptionKey)
	if err != nil {
		return err
	}
	a.mu.Lock()
	a.session = sess
	a.records = recs
	a.mu.Unlock()
	return nil
}

func (a *App) endSession() {
	a.mu.Lock()
	a.session = nil
	a.records = nil
	a.mu.Unlock()
}

func (a *App) current() (*models.Session, *services.RecordService) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.session, a.records
}

func (a *App) isLoggedIn() bool {
	s, _ := a.current()
	return s != nil
}

func (a *App) Mode() Mode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()
	if changed {
		a.logger.Info(context.Background(), "connectivity changed", "mode", string(mode))
	}
}

func (a *App) getStatus() string {
	s := ""
	if sess, _ := a.current(); sess != nil {
		s = sess.Email + " "
	}
	if m := a.Mode(); m != "" {
		s = s + string(m)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// StartOnlineStatusWatcher probes the remote store every interval and
// flips the app mode accordingly. It returns when ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	a.probe(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.probe(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) probe(ctx context.Context) {
	if a.engine.CheckConnectivity(ctx) {
		a.setMode(ModeOnline)
	} else {
		a.setMode(ModeOffline)
	}
}
