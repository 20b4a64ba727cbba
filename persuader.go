// Package persuader is the runtime's library surface: Persuade, the
// self-correcting schema-validated retry loop, and InitSession, a
// lighter-weight entry point that sets up (or reuses) a provider session
// without running any schema validation. Both are thin wrappers over
// internal/orchestrator and internal/session, built once from the
// configuration internal/config loads from PERSUADER_CONFIG_DIR (or the
// working directory), the way the teacher's cmd/server builds its
// dependency graph once at startup and hands it to every request handler.
//
// Reuse is on by default: a call without a SessionID resumes the
// most-recently-active session for its provider, which can be a session
// opened by unrelated work sharing the same Session Manager.
package persuader

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/spf13/afero"

	"persuader/internal/config"
	"persuader/internal/orchestrator"
	"persuader/internal/plog"
	"persuader/internal/provider"
	"persuader/internal/session"
)

var (
	defaultOnce sync.Once
	defaultOrch *orchestrator.Orchestrator
	defaultErr  error
)

// Default lazily builds (and caches) the package-level Orchestrator from
// on-disk configuration. Exported so cmd/persuade and other embedders can
// reuse the exact same wiring instead of duplicating it.
func Default() (*orchestrator.Orchestrator, error) {
	defaultOnce.Do(func() {
		dir := os.Getenv("PERSUADER_CONFIG_DIR")
		if dir == "" {
			dir = "."
		}
		cfg, err := config.NewLoader(dir).LoadConfig()
		if err != nil {
			defaultErr = fmt.Errorf("load config: %w", err)
			return
		}
		defaultOrch, defaultErr = Build(cfg)
	})
	return defaultOrch, defaultErr
}

// Build wires one Orchestrator from an already-loaded AppConfig: every
// configured provider is registered with a provider.Factory, the config's
// default provider is constructed as the Orchestrator's adapter, and the
// Session Manager is built with the configured LRU cap, TTL, and (if set)
// afero-backed disk persistence.
func Build(cfg *config.AppConfig) (*orchestrator.Orchestrator, error) {
	factory := provider.NewFactory()
	for name, pc := range cfg.Providers {
		if err := factory.RegisterProvider(name, pc.ToFactoryConfig()); err != nil {
			return nil, fmt.Errorf("register provider %q: %w", name, err)
		}
	}
	adapter, err := factory.CreateProvider(cfg.Orchestrator.DefaultProvider)
	if err != nil {
		return nil, fmt.Errorf("create default provider %q: %w", cfg.Orchestrator.DefaultProvider, err)
	}

	var store *session.Store
	if cfg.Session.PersistencePath != "" {
		store, err = session.NewStore(afero.NewOsFs(), cfg.Session.PersistencePath)
		if err != nil {
			return nil, fmt.Errorf("open session store: %w", err)
		}
	}
	mgr := session.NewManager(cfg.Session.LRUCapacity, store, cfg.Session.DefaultTTL)
	log := plog.New(os.Stdout, cfg.Logging.Level)
	return orchestrator.New(adapter, mgr, log), nil
}

// Persuade runs the self-correcting retry loop against the package's
// default Orchestrator. Callers that need a non-default provider set or
// their own Session Manager should build an *orchestrator.Orchestrator
// directly (see Build) and call its Persuade method instead.
func Persuade(ctx context.Context, opts orchestrator.Options) (*orchestrator.Result, error) {
	o, err := Default()
	if err != nil {
		return nil, err
	}
	return o.Persuade(ctx, opts)
}

// SessionInitRequest configures InitSession.
type SessionInitRequest struct {
	Context       string // durable system instruction for a new session
	InitialPrompt string // optional; if set, sent immediately and its raw reply returned
	SessionID     string // optional; reuse this logical session if it still exists
	Provider      string
	Model         string
	Options       provider.Options
}

// SessionInitResult is InitSession's outcome.
type SessionInitResult struct {
	SessionID string
	Provider  string
	Reply     string // raw adapter reply to InitialPrompt, empty if none was sent
}

// InitSession creates or reuses a session without running any schema
// validation, for callers that just want a warmed-up conversation (and,
// optionally, the raw reply to one opening prompt) ahead of later
// Persuade calls against the same SessionID.
func InitSession(ctx context.Context, req SessionInitRequest) (*SessionInitResult, error) {
	o, err := Default()
	if err != nil {
		return nil, err
	}

	sess, err := o.Sessions.EnsureSession(ctx, o.Adapter, req.Provider, req.Context, req.SessionID, true)
	if err != nil {
		return nil, err
	}

	result := &SessionInitResult{SessionID: sess.ID, Provider: req.Provider}
	if req.InitialPrompt == "" {
		return result, nil
	}

	resp, err := o.Adapter.SendPrompt(ctx, sess.ProviderSessionID, req.InitialPrompt, req.Options)
	if err != nil {
		return nil, err
	}
	sess.WithLock(func() { sess.Metadata.PromptCount++ })
	result.Reply = resp.Content
	return result, nil
}
