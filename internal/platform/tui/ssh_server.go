package tui

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/lane-runner/internal/config"
	"github.com/vovakirdan/lane-runner/internal/core"
	"github.com/vovakirdan/lane-runner/internal/logging"
	"github.com/vovakirdan/lane-runner/internal/metrics"
	"github.com/vovakirdan/lane-runner/internal/storage"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key is generated at <DataDir>/host_key.
	HostKeyPath string

	// DataDir holds one subdirectory per SSH user.
	DataDir string

	// MetricsAddr serves Prometheus metrics when non-empty.
	MetricsAddr string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// TickRate is the simulation rate of every session.
	TickRate int

	// Preset seeds players without history.
	Preset config.DifficultyPreset

	// Runner is the game and difficulty configuration.
	Runner config.Config
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		DataDir:     "~/.lane-runner",
		IdleTimeout: 30 * time.Minute,
		TickRate:    60,
		Runner:      config.Default(),
	}
}

type playerKey struct{}

// SSHServer wraps a Wish SSH server. Each user gets a private data
// directory, and concurrent sessions of one user share a Player.
type SSHServer struct {
	config  SSHServerConfig
	server  *ssh.Server
	metrics *metrics.Manager
	httpSrv *http.Server
	logger  *log.Logger

	mu       sync.Mutex
	players  map[string]*pooledPlayer
	sessions sync.WaitGroup
}

type pooledPlayer struct {
	*Player
	refs int
}

// NewSSHServer creates a new SSH server with the given configuration.
func NewSSHServer(cfg SSHServerConfig, logger *log.Logger) (*SSHServer, error) {
	if logger == nil {
		logger = logging.New(os.Stderr, log.InfoLevel, "runner-ssh")
	}

	dataDir, err := storage.ExpandHome(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	cfg.DataDir = dataDir

	srv := &SSHServer{
		config:  cfg,
		metrics: metrics.NewManager(metrics.WithMetricsEnabled(cfg.MetricsAddr != "")),
		logger:  logger,
		players: make(map[string]*pooledPlayer),
	}

	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		hostKeyPath = filepath.Join(dataDir, "host_key")
	}
	if mkdirErr := os.MkdirAll(filepath.Dir(hostKeyPath), 0o700); mkdirErr != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", mkdirErr)
	}

	// Middlewares run last to first: players are acquired before the
	// Bubble Tea handler asks for them.
	server, err := wish.NewServer(
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.playerMiddleware,
			srv.loggingMiddleware,
		),
	)
	if err != nil {
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}
	srv.server = server

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", srv.metrics.Handler())
		srv.httpSrv = &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
	}
	return srv, nil
}

// UserDir returns the data directory of an SSH user. Names are reduced to
// a safe path element.
func UserDir(dataDir, user string) string {
	return filepath.Join(dataDir, "users", sanitizeUser(user))
}

func sanitizeUser(user string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, user)
	if strings.Trim(clean, ".") == "" {
		return "anonymous"
	}
	return clean
}

// acquire returns the shared Player of user, opening it on first use.
func (s *SSHServer) acquire(user string) *Player {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := sanitizeUser(user)
	if p, ok := s.players[key]; ok {
		p.refs++
		return p.Player
	}
	p := OpenPlayer(s.config.Runner, UserDir(s.config.DataDir, user), s.logger.With("user", key), s.metrics)
	s.players[key] = &pooledPlayer{Player: p, refs: 1}
	return p
}

// release closes the Player of user after its last session ends.
func (s *SSHServer) release(user string) {
	s.mu.Lock()
	key := sanitizeUser(user)
	p, ok := s.players[key]
	if !ok {
		s.mu.Unlock()
		return
	}
	p.refs--
	if p.refs > 0 {
		s.mu.Unlock()
		return
	}
	delete(s.players, key)
	s.mu.Unlock()

	if err := p.Close(); err != nil {
		s.logger.Warn("cannot close player", "user", key, "error", err)
	}
}

// teaHandler creates a Bubble Tea program for each SSH session.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}
	player, ok := sshSession.Context().Value(playerKey{}).(*Player)
	if !ok {
		s.logger.Error("no player attached to session", "user", sshSession.User())
		return nil, nil
	}

	cfg := core.RuntimeConfig{
		ScreenW:  pty.Window.Width,
		ScreenH:  pty.Window.Height,
		TickRate: s.config.TickRate,
		Seed:     time.Now().UnixNano(),
	}

	return NewModel(player, cfg, s.config.Preset), []tea.ProgramOption{
		tea.WithAltScreen(),
	}
}

// playerMiddleware attaches the user's Player for the session's lifetime.
func (s *SSHServer) playerMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		user := sshSession.User()
		s.sessions.Add(1)
		defer s.sessions.Done()
		sshSession.Context().SetValue(playerKey{}, s.acquire(user))
		defer s.release(user)
		next(sshSession)
	}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// ListenAndServe starts the SSH and metrics servers and blocks until ctx is
// cancelled or the SSH server fails.
func (s *SSHServer) ListenAndServe(ctx context.Context) error {
	s.logger.Info("starting SSH server", "address", s.config.Address, "data_dir", s.config.DataDir)

	errc := make(chan error, 2)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errc <- fmt.Errorf("ssh server: %w", err)
		}
	}()
	if s.httpSrv != nil {
		s.logger.Info("serving metrics", "address", s.config.MetricsAddr)
		go func() {
			if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errc <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		s.logger.Info("shutting down...")
	case runErr = <-errc:
		s.logger.Error("server error", "error", runErr)
	}
	return errors.Join(runErr, s.Shutdown())
}

// Shutdown stops both servers, waits for running sessions to release their
// players and closes whatever is still open once the wait times out.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := s.server.Shutdown(ctx)
	if s.httpSrv != nil {
		err = errors.Join(err, s.httpSrv.Shutdown(ctx))
	}
	return errors.Join(err, s.closePlayers(ctx))
}

// closePlayers waits for every session to end, then closes the players left
// in the pool. Players still in use when ctx expires are closed anyway.
func (s *SSHServer) closePlayers(ctx context.Context) error {
	drained := make(chan struct{})
	go func() {
		s.sessions.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-ctx.Done():
		s.logger.Warn("sessions still running, closing their players")
	}

	s.mu.Lock()
	players := s.players
	s.players = make(map[string]*pooledPlayer)
	s.mu.Unlock()

	var err error
	for _, p := range players {
		err = errors.Join(err, p.Close())
	}
	return err
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}
