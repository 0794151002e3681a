package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dmitrijs2005/roomchat/internal/client/client"
	"github.com/dmitrijs2005/roomchat/internal/client/config"
	"github.com/dmitrijs2005/roomchat/internal/client/repositories/localstate"
	"github.com/dmitrijs2005/roomchat/internal/client/room"
	"github.com/dmitrijs2005/roomchat/internal/filex"
	"github.com/dmitrijs2005/roomchat/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

const (
	databaseFile = "state.db"
	logFile      = "roomchat.log"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	client  client.Client
	room    *room.Controller
	out     io.Writer
	closers []io.Closer

	mu       sync.Mutex
	mode     Mode
	offset   int
	newestID string
	lastOut  string
}

// NewApp opens the local state database and the log file under
// c.DataDir and connects to the document store.
func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	dir, err := filex.EnsureDir(c.DataDir)
	if err != nil {
		return nil, err
	}

	lf, err := os.OpenFile(filepath.Join(dir, logFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	logger := logging.NewText(lf, logging.ParseLevel(c.LogLevel))

	db, err := client.InitDatabase(ctx, filepath.Join(dir, databaseFile))
	if err != nil {
		lf.Close()
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	apiClient, err := client.NewGRPCClient(c.ServerEndpointAddr, c.Nickname)
	if err != nil {
		db.Close()
		lf.Close()
		return nil, err
	}

	app := newApp(c, apiClient, localstate.NewSQLiteRepository(db), logger, os.Stdout)
	app.closers = append(app.closers, apiClient, db, lf)
	return app, nil
}

func newApp(c *config.Config, cl client.Client, repo localstate.Repository, logger logging.Logger, out io.Writer) *App {
	a := &App{
		config: c,
		logger: logger.With("module", "cli"),
		client: cl,
		out:    out,
	}
	a.room = room.NewController(cl, repo, logger, room.Options{
		Nickname:          c.Nickname,
		ScrollThreshold:   c.ScrollThreshold,
		HighlightDuration: c.HighlightDuration,
		OnRender:          a.onRender,
	})
	return a
}

// Run blocks in the REPL on stdin until the user quits or ctx is done.
func (a *App) Run(ctx context.Context) {
	defer a.Close()
	a.Root(ctx, os.Stdin)
}

func (a *App) Close() {
	a.room.Leave()
	for _, c := range a.closers {
		_ = c.Close()
	}
}

func (a *App) Root(ctx context.Context, in io.Reader) {
	printlnFn(fmt.Sprintf("Welcome to roomchat, %s (type /help for commands)", a.config.Nickname))
	scanner := bufio.NewScanner(in)

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	if a.config.Room != "" {
		if err := a.Join(ctx, a.config.Room, a.config.Passkey, a.config.PromptPasskey); err != nil {
			printlnFn("Error:", err)
		}
	}

	runREPL(ctx, a, a.getStatus, scanner)
}

func (a *App) getStatus() string {
	a.mu.Lock()
	mode := a.mode
	a.mu.Unlock()

	s := a.config.Nickname
	if r := a.room.Frame().RoomID; r != "" {
		s += " #" + r
	}
	if mode != "" {
		s += " " + string(mode)
	}
	return fmt.Sprintf("(%s)", s)
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.logger.Info(context.Background(), "connectivity changed", "mode", string(mode))
		printlnFn(fmt.Sprintf("Switched to %s mode", mode))
	}
}

// StartOnlineStatusWatcher pings the store every interval and reports
// transitions between online and offline.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := a.client.Ping(pctx)
			cancel()

			if err != nil {
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}

func (a *App) onRender(f room.Frame) {
	a.mu.Lock()
	if newest, ok := f.View.Newest(); ok && newest.Message.ID != a.newestID {
		a.newestID = newest.Message.ID
		if f.Scroll.ToNewest {
			a.offset = 0
		}
	}
	// Messages arriving below a scrolled-up window push the offset so the
	// same messages stay on screen.
	if !f.Scroll.ToNewest && a.offset > 0 {
		a.offset += f.Scroll.Added
	}
	text := renderFrame(f, a.offset, a.config.ViewportHeight)
	if text == a.lastOut {
		a.mu.Unlock()
		return
	}
	a.lastOut = text
	a.mu.Unlock()

	fmt.Fprint(a.out, text)
}
