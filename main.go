// Command mazegame runs the maze game.
//
// Commands:
//  1. "serve" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "play" – plays a level set locally in a window, or in the terminal with --terminal
//  4. "autoplay" – lets a bot play a session on a running server
//  5. "validate" – checks every level set in the config directory
//
// Flags control host/port, config directory, debug logging, the frame rate,
// and optional ngrok tunneling for easy external access during development.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
	"golang.org/x/sync/errgroup"

	"github.com/a3mckagu/a3mckagu-sidequest-w4/api"
	"github.com/a3mckagu/a3mckagu-sidequest-w4/bot"
	"github.com/a3mckagu/a3mckagu-sidequest-w4/game/config"
	"github.com/a3mckagu/a3mckagu-sidequest-w4/game/engine"
	"github.com/a3mckagu/a3mckagu-sidequest-w4/game/service"
	"github.com/a3mckagu/a3mckagu-sidequest-w4/game/session"
	"github.com/a3mckagu/a3mckagu-sidequest-w4/render/desktop"
	"github.com/a3mckagu/a3mckagu-sidequest-w4/render/terminal"
	"github.com/a3mckagu/a3mckagu-sidequest-w4/transport/mcp"
	"github.com/a3mckagu/a3mckagu-sidequest-w4/transport/websocket"
	"github.com/a3mckagu/a3mckagu-sidequest-w4/validate"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Maze Game Server"
)

const (
	defaultPort       = 8080
	defaultFPS        = 30
	defaultSessionTTL = 24 * time.Hour
	cleanupInterval   = time.Hour
	shutdownTimeout   = 10 * time.Second
)

// main loads .env, builds the command tree and runs it until a signal arrives.
func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		log.Fatalf("%v", err)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "mazegame",
		Usage:   "tile maze game with an HTTP, WebSocket and MCP front end",
		Version: Version,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Value:   defaultPort,
				Usage:   "HTTP server port",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "host",
				Value:   "localhost",
				Usage:   "HTTP server host",
				Sources: cli.EnvVars("HOST"),
			},
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "Directory containing level sets",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("debug") {
				log.SetFlags(log.LstdFlags | log.Lshortfile)
			} else {
				log.SetFlags(log.LstdFlags)
			}
			return ctx, nil
		},
		Action: runServe,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run HTTP server with API, WebSocket, and MCP endpoint",
				Flags:  serveFlags(),
				Action: runServe,
			},
			{
				Name:   "mcp",
				Usage:  "Run MCP stdio server with internal HTTP server",
				Action: runMCP,
			},
			{
				Name:  "play",
				Usage: "Play a level set locally",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Level set to play (defaults to classic)",
					},
					&cli.BoolFlag{
						Name:  "terminal",
						Usage: "Draw in the terminal instead of a window",
					},
					&cli.IntFlag{
						Name:  "fps",
						Value: defaultFPS,
						Usage: "Frames per second",
					},
				},
				Action: runPlay,
			},
			{
				Name:  "autoplay",
				Usage: "Let a bot play a session on a running server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "url",
						Usage: "Game server URL (defaults to http://localhost:<port>)",
					},
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Level set for a new session",
					},
					&cli.StringFlag{
						Name:  "session",
						Usage: "Play an existing session instead of creating one",
					},
					&cli.IntFlag{
						Name:  "levels",
						Usage: "Levels to clear in one attempt (0 = every level once)",
					},
					&cli.IntFlag{
						Name:  "max-moves",
						Value: 3000,
						Usage: "Maximum moves over all attempts",
					},
					&cli.IntFlag{
						Name:  "max-attempts",
						Value: 100,
						Usage: "Maximum attempts before giving up",
					},
					&cli.DurationFlag{
						Name:  "delay",
						Value: 100 * time.Millisecond,
						Usage: "Delay between moves",
					},
					&cli.BoolFlag{
						Name:  "verbose",
						Usage: "Log every move",
					},
				},
				Action: runAutoplay,
			},
			{
				Name:      "validate",
				Usage:     "Validate every level set in a directory",
				ArgsUsage: "[dir]",
				Action:    runValidate,
			},
			{
				Name:  "version",
				Usage: "Show version information",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					fmt.Fprintf(cmd.Root().Writer, "%s v%s\n", AppName, Version)
					return nil
				},
			},
		},
	}
}

func serveFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "fps",
			Value: defaultFPS,
			Usage: "Frames per second of the session clock",
		},
		&cli.StringFlag{
			Name:    "default-config",
			Usage:   "Level set used when a session names none",
			Sources: cli.EnvVars("DEFAULT_CONFIG"),
		},
		&cli.DurationFlag{
			Name:  "session-ttl",
			Value: defaultSessionTTL,
			Usage: "Remove sessions idle for longer than this",
		},
		&cli.BoolFlag{
			Name:    "ngrok",
			Usage:   "Enable ngrok tunnel",
			Sources: cli.EnvVars("NGROK_ENABLED"),
		},
		&cli.StringFlag{
			Name:    "ngrok-auth",
			Usage:   "Ngrok auth token",
			Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
		},
		&cli.StringFlag{
			Name:    "ngrok-domain",
			Usage:   "Custom ngrok domain (optional)",
			Sources: cli.EnvVars("NGROK_DOMAIN"),
		},
	}
}

// services holds the managers behind the game service
type services struct {
	game     service.GameService
	sessions *session.Manager
	configs  *config.Manager
}

// initializeServices wires the config and session managers into a game service.
// A non-empty defaultConfig replaces the level set picked from configDir.
func initializeServices(configDir, defaultConfig string) (*services, error) {
	configManager, err := config.NewManager(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}
	if defaultConfig != "" {
		if err := configManager.SetDefault(defaultConfig); err != nil {
			return nil, fmt.Errorf("failed to set default config: %w", err)
		}
	}

	sessionManager := session.NewManager()
	return &services{
		game:     service.NewGameService(sessionManager, configManager),
		sessions: sessionManager,
		configs:  configManager,
	}, nil
}

// newHandler mounts the API and the /mcp endpoint on one mux
func newHandler(gameService service.GameService, hub *websocket.Hub, baseURL string) http.Handler {
	mcpClient := mcp.NewClient(baseURL)

	mux := http.NewServeMux()
	mux.Handle("/", api.NewServer(gameService, hub))
	mux.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			log.Printf("Failed to write MCP response: %v", err)
		}
	})
	return mux
}

// runServe starts the HTTP server, the websocket hub, the frame clock and the
// session cleanup, and an ngrok tunnel when enabled. They all stop together.
func runServe(ctx context.Context, cmd *cli.Command) error {
	addr := fmt.Sprintf("%s:%d", cmd.String("host"), cmd.Int("port"))
	log.Printf("Starting %s v%s", AppName, Version)

	defaultConfig := cmd.String("default-config")
	svc, err := initializeServices(cmd.String("config-dir"), defaultConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	gameService := svc.game

	fps := cmd.Int("fps")
	if fps <= 0 {
		fps = defaultFPS
	}
	ttl := cmd.Duration("session-ttl")
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}

	hub := websocket.NewHub()
	handler := newHandler(gameService, hub, "http://"+addr)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return hub.Run(ctx)
	})

	g.Go(func() error {
		log.Printf("HTTP server listening on %s", addr)
		log.Printf("REST API: http://%s/api", addr)
		log.Printf("WebSocket: ws://%s/ws?session=<session_id>", addr)
		log.Printf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Println("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}
		return nil
	})

	g.Go(func() error {
		return runFrameClock(ctx, gameService, hub, time.Second/time.Duration(fps))
	})

	g.Go(func() error {
		return runSessionCleanup(ctx, svc.sessions, cleanupInterval, ttl)
	})

	g.Go(func() error {
		hup := make(chan os.Signal, 1)
		signal.Notify(hup, syscall.SIGHUP)
		defer signal.Stop(hup)
		return runConfigReload(ctx, svc.configs, defaultConfig, hup)
	})

	if cmd.Bool("ngrok") {
		authToken := cmd.String("ngrok-auth")
		if authToken == "" {
			log.Println("WARNING: Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		} else {
			domain := cmd.String("ngrok-domain")
			g.Go(func() error {
				runNgrok(ctx, handler, authToken, domain)
				return nil
			})
		}
	}

	err = g.Wait()
	log.Println("Server stopped")
	return err
}

// runFrameClock ticks every session once per frame and pushes the changed
// snapshots to websocket subscribers.
func runFrameClock(ctx context.Context, gameService service.GameService, hub *websocket.Hub, frame time.Duration) error {
	ticker := time.NewTicker(frame)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			updates, err := gameService.Tick(ctx)
			if err != nil {
				log.Printf("Frame tick failed: %v", err)
				continue
			}
			hub.BroadcastUpdates(updates)
		}
	}
}

// runSessionCleanup periodically removes sessions that have not been accessed
// within ttl.
func runSessionCleanup(ctx context.Context, sessions *session.Manager, every, ttl time.Duration) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if removed := sessions.CleanupExpiredSessions(time.Now(), ttl); removed > 0 {
				log.Printf("Cleaned up %d expired sessions", removed)
			}
		}
	}
}

// runConfigReload drops the cached level sets on every reload signal so edited
// files are picked up by new sessions. Running sessions keep their levels.
func runConfigReload(ctx context.Context, configs *config.Manager, defaultConfig string, reload <-chan os.Signal) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-reload:
			if err := configs.RefreshCache(); err != nil {
				log.Printf("Config reload failed: %v", err)
				continue
			}
			if defaultConfig != "" {
				if err := configs.SetDefault(defaultConfig); err != nil {
					log.Printf("Config reload kept the previous default: %v", err)
				}
			}
			log.Printf("Reloaded level sets from %s", configs.Dir())
		}
	}
}

// runNgrok serves handler through an ngrok tunnel until ctx is done.
// Tunnel failures are logged and never stop the local server.
func runNgrok(ctx context.Context, handler http.Handler, authToken, domain string) {
	log.Println("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		log.Printf("Using custom ngrok domain: %s", domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.Printf("Failed to start ngrok tunnel: %v", err)
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Printf("Failed to close ngrok tunnel: %v", err)
		}
	}()

	ngrokURL := tun.URL()
	log.Printf("🚀 Ngrok tunnel established: %s", ngrokURL)
	log.Printf("  REST API (ngrok): %s/api", ngrokURL)
	log.Printf("  WebSocket (ngrok): %s/ws?session=<session_id>", ngrokURL)
	log.Printf("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		log.Printf("Ngrok server error: %v", err)
	}
	log.Println("Ngrok tunnel closed")
}

// runMCP runs an MCP stdio server. It reuses an API already listening on
// --port; otherwise it starts an internal HTTP API on a random loopback port.
// Logs go to stderr so stdout stays reserved for the protocol.
func runMCP(ctx context.Context, cmd *cli.Command) error {
	log.SetOutput(os.Stderr)

	externalURL := fmt.Sprintf("http://localhost:%d", cmd.Int("port"))
	baseURL := externalURL
	log.Printf("Checking for external API server at %s...", externalURL)

	if !apiAvailable(externalURL) {
		log.Printf("No external API server found, starting internal HTTP server")

		svc, err := initializeServices(cmd.String("config-dir"), "")
		if err != nil {
			return fmt.Errorf("failed to initialize services: %w", err)
		}
		gameService := svc.game

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}
		baseURL = "http://" + listener.Addr().String()
		log.Printf("Starting internal HTTP server on %s for MCP stdio", listener.Addr())

		hub := websocket.NewHub()
		go hub.Run(ctx)
		go runFrameClock(ctx, gameService, hub, time.Second/defaultFPS)

		httpServer := &http.Server{Handler: api.NewServer(gameService, hub)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("Internal HTTP server error: %v", err)
			}
		}()
		defer httpServer.Close()
	} else {
		log.Printf("External API server found at %s, using it for MCP", externalURL)
	}

	log.Printf("MCP stdio server ready (API at %s)", baseURL)
	if err := server.ServeStdio(mcp.NewClient(baseURL).GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

func apiAvailable(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/api/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// runPlay runs one engine in-process with a local front end
func runPlay(ctx context.Context, cmd *cli.Command) error {
	gameConfig, err := loadPlayConfig(cmd.String("config-dir"), cmd.String("config"))
	if err != nil {
		return err
	}

	e, err := engine.NewEngine(gameConfig, time.Now())
	if err != nil {
		return fmt.Errorf("failed to start %s: %w", gameConfig.Name, err)
	}

	fps := cmd.Int("fps")
	if fps <= 0 {
		fps = defaultFPS
	}

	if cmd.Bool("terminal") {
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("failed to open terminal: %w", err)
		}
		if err := screen.Init(); err != nil {
			return fmt.Errorf("failed to initialize terminal: %w", err)
		}
		defer screen.Fini()

		return terminal.New(e, screen, terminal.WithFPS(fps)).Run(ctx)
	}

	ebiten.SetTPS(fps)
	return desktop.New(e).Run()
}

// loadPlayConfig returns the named level set, or the default one when name is
// empty. A missing config directory falls back to the built-in levels.
func loadPlayConfig(dir, name string) (*engine.GameConfig, error) {
	configs, err := config.NewManager(dir)
	if err != nil {
		if name != "" {
			return nil, err
		}
		log.Printf("Using built-in levels: %v", err)
		return engine.DefaultGameConfig(), nil
	}

	if name == "" {
		return configs.GetDefault(), nil
	}
	return configs.LoadConfig(name)
}

// runAutoplay creates or resumes a session and lets the bot play it
func runAutoplay(ctx context.Context, cmd *cli.Command) error {
	serverURL := cmd.String("url")
	if serverURL == "" {
		serverURL = fmt.Sprintf("http://localhost:%d", cmd.Int("port"))
	}
	log.Printf("Connecting to game server at %s", serverURL)
	client := bot.NewClient(serverURL)

	if id := cmd.String("session"); id != "" {
		client.UseSession(id)
		log.Printf("Resuming session: %s", id)
	} else {
		if _, err := client.CreateSession(ctx, cmd.String("config")); err != nil {
			return err
		}
		log.Printf("Session created: %s", client.SessionID())
	}

	runner := &bot.Runner{
		Game:        client,
		Levels:      cmd.Int("levels"),
		MaxMoves:    cmd.Int("max-moves"),
		MaxAttempts: cmd.Int("max-attempts"),
		Delay:       cmd.Duration("delay"),
		Verbose:     cmd.Bool("verbose"),
	}
	stats, err := runner.Run(ctx)
	log.Printf("Session %s: %d levels cleared, %d moves (%d blocked, %d throttled), %d attempts",
		client.SessionID(), stats.LevelsCleared, stats.Moves, stats.Blocked, stats.Throttled, stats.Attempts)
	return err
}

// runValidate prints a report for every level set and fails if any is invalid
func runValidate(ctx context.Context, cmd *cli.Command) error {
	dir := cmd.String("config-dir")
	if cmd.Args().Len() > 0 {
		dir = cmd.Args().First()
	}

	results, err := validate.Dir(dir)
	if err != nil {
		return err
	}
	if !validate.Report(cmd.Root().Writer, results) {
		return cli.Exit("some configurations have errors", 1)
	}
	return nil
}
