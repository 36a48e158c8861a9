// Command foxandgeese runs the Fox and Geese mission server.
//
// Commands:
//  1. "serve" (default) – HTTP server exposing the REST API, WebSocket updates and an /mcp endpoint
//  2. "mcp" – MCP stdio server; spins up an internal HTTP API if none is reachable
//  3. "play" – plays a mission in-process from a list of moves and prints the board
//  4. "validate" – checks mission files
//  5. "schema" – prints the JSON Schema of mission files
//
// Global flags control host/port, the missions directory, debug logging and
// optional ngrok tunneling for easy external access during development.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/foxandgeese/api"
	"github.com/wricardo/foxandgeese/game/config"
	"github.com/wricardo/foxandgeese/game/service"
	"github.com/wricardo/foxandgeese/game/session"
	"github.com/wricardo/foxandgeese/transport/mcp"
	"github.com/wricardo/foxandgeese/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Fox and Geese Server"
)

const (
	sessionMaxAge          = 24 * time.Hour
	sessionCleanupInterval = time.Hour
	shutdownTimeout        = 10 * time.Second
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: error loading .env file: %v\n", err)
	}

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newApp builds the command tree
func newApp() *cli.Command {
	return &cli.Command{
		Name:    "foxandgeese",
		Usage:   "Fox and Geese mission server",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "host",
				Value:   "localhost",
				Usage:   "HTTP server host",
				Sources: cli.EnvVars("HOST"),
			},
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "HTTP server port",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "missions-dir",
				Value:   "missions",
				Usage:   "Directory containing mission files",
				Sources: cli.EnvVars("MISSIONS_DIR"),
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "Enable debug logging",
				Sources: cli.EnvVars("DEBUG"),
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
		},
		Action: runServe,
		Commands: []*cli.Command{
			{
				Name:    "serve",
				Aliases: []string{"server", "http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint",
				Action:  runServe,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "Run MCP stdio server, with an internal HTTP server if needed",
				Action:  runStdioMCP,
			},
			{
				Name:      "play",
				Usage:     "Play a mission in-process and print the board",
				ArgsUsage: "<move> [move...]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "mission",
						Usage: "Mission id (default mission when empty)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					logger, err := newLogger(cmd.Bool("debug"))
					if err != nil {
						return err
					}
					defer logger.Sync()

					svc, _, err := initializeServices(cmd.String("missions-dir"), logger, nil)
					if err != nil {
						return err
					}
					return playMoves(ctx, os.Stdout, svc, cmd.String("mission"), splitMoves(cmd.Args().Slice()))
				},
			},
			{
				Name:      "validate",
				Usage:     "Validate mission files (all files in the missions directory by default)",
				ArgsUsage: "[file...]",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					paths := cmd.Args().Slice()
					if len(paths) == 0 {
						found, err := missionFilesIn(cmd.String("missions-dir"))
						if err != nil {
							return err
						}
						paths = found
					}
					return validateMissionFiles(os.Stdout, paths)
				},
			},
			{
				Name:  "schema",
				Usage: "Print the JSON Schema of mission files",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return writeMissionSchema(os.Stdout)
				},
			},
		},
	}
}

// newLogger returns a development logger in debug mode, a production one otherwise
func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// initializeServices wires the mission and session managers into the game
// service. A non-nil hub receives presenter events for every session.
func initializeServices(missionsDir string, logger *zap.Logger, hub *websocket.Hub) (service.GameService, *session.Manager, error) {
	missions, err := config.NewManager(missionsDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create mission manager: %w", err)
	}

	opts := []session.Option{session.WithLogger(logger.Named("session"))}
	if hub != nil {
		opts = append(opts, session.WithCollaborators(hub.Collaborator))
	}
	sessions := session.NewManager(opts...)

	svc := service.NewGameService(sessions, missions, service.WithLogger(logger.Named("service")))
	return svc, sessions, nil
}

// newRouter mounts the API server and the /mcp endpoint on one mux
func newRouter(apiServer http.Handler, mcpClient *mcp.Client) *http.ServeMux {
	router := http.NewServeMux()
	router.Handle("/", apiServer)
	router.Handle("/mcp", mcpClient.HTTPHandler())
	return router
}

// runServe starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled, it also provisions a public tunnel.
func runServe(ctx context.Context, cmd *cli.Command) error {
	logger, err := newLogger(cmd.Bool("debug"))
	if err != nil {
		return err
	}
	defer logger.Sync()

	missionsDir := cmd.String("missions-dir")
	if err := os.MkdirAll(missionsDir, 0o755); err != nil {
		return fmt.Errorf("failed to create missions directory: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := websocket.NewHub(logger.Named("websocket"))
	go hub.Run(ctx)

	gameService, sessions, err := initializeServices(missionsDir, logger, hub)
	if err != nil {
		return err
	}
	go sessionCleanupRoutine(ctx, sessions, logger)

	addr := fmt.Sprintf("%s:%d", cmd.String("host"), int(cmd.Int("port")))
	apiServer := api.NewServer(gameService, hub, api.WithLogger(logger.Named("api")))
	mcpClient := mcp.NewClient("http://" + addr)
	router := newRouter(apiServer, mcpClient)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		logger.Info("HTTP server listening",
			zap.String("addr", addr),
			zap.String("api", "http://"+addr+"/api"),
			zap.String("websocket", "ws://"+addr+"/ws?session=<session_id>"),
			zap.String("mcp", "http://"+addr+"/mcp"),
		)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	if cmd.Bool("ngrok") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, cmd.String("ngrok-auth"), cmd.String("ngrok-domain"), router, logger.Named("ngrok"))
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
	case runErr = <-serveErr:
		logger.Error("HTTP server failed", zap.Error(runErr))
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown error", zap.Error(err))
	}

	wg.Wait()
	logger.Info("Server stopped")
	return runErr
}

// runNgrokTunnel serves handler through an ngrok tunnel until ctx is done
func runNgrokTunnel(ctx context.Context, authToken, domain string, handler http.Handler, logger *zap.Logger) {
	if authToken == "" {
		logger.Warn("Ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
		return
	}

	tunnel := ngrokConfig.HTTPEndpoint()
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		logger.Info("Using custom ngrok domain", zap.String("domain", domain))
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		logger.Error("Failed to start ngrok tunnel", zap.Error(err))
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			logger.Warn("Failed to close ngrok tunnel", zap.Error(err))
		}
	}()

	url := tun.URL()
	logger.Info("Ngrok tunnel established",
		zap.String("url", url),
		zap.String("api", url+"/api"),
		zap.String("mcp", url+"/mcp"),
	)

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		logger.Error("Ngrok server error", zap.Error(err))
	}
	logger.Info("Ngrok tunnel closed")
}

// sessionCleanupRoutine periodically removes sessions that have not been
// accessed within sessionMaxAge
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, logger *zap.Logger) {
	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(sessionMaxAge); removed > 0 {
				logger.Info("Cleaned up expired sessions", zap.Int("removed", removed))
			}
		}
	}
}

// runStdioMCP runs an MCP stdio server.
// It reuses an API already listening on --host/--port; if unavailable, it
// starts an internal HTTP API bound to a random loopback port and targets that.
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	logger, err := newLogger(cmd.Bool("debug"))
	if err != nil {
		return err
	}
	defer logger.Sync()

	externalURL := fmt.Sprintf("http://%s:%d", cmd.String("host"), int(cmd.Int("port")))
	baseURL := externalURL

	if !apiReachable(externalURL) {
		logger.Info("No external API server found, starting internal HTTP server")

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		hub := websocket.NewHub(logger.Named("websocket"))
		go hub.Run(ctx)

		gameService, sessions, err := initializeServices(cmd.String("missions-dir"), logger, hub)
		if err != nil {
			listener.Close()
			return err
		}
		go sessionCleanupRoutine(ctx, sessions, logger)

		httpServer := &http.Server{Handler: api.NewServer(gameService, hub, api.WithLogger(logger.Named("api")))}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Internal HTTP server error", zap.Error(err))
			}
		}()
		defer httpServer.Close()

		baseURL = "http://" + listener.Addr().String()
	}

	logger.Info("MCP stdio server ready", zap.String("api", baseURL))

	mcpClient := mcp.NewClient(baseURL)
	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

// apiReachable reports whether a Fox and Geese API answers at baseURL
func apiReachable(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/healthz")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// splitMoves accepts moves as separate arguments or comma separated lists
func splitMoves(args []string) []string {
	var moves []string
	for _, arg := range args {
		for _, m := range strings.Split(arg, ",") {
			if m = strings.TrimSpace(m); m != "" {
				moves = append(moves, m)
			}
		}
	}
	return moves
}

// playMoves creates a session and plays one round per move, printing each
// round and the final board
func playMoves(ctx context.Context, w io.Writer, svc service.GameService, missionID string, moves []string) error {
	if len(moves) == 0 {
		return errors.New("at least one move is required")
	}

	info, err := svc.CreateSession(ctx, missionID)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Mission: %s (%s)\n", info.MissionName, info.MissionID)

	result, err := svc.Play(ctx, info.ID, moves)
	if err != nil {
		return err
	}

	for _, round := range result.Rounds {
		fmt.Fprintf(w, "Round %d: %s -> %s\n", round.Round, strings.ToUpper(round.PlayerInput), round.MissionStatus)
	}
	if result.Truncated {
		fmt.Fprintf(w, "Moves truncated to %d\n", result.Limit)
	}
	if result.StopReasonCode != "" {
		fmt.Fprintf(w, "Stopped on move %d: %s\n", result.StoppedOnMove, result.StoppedReason)
	}
	fmt.Fprintln(w)
	fmt.Fprint(w, service.FormatStatus(result.Status))

	if result.StopReasonCode == service.StopInvalidDirection {
		return fmt.Errorf("%w: move %d", service.ErrInvalidDirection, result.StoppedOnMove)
	}
	return nil
}

// missionFilesIn lists the mission files of a directory
func missionFilesIn(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read missions directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if !entry.IsDir() && config.IsMissionFile(entry.Name()) {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	return paths, nil
}

// validateMissionFiles reports every mission in every file and fails if any
// is invalid
func validateMissionFiles(w io.Writer, paths []string) error {
	if len(paths) == 0 {
		return errors.New("no mission files found")
	}

	invalid := 0
	for _, path := range paths {
		file, err := config.ReadMissionFile(path)
		if err != nil {
			fmt.Fprintf(w, "FAIL %s: %v\n", path, err)
			invalid++
			continue
		}

		for _, id := range file.IDs() {
			def, err := file.Definition(id)
			if err != nil {
				fmt.Fprintf(w, "FAIL %s: %v\n", path, err)
				invalid++
				continue
			}
			fmt.Fprintf(w, "ok   %s: %s (%dx%d, %d geese)\n", path, id, def.Width, def.Height, len(def.Geese))
		}
	}

	if invalid > 0 {
		return fmt.Errorf("%d invalid mission(s)", invalid)
	}
	return nil
}

// writeMissionSchema prints the JSON Schema of mission files
func writeMissionSchema(w io.Writer) error {
	schema := jsonschema.Reflect(&config.MissionFile{})
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(schema)
}
