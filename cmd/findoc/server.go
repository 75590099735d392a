package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"findoc/internal/api"
	"findoc/internal/chat"
	"findoc/internal/config"
	"findoc/internal/docintel"
	"findoc/internal/session"
	"findoc/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the findoc server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running findoc server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return stopServer()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show findoc system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus()
	},
}

func pidFilePath(dataDir string) string {
	return filepath.Join(dataDir, "findoc.pid")
}

func writePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func removePIDFile(path string) {
	os.Remove(path)
}

func runServer() error {
	fmt.Fprintf(os.Stderr, "findoc version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Initialize structured logging.
	logLevel := slog.LevelInfo
	if strings.EqualFold(cfg.Log.Level, "debug") {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	// Write PID file. Check if server is already running via health endpoint.
	pidPath := pidFilePath(cfg.Storage.DataDir)
	healthURL := fmt.Sprintf("http://127.0.0.1:%d/health", cfg.Server.Port)
	healthClient := &http.Client{Timeout: 2 * time.Second}
	if resp, err := healthClient.Get(healthURL); err == nil {
		resp.Body.Close()
		if pid, pidErr := readPIDFile(pidPath); pidErr == nil {
			printWarning("findoc is already running (PID %d)", pid)
			return fmt.Errorf("server already running (PID %d)", pid)
		}
		printWarning("findoc is already running on port %d", cfg.Server.Port)
		return fmt.Errorf("server already running on port %d", cfg.Server.Port)
	}
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer removePIDFile(pidPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Open storage.
	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: closing storage: %v\n", err)
		}
	}()

	// Build service clients.
	analyzer := docintel.New(cfg.DocIntel.Endpoint, cfg.DocIntel.APIKey,
		docintel.WithAPIVersion(cfg.DocIntel.APIVersion))

	var chatClient api.Asker
	if cfg.Chat.APIKey != "" {
		chatClient = chat.NewClientWithBaseURL(cfg.Chat.APIKey, cfg.Chat.Model, cfg.Chat.BaseURL)
	} else {
		slog.Warn("chat API key not configured, document Q&A disabled")
	}

	sess := session.New()

	// Build HTTP handler and server.
	appHandler := api.NewAppHandler(api.AppDeps{
		Store:    store,
		Session:  sess,
		Analyzer: analyzer,
		Chat:     chatClient,
	})

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: appHandler,
	}

	// Build and start MCP server (stdio transport in a goroutine).
	mcpSrv := api.NewMCPServer(api.MCPDeps{Store: store})
	stdioSrv := server.NewStdioServer(mcpSrv)
	go func() {
		if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("MCP stdio server error", "error", err)
		}
	}()
	slog.Info("MCP server started (stdio transport)")

	// Start server in a goroutine.
	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "findoc listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for signal or server error.
	select {
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	// Graceful shutdown with timeout.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func stopServer() error {
	cfg, err := config.Load()
	if err != nil {
		printError("could not load config: %v", err)
		return err
	}

	pidPath := pidFilePath(cfg.Storage.DataDir)
	pid, err := readPIDFile(pidPath)
	if err != nil {
		printError("findoc is not running (no PID file)")
		return fmt.Errorf("not running: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		printError("could not find process %d", pid)
		return err
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		printError("could not stop findoc (PID %d): %v", pid, err)
		removePIDFile(pidPath)
		return err
	}

	printSuccess("Sent stop signal to findoc (PID %d)", pid)
	return nil
}

type probeResult struct {
	name   string
	status string
}

func showStatus() error {
	cfg, err := config.Load()
	if err != nil {
		// Still show partial status even if config fails.
		printError("config error: %v", err)
		return nil
	}

	serverURL := fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port)
	client := &http.Client{Timeout: 3 * time.Second}

	// Probe the server and both upstream services concurrently.
	var serverProbe, docintelProbe, chatProbe probeResult
	g, ctx := errgroup.WithContext(context.Background())

	g.Go(func() error {
		serverProbe = probe(ctx, client, "Server", serverURL+"/health", func(code int) string {
			if code == http.StatusOK {
				return fmt.Sprintf("running on port %d", cfg.Server.Port)
			}
			return fmt.Sprintf("error (HTTP %d)", code)
		}, "stopped")
		return nil
	})

	g.Go(func() error {
		if cfg.DocIntel.Endpoint == "" {
			docintelProbe = probeResult{"Document service", "not configured"}
			return nil
		}
		docintelProbe = probe(ctx, client, "Document service",
			strings.TrimRight(cfg.DocIntel.Endpoint, "/"), func(code int) string {
				return fmt.Sprintf("reachable at %s", cfg.DocIntel.Endpoint)
			}, "unreachable")
		return nil
	})

	g.Go(func() error {
		if cfg.Chat.APIKey == "" {
			chatProbe = probeResult{"Chat service", "not configured"}
			return nil
		}
		chatProbe = probe(ctx, client, "Chat service",
			strings.TrimRight(cfg.Chat.BaseURL, "/")+"/models", func(code int) string {
				return fmt.Sprintf("reachable at %s", cfg.Chat.BaseURL)
			}, "unreachable")
		return nil
	})

	g.Wait()

	printStatus(serverProbe.name, "%s", serverProbe.status)
	printStatus(docintelProbe.name, "%s", docintelProbe.status)
	printStatus(chatProbe.name, "%s", chatProbe.status)
	printStatus("Chat model", "%s", cfg.Chat.Model)

	// Show document count if the server is running.
	if strings.HasPrefix(serverProbe.status, "running") {
		resp, err := client.Get(serverURL + "/documents/count")
		if err == nil {
			var body struct {
				Count int `json:"count"`
			}
			if json.NewDecoder(resp.Body).Decode(&body) == nil {
				printStatus("Documents", "%d", body.Count)
			}
			resp.Body.Close()
		}
	}

	printStatus("Data dir", "%s", cfg.Storage.DataDir)
	return nil
}

func probe(ctx context.Context, client *http.Client, name, url string, okLabel func(int) string, downLabel string) probeResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return probeResult{name, downLabel}
	}
	resp, err := client.Do(req)
	if err != nil {
		return probeResult{name, downLabel}
	}
	resp.Body.Close()
	return probeResult{name, okLabel(resp.StatusCode)}
}
