package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"autoabsen/internal/api"
	"autoabsen/internal/daemon"
	"autoabsen/internal/diag"
	"autoabsen/internal/engine"
	"autoabsen/internal/portal"
	webui "autoabsen/internal/ui"
)

var (
	serveDaemon bool
	serveStop   bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the AutoAbsen daemon",
	Long: `Run the daemon: the engine, the HTTP API, and the embedded web
dashboard. By default it listens on port 3000 and runs in the foreground.
Use --daemon to detach, --stop to stop a detached daemon.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if serveStop {
			return serveStopRun()
		}
		if serveDaemon {
			return serveDaemonRun()
		}
		return serveRun()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 3000, "port to listen on")
	serveCmd.Flags().BoolVar(&serveDaemon, "daemon", false, "Run detached in the background")
	serveCmd.Flags().BoolVar(&serveStop, "stop", false, "Stop a background daemon")
	_ = viper.BindPFlag("port", serveCmd.Flags().Lookup("port"))
}

// buildEngine wires the portal client factory, the diag recorder and the
// engine from configuration.
func buildEngine() (*engine.Engine, func(), error) {
	baseURL := viper.GetString("portal.base_url")
	timeout := viper.GetDuration("portal.timeout")
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	var recorder engine.Recorder
	cleanup := func() {}

	store, err := diag.NewStore(viper.GetString("diag.db_path"), viper.GetInt("diag.keep"))
	if err != nil {
		// Diagnostics are best-effort; the daemon runs without them.
		ui.Warning("Snapshot store unavailable: %v", err)
	} else if err := store.Migrate(context.Background()); err != nil {
		ui.Warning("Snapshot store migration failed: %v", err)
		_ = store.Close()
	} else {
		recorder = store
		cleanup = func() { _ = store.Close() }
	}

	eng := engine.New(engine.Options{
		NewClient: func() engine.PortalClient {
			return portal.NewClient(baseURL, timeout)
		},
		Recorder:      recorder,
		CheckInterval: viper.GetDuration("engine.check_interval"),
		IdleTimeout:   viper.GetDuration("engine.idle_timeout"),
	})

	return eng, cleanup, nil
}

func serveRun() error {
	eng, cleanup, err := buildEngine()
	if err != nil {
		return err
	}
	defer cleanup()

	uiHandler, err := webui.Handler()
	if err != nil {
		return fmt.Errorf("initialize dashboard: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/api/", api.NewServer(eng).Router())
	mux.Handle("/", uiHandler)

	addr := fmt.Sprintf(":%d", viper.GetInt("port"))
	srv := &http.Server{Addr: addr, Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals()...)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	ui.Success("AutoAbsen berjalan di http://localhost%s", addr)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		ui.Info("Shutting down...")
	}

	if err := eng.Stop(); err != nil && !errors.Is(err, engine.ErrNotRunning) {
		ui.Warning("Engine stop: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// serveDaemonRun re-execs the current binary detached and records its PID.
func serveDaemonRun() error {
	pidFile := daemon.NewPIDFile(viper.GetString("daemon.pid_file"))

	if pid, running := pidFile.IsRunning(); running {
		return fmt.Errorf("daemon already running (pid %d)", pid)
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locate executable: %w", err)
	}

	child := exec.Command(exe, "serve", "--port", fmt.Sprint(viper.GetInt("port")))
	child.Stdout = nil
	child.Stderr = nil
	setDaemonAttrs(child)

	if err := child.Start(); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}

	if err := pidFile.WritePID(child.Process.Pid); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}

	ui.Success("Daemon started (pid %d) at http://localhost:%d", child.Process.Pid, viper.GetInt("port"))
	return nil
}

func serveStopRun() error {
	pidFile := daemon.NewPIDFile(viper.GetString("daemon.pid_file"))

	pid, err := pidFile.Read()
	if err != nil {
		return fmt.Errorf("no daemon pid file: %w", err)
	}

	if err := pidFile.Signal(sigTERM()); err != nil {
		return fmt.Errorf("signal process %d: %w", pid, err)
	}

	_ = pidFile.Remove()
	ui.Success("Daemon stopped (pid %d)", pid)
	return nil
}
