package cli

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/kartoza/lottery-analyst/internal/config"
	"github.com/kartoza/lottery-analyst/internal/server"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	webview "github.com/webview/webview_go"
)

var (
	version = "dev"

	port        int
	dataDir     string
	headless    bool
	showVersion bool

	// RootCmd starts the analysis server and, unless headless, the window
	RootCmd = &cobra.Command{
		Use:   "lottery-analyst",
		Short: "Lottery draw history statistics and AI-assisted predictions",
		Long: `lottery-analyst keeps the draw history of 大乐透, 双色球, 快乐八 and 七星彩,
shows per-number frequencies and the most common primary pairs, and asks a
Gemini model for a prediction of the next draw.

The prediction service needs an API key in GEMINI_API_KEY (or API_KEY),
either exported or placed in a .env file.`,
		Example: `  # Open the application window
  lottery-analyst

  # Serve the web UI only, on a fixed port
  lottery-analyst --headless --port 9000

  # Print frequency statistics of a history file
  lottery-analyst stats --file ssq.json`,
		SilenceUsage: true,
		RunE:         runServe,
	}
)

func init() {
	RootCmd.Flags().IntVar(&port, "port", 8080, "HTTP server port")
	RootCmd.Flags().BoolVar(&headless, "headless", false, "Run in headless mode (no GUI window)")
	RootCmd.Flags().BoolVar(&showVersion, "version", false, "Show version and exit")
	RootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Directory for history, reports and the database (default: user config dir)")

	RootCmd.SuggestionsMinimumDistance = 2
}

// Execute runs the root command
func Execute(v string) error {
	if v != "" {
		version = v
	}
	return RootCmd.Execute()
}

// loadConfig resolves the configuration from flags, settings.toml and the
// environment
func loadConfig() (config.Config, *config.Settings, error) {
	storeDir, err := config.DataStoreDir()
	if err != nil {
		return config.Config{}, nil, err
	}

	if err := config.LoadEnvFiles(".env", filepath.Join(storeDir, ".env")); err != nil {
		log.Warnf("Could not load .env file: %v", err)
	}

	resolvedDataDir := dataDir
	if resolvedDataDir == "" {
		resolvedDataDir = storeDir
	}
	settingsPath := config.SettingsPathIn(resolvedDataDir)

	settings, err := config.LoadSettingsFrom(settingsPath)
	if err != nil {
		log.Warnf("Could not load settings: %v", err)
		settings = config.DefaultSettings()
	}
	configureLogging(settings.LogLevel)

	prediction := config.DefaultPredictionConfig()
	settings.Prediction.ApplyTo(&prediction)
	prediction.APIKey = config.APIKeyFromEnv()

	cfg := config.Config{
		Port:         port,
		DataDir:      resolvedDataDir,
		SettingsPath: settingsPath,
		HistoryDir:   filepath.Join(resolvedDataDir, "history"),
		ReportsDir:   filepath.Join(resolvedDataDir, "reports"),
		DBPath:       filepath.Join(resolvedDataDir, "history.db"),
		Version:      version,
		SampleSize:   settings.SampleSize,
		RunTimeout:   prediction.RequestTimeout + 30*time.Second,
		Prediction:   prediction,
		DefaultGame:  settings.DefaultGame,
	}
	return cfg, settings, nil
}

func configureLogging(level string) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if level == "" {
		return
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.Warnf("Unknown log level %q, keeping %s", level, log.GetLevel())
		return
	}
	log.SetLevel(lvl)
}

func runServe(cmd *cobra.Command, args []string) error {
	if showVersion {
		fmt.Fprintf(cmd.OutOrStdout(), "Lottery Analyst v%s\n", version)
		return nil
	}

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	// Find an available port (try up to 10 ports starting from the requested one)
	availablePort, err := findAvailablePort(cfg.Port, 10)
	if err != nil {
		return fmt.Errorf("failed to find available port: %w", err)
	}
	if availablePort != cfg.Port {
		log.Printf("Port %d in use, using port %d instead", cfg.Port, availablePort)
	}
	cfg.Port = availablePort

	log.Printf("Lottery Analyst v%s starting on port %d", version, cfg.Port)
	log.Printf("Data directory: %s", cfg.DataDir)

	srv, err := server.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	// Graceful shutdown on SIGINT/SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	serverURL := fmt.Sprintf("http://localhost:%d", cfg.Port)
	waitForServer(serverURL, 10*time.Second)

	if headless {
		select {
		case err := <-errCh:
			if err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("server error: %w", err)
			}
		case sig := <-stop:
			log.Printf("Received %v signal, shutting down...", sig)
		}
		return srv.Stop()
	}

	// GUI mode: open embedded WebView window
	log.Printf("Opening application window...")
	w := webview.New(false)
	defer w.Destroy()

	w.SetTitle("Lottery Analyst")
	w.SetSize(1280, 800, webview.HintNone)
	w.Navigate(serverURL)

	// When the server stops or a signal arrives, close the window
	go func() {
		select {
		case err := <-errCh:
			if err != nil && err != http.ErrServerClosed {
				log.Printf("Server error: %v", err)
			}
		case sig := <-stop:
			log.Printf("Received %v signal, shutting down...", sig)
		}
		w.Dispatch(w.Terminate)
	}()

	w.Run()

	log.Printf("Window closed, shutting down...")
	return srv.Stop()
}

// findAvailablePort tries to find an available port starting from the given port
func findAvailablePort(startPort, maxAttempts int) (int, error) {
	for i := 0; i < maxAttempts; i++ {
		p := startPort + i
		ln, err := net.Listen("tcp", fmt.Sprintf(":%d", p))
		if err == nil {
			ln.Close()
			return p, nil
		}
	}
	return 0, fmt.Errorf("no available port found in range %d-%d", startPort, startPort+maxAttempts-1)
}

// waitForServer polls the server until it responds or times out
func waitForServer(url string, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	client := &http.Client{Timeout: 500 * time.Millisecond}
	for time.Now().Before(deadline) {
		resp, err := client.Get(url + "/api/health")
		if err == nil {
			resp.Body.Close()
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
	log.Printf("Warning: server did not respond within %v", timeout)
}
