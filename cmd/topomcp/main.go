package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jessevdk/go-flags"

	"github.com/NERVsystems/topomcp/pkg/config"
	"github.com/NERVsystems/topomcp/pkg/server"
	"github.com/NERVsystems/topomcp/pkg/version"
)

// clientServerName is the key used in the MCP client's mcpServers map.
const clientServerName = "Topocoding"

// Options are the command line options of topomcp.
type Options struct {
	ConfigFile     string `short:"c" long:"config"          env:"TOPOMCP_CONFIG" description:"Path to YAML configuration file"`
	APIKey         string `long:"api-key"                   env:"TOPOCODING_API_KEY" description:"topocoding.com API key"`
	Debug          bool   `short:"d" long:"debug"           description:"Enable debug logging"`
	Version        bool   `short:"v" long:"version"         description:"Display version information"`
	GenerateConfig string `long:"generate-config"           description:"Generate a Claude Desktop Client config file at the specified path"`
	PrintConfig    bool   `long:"print-config"              description:"Print the effective configuration as YAML and exit"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	// Show version and exit if requested
	if opts.Version {
		showVersion()
		return
	}

	logger := newLogger(slog.LevelInfo)
	slog.SetDefault(logger)

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if opts.APIKey != "" {
		cfg.Topocoding.APIKey = opts.APIKey
	}

	// Configure logging
	logLevel, _ := cfg.LogLevel()
	if opts.Debug {
		logLevel = slog.LevelDebug
	}
	logger = newLogger(logLevel)
	slog.SetDefault(logger)

	if opts.PrintConfig {
		if err := printConfig(os.Stdout, cfg); err != nil {
			logger.Error("failed to print config", "error", err)
			os.Exit(1)
		}
		return
	}

	// Generate Claude Desktop config if requested
	if opts.GenerateConfig != "" {
		if err := generateClientConfig(opts.GenerateConfig, serverArgs(opts)); err != nil {
			logger.Error("failed to generate config", "error", err)
			os.Exit(1)
		}
		logger.Info("successfully generated Claude Desktop Client config", "path", opts.GenerateConfig)
		return
	}

	logger.Info("starting topocoding MCP server",
		"version", version.BuildVersion,
		"log_level", logLevel.String())

	// Create and run the MCP server
	srv, err := server.NewServer(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	logger.Info("server initialized, waiting for requests")
	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// newLogger writes to stderr; stdout carries the MCP stream.
func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// printConfig writes the effective configuration as YAML.
func printConfig(w io.Writer, cfg config.Config) error {
	data, err := cfg.Marshal()
	if err != nil {
		return fmt.Errorf("failed to render config: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// serverArgs are the arguments the MCP client passes when launching us.
func serverArgs(opts Options) []string {
	args := []string{}
	if opts.ConfigFile != "" {
		if abs, err := filepath.Abs(opts.ConfigFile); err == nil {
			args = append(args, "--config", abs)
		}
	}
	if opts.Debug {
		args = append(args, "--debug")
	}
	return args
}

// validateConfigPath rejects paths that are empty, not JSON, or climb out
// of the working directory.
func validateConfigPath(outputPath string) error {
	if outputPath == "" {
		return errors.New("config path is empty")
	}
	if !strings.EqualFold(filepath.Ext(outputPath), ".json") {
		return fmt.Errorf("config path %q must have a .json extension", outputPath)
	}
	for _, part := range strings.Split(filepath.ToSlash(outputPath), "/") {
		if part == ".." {
			return fmt.Errorf("config path %q must not contain ..", outputPath)
		}
	}
	return nil
}

// generateClientConfig creates or updates a Claude Desktop Client config
// file, keeping any servers and settings already present.
func generateClientConfig(outputPath string, args []string) error {
	logger := slog.Default()

	if err := validateConfigPath(outputPath); err != nil {
		return err
	}

	// Get absolute path to executable
	execPath, err := os.Executable()
	if err != nil {
		execPath = os.Args[0]
	}
	absExecPath, err := filepath.Abs(execPath)
	if err != nil {
		absExecPath = execPath
	}

	if args == nil {
		args = []string{}
	}
	serverConfig := map[string]any{
		"command": absExecPath,
		"args":    args,
	}

	var clientConfig map[string]any

	if data, err := os.ReadFile(outputPath); err == nil {
		if err := json.Unmarshal(data, &clientConfig); err != nil {
			logger.Warn("existing config is not valid JSON, will create new", "error", err)
			clientConfig = nil
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to read existing config: %w", err)
	}
	if clientConfig == nil {
		clientConfig = make(map[string]any)
	}

	mcpServers, ok := clientConfig["mcpServers"].(map[string]any)
	if !ok {
		mcpServers = make(map[string]any)
		clientConfig["mcpServers"] = mcpServers
	}
	mcpServers[clientServerName] = serverConfig

	data, err := json.MarshalIndent(clientConfig, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	data = append(data, '\n')

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	// WriteFile keeps the mode of an existing file
	if err := os.Chmod(outputPath, 0600); err != nil {
		return fmt.Errorf("failed to set config permissions: %w", err)
	}

	return nil
}

// showVersion displays version information
func showVersion() {
	fmt.Println(version.String())
}
