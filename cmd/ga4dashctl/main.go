// main.go - Admin control tool for ga4dash
package main

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"ga4dash/internal"
	"ga4dash/internal/analytics"
	"ga4dash/internal/config"
	"ga4dash/internal/dashboard"
)

const (
	defaultShutdownTimeout = 30 * time.Second
	tokenEnv               = "GA4DASH_ACCESS_TOKEN"
)

// Command defines the interface for all command implementations
type Command interface {
	// Name returns the command name
	Name() string
	// Description returns the command description
	Description() string
	// NeedsApp reports whether Execute requires an initialized application
	NeedsApp() bool
	// Execute runs the command with the given app and args
	Execute(ctx context.Context, app *internal.Application, args []string) error
}

// The set of available commands
var commands = []Command{
	&GenKeyCommand{},
	&ConfigCommand{},
	&PropertiesCommand{},
	&SummaryCommand{},
	&ClearCacheCommand{},
	&HelpCommand{},
}

func main() {
	flag.Parse()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sig := <-sigChan
		log.Printf("Received signal: %v, initiating cleanup...", sig)
		cancel()
	}()

	cmdName, args := parseArgs()

	cmd := findCommand(cmdName)
	if cmd == nil {
		showUsageAndExit()
	}

	var app *internal.Application
	if cmd.NeedsApp() {
		var err error
		app, err = internal.NewApp()
		if err != nil {
			log.Fatalf("Failed to initialize app: %v", err)
		}

		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
			defer cancel()
			if err := app.Shutdown(shutdownCtx); err != nil {
				log.Printf("Warning: Cleanup error: %v", err)
			}
		}()
	}

	if err := cmd.Execute(ctx, app, args); err != nil {
		log.Fatalf("Command failed: %v", err)
	}
}

// GenKeyCommand prints a fresh 32-byte private key
type GenKeyCommand struct{}

func (c *GenKeyCommand) Name() string        { return "genkey" }
func (c *GenKeyCommand) Description() string { return "Generates a value for GA4DASH_PRIVATE_KEY" }
func (c *GenKeyCommand) NeedsApp() bool      { return false }

func (c *GenKeyCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	key, err := generateKey()
	if err != nil {
		return err
	}
	fmt.Println(key)
	return nil
}

func generateKey() (string, error) {
	buf := make([]byte, config.PrivateKeyLength/2)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// ConfigCommand validates and prints the effective configuration
type ConfigCommand struct{}

func (c *ConfigCommand) Name() string        { return "config" }
func (c *ConfigCommand) Description() string { return "Validates and prints the configuration" }
func (c *ConfigCommand) NeedsApp() bool      { return false }

func (c *ConfigCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	printConfig(os.Stdout, cfg)
	return nil
}

func printConfig(w io.Writer, cfg *config.Config) {
	fmt.Fprintf(w, "environment:   %s\n", cfg.Environment)
	fmt.Fprintf(w, "port:          %s\n", cfg.AppPort)
	fmt.Fprintf(w, "base url:      %s\n", cfg.BaseURL)
	fmt.Fprintf(w, "timezone:      %s\n", cfg.Timezone)
	fmt.Fprintf(w, "cache:         %s\n", cfg.CacheBackend)
	if cfg.CacheBackend == config.RedisCache {
		fmt.Fprintf(w, "redis:         %s (db %d)\n", cfg.RedisAddr, cfg.RedisDB)
	}
	fmt.Fprintf(w, "summary ttl:   %s\n", cfg.SummaryCacheTTL())
	fmt.Fprintf(w, "property ttl:  %s\n", cfg.PropertiesCacheTTL())
	fmt.Fprintf(w, "google client: %s\n", mask(cfg.GoogleClientID))
	fmt.Fprintf(w, "private key:   %s\n", mask(cfg.PrivateKey))
}

func mask(secret string) string {
	if secret == "" {
		return "(unset)"
	}
	if len(secret) <= 4 {
		return "****"
	}
	return secret[:4] + strings.Repeat("*", len(secret)-4)
}

// PropertiesCommand lists the properties readable with an access token
type PropertiesCommand struct{}

func (c *PropertiesCommand) Name() string        { return "properties" }
func (c *PropertiesCommand) Description() string { return "Lists GA4 properties for an access token" }
func (c *PropertiesCommand) NeedsApp() bool      { return true }

func (c *PropertiesCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	token, err := readToken()
	if err != nil {
		return err
	}

	properties, err := app.Service.Properties(ctx, token)
	if err != nil {
		return err
	}

	for _, p := range properties {
		fmt.Printf("%s\t%s\n", p.ID, p.DisplayName)
	}
	return nil
}

// SummaryCommand prints a property summary in an export format
type SummaryCommand struct{}

func (c *SummaryCommand) Name() string        { return "summary" }
func (c *SummaryCommand) Description() string { return "Prints a property summary (csv, json or yaml)" }
func (c *SummaryCommand) NeedsApp() bool      { return true }

func (c *SummaryCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	fs := flag.NewFlagSet("summary", flag.ContinueOnError)
	property := fs.String("property", "", "GA4 property id")
	start := fs.String("start", "", "start date (YYYY-MM-DD or relative)")
	end := fs.String("end", "", "end date (YYYY-MM-DD or relative)")
	preset := fs.String("range", "", "preset range: 7D, 30D or 90D")
	format := fs.String("format", "json", "output format: csv, json, yaml")
	insights := fs.Bool("insights", false, "print insights instead of the summary")
	if err := fs.Parse(args); err != nil {
		return err
	}

	exportFormat, err := analytics.ParseExportFormat(*format)
	if err != nil {
		return err
	}

	token, err := readToken()
	if err != nil {
		return err
	}

	req := dashboard.SummaryRequest{PropertyID: *property, StartDate: *start, EndDate: *end, Preset: *preset}

	if *insights {
		report, err := app.Service.Insights(ctx, token, req)
		if err != nil {
			return err
		}
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	}

	result, err := app.Service.Summary(ctx, token, req)
	if err != nil {
		return err
	}
	return analytics.Export(os.Stdout, exportFormat, result.Summary, result.Period.Current.Label, time.Now())
}

// ClearCacheCommand drops all cached responses
type ClearCacheCommand struct{}

func (c *ClearCacheCommand) Name() string        { return "cache-clear" }
func (c *ClearCacheCommand) Description() string { return "Clears cached summaries and property lists" }
func (c *ClearCacheCommand) NeedsApp() bool      { return true }

func (c *ClearCacheCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	if app.Config.CacheBackend == config.MemoryCache {
		log.Println("Memory cache lives in the server process; nothing to clear from here")
		return nil
	}
	if err := app.ClearCaches(ctx); err != nil {
		return err
	}
	log.Println("Cache cleared")
	return nil
}

// HelpCommand implements a command to show usage information
type HelpCommand struct{}

func (c *HelpCommand) Name() string        { return "help" }
func (c *HelpCommand) Description() string { return "Shows usage information" }
func (c *HelpCommand) NeedsApp() bool      { return false }

func (c *HelpCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	printUsage(os.Stdout)
	return nil
}

// readToken takes the access token from the environment, or prompts for it
// without echo when attached to a terminal.
func readToken() (string, error) {
	if token := strings.TrimSpace(os.Getenv(tokenEnv)); token != "" {
		return token, nil
	}

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, "Access token: ")
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("failed to read token: %w", err)
		}
		return nonEmptyToken(string(raw))
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return nonEmptyToken(line)
}

func nonEmptyToken(raw string) (string, error) {
	token := strings.TrimSpace(raw)
	if token == "" {
		return "", fmt.Errorf("an access token is required (set %s)", tokenEnv)
	}
	return token, nil
}

// Helper functions

// parseArgs parses the command name and arguments
func parseArgs() (string, []string) {
	args := flag.Args()
	if len(args) == 0 {
		return "help", []string{}
	}
	return args[0], args[1:]
}

// findCommand finds a command by name
func findCommand(name string) Command {
	for _, cmd := range commands {
		if cmd.Name() == name {
			return cmd
		}
	}
	return nil
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: ga4dashctl [command] [args...]")
	fmt.Fprintln(w, "Available commands:")

	for _, cmd := range commands {
		fmt.Fprintf(w, "  %s: %s\n", cmd.Name(), cmd.Description())
	}
}

// showUsageAndExit shows usage information and exits
func showUsageAndExit() {
	printUsage(os.Stdout)
	os.Exit(1)
}
