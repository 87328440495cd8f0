package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mattjoyce/tgwire/internal/config"
	"github.com/mattjoyce/tgwire/internal/crashpad"
	"github.com/mattjoyce/tgwire/internal/dispatch"
	"github.com/mattjoyce/tgwire/internal/journal"
	"github.com/mattjoyce/tgwire/internal/lock"
	"github.com/mattjoyce/tgwire/internal/log"
	"github.com/mattjoyce/tgwire/internal/plugins"
	"github.com/mattjoyce/tgwire/internal/telegram"
	"github.com/mattjoyce/tgwire/internal/tui/watch"
	"github.com/mattjoyce/tgwire/internal/update"
	"github.com/mattjoyce/tgwire/internal/webhook"
)

const version = "0.1.0"

const defaultConfigPath = "tgwire.yaml"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	// --- NOUNS ---
	case "system":
		os.Exit(runSystemNoun(args))
	case "webhook":
		os.Exit(runWebhookNoun(args))
	case "bot":
		os.Exit(runBotNoun(args))
	case "config":
		os.Exit(runConfigNoun(args))
	case "journal":
		os.Exit(runJournalNoun(args))

	// --- ROOT ALIASES ---
	case "start":
		os.Exit(runStart(args))
	case "watch":
		os.Exit(runWatch(args))
	case "version":
		fmt.Printf("tgwire version %s\n", version)
		os.Exit(0)
	case "help", "--help", "-h":
		printUsage()
		os.Exit(0)

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`tgwire - Webhook-driven Telegram update dispatcher

Usage:
  tgwire <noun> <action> [flags]

Core Resources (Nouns):
  system    Dispatcher lifecycle
  webhook   Remote webhook registration
  bot       Bot account identity
  config    Configuration validation and integrity
  journal   Dispatch audit log

System Commands:
  system start      Start the dispatcher service in foreground

Webhook Commands:
  webhook set       Register the public URL with the remote API
  webhook delete    Remove the remote webhook registration
  webhook info      Show the current remote registration

Bot Commands:
  bot info          Show the authenticated bot account

Config Commands:
  config check      Validate syntax and print the file fingerprint

Journal Commands:
  journal list      Show recent dispatch entries

General:
  watch             Live dispatch monitor TUI
  version           Show version information
  help              Show this help message

Use 'tgwire <noun> help' for resource-specific flags.
`)
}

// --- NOUN DISPATCHERS ---

func runSystemNoun(args []string) int {
	if len(args) < 1 {
		printSystemNounHelp(os.Stderr)
		return 1
	}
	if isHelpToken(args[0]) {
		printSystemNounHelp(os.Stdout)
		return 0
	}

	action := args[0]
	actionArgs := args[1:]

	switch action {
	case "start":
		if hasHelpFlag(actionArgs) {
			printSystemStartHelp()
			return 0
		}
		return runStart(actionArgs)
	case "help":
		printSystemNounHelp(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown system action: %s\n", action)
		return 1
	}
}

func runWebhookNoun(args []string) int {
	if len(args) < 1 {
		printWebhookNounHelp(os.Stderr)
		return 1
	}
	if isHelpToken(args[0]) {
		printWebhookNounHelp(os.Stdout)
		return 0
	}

	action := args[0]
	actionArgs := args[1:]

	switch action {
	case "set":
		if hasHelpFlag(actionArgs) {
			printWebhookSetHelp()
			return 0
		}
		return runWebhookSet(actionArgs)
	case "delete":
		if hasHelpFlag(actionArgs) {
			printWebhookDeleteHelp()
			return 0
		}
		return runWebhookDelete(actionArgs)
	case "info":
		if hasHelpFlag(actionArgs) {
			printWebhookInfoHelp()
			return 0
		}
		return runWebhookInfo(actionArgs)
	case "help":
		printWebhookNounHelp(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown webhook action: %s\n", action)
		return 1
	}
}

func runBotNoun(args []string) int {
	if len(args) < 1 {
		printBotNounHelp(os.Stderr)
		return 1
	}
	if isHelpToken(args[0]) {
		printBotNounHelp(os.Stdout)
		return 0
	}

	action := args[0]
	actionArgs := args[1:]

	switch action {
	case "info":
		if hasHelpFlag(actionArgs) {
			printBotInfoHelp()
			return 0
		}
		return runBotInfo(actionArgs)
	case "help":
		printBotNounHelp(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown bot action: %s\n", action)
		return 1
	}
}

func runConfigNoun(args []string) int {
	if len(args) < 1 {
		printConfigNounHelp(os.Stderr)
		return 1
	}
	if isHelpToken(args[0]) {
		printConfigNounHelp(os.Stdout)
		return 0
	}

	action := args[0]
	actionArgs := args[1:]

	switch action {
	case "check":
		if hasHelpFlag(actionArgs) {
			printConfigCheckHelp()
			return 0
		}
		return runConfigCheck(actionArgs)
	case "help":
		printConfigNounHelp(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown config action: %s\n", action)
		return 1
	}
}

func runJournalNoun(args []string) int {
	if len(args) < 1 {
		printJournalNounHelp(os.Stderr)
		return 1
	}
	if isHelpToken(args[0]) {
		printJournalNounHelp(os.Stdout)
		return 0
	}

	action := args[0]
	actionArgs := args[1:]

	switch action {
	case "list":
		if hasHelpFlag(actionArgs) {
			printJournalListHelp()
			return 0
		}
		return runJournalList(actionArgs)
	case "watch":
		if hasHelpFlag(actionArgs) {
			printWatchHelp()
			return 0
		}
		return runWatch(actionArgs)
	case "help":
		printJournalNounHelp(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown journal action: %s\n", action)
		return 1
	}
}

func isHelpToken(token string) bool {
	return token == "help" || token == "--help" || token == "-h"
}

func hasHelpFlag(args []string) bool {
	for _, arg := range args {
		if arg == "--help" || arg == "-h" {
			return true
		}
	}
	return false
}

func printSystemNounHelp(w *os.File) {
	fmt.Fprintln(w, "Usage: tgwire system <action>")
	fmt.Fprintln(w, "Actions: start")
}

func printWebhookNounHelp(w *os.File) {
	fmt.Fprintln(w, "Usage: tgwire webhook <action> [flags]")
	fmt.Fprintln(w, "Actions: set, delete, info")
}

func printBotNounHelp(w *os.File) {
	fmt.Fprintln(w, "Usage: tgwire bot <action>")
	fmt.Fprintln(w, "Actions: info")
}

func printConfigNounHelp(w *os.File) {
	fmt.Fprintln(w, "Usage: tgwire config <action> [flags]")
	fmt.Fprintln(w, "Actions: check")
}

func printJournalNounHelp(w *os.File) {
	fmt.Fprintln(w, "Usage: tgwire journal <action> [flags]")
	fmt.Fprintln(w, "Actions: list, watch")
}

func printSystemStartHelp() {
	fmt.Println("Usage: tgwire system start [--config PATH]")
	fmt.Println("Start the dispatcher service in the foreground.")
}

func printWebhookSetHelp() {
	fmt.Println("Usage: tgwire webhook set [--config PATH] [--drop-pending]")
	fmt.Println("Register the configured public URL with the remote API.")
}

func printWebhookDeleteHelp() {
	fmt.Println("Usage: tgwire webhook delete [--config PATH] [--drop-pending]")
	fmt.Println("Remove the remote webhook registration.")
}

func printWebhookInfoHelp() {
	fmt.Println("Usage: tgwire webhook info [--config PATH] [--json]")
	fmt.Println("Show the current remote webhook registration.")
}

func printBotInfoHelp() {
	fmt.Println("Usage: tgwire bot info [--config PATH] [--json]")
	fmt.Println("Show the authenticated bot account.")
}

func printConfigCheckHelp() {
	fmt.Println("Usage: tgwire config check [--config PATH]")
	fmt.Println("Validate configuration syntax and print the file fingerprint.")
}

func printJournalListHelp() {
	fmt.Println("Usage: tgwire journal list [--config PATH] [--limit N] [--json]")
	fmt.Println("Show recent dispatch entries, newest first.")
}

func printWatchHelp() {
	fmt.Println("Usage: tgwire watch [--config PATH]")
	fmt.Println("Live dispatch monitor TUI over the journal.")
}

// --- ACTION IMPLEMENTATIONS ---

func loadConfigForTool(configPath string) (*config.Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}
	return config.Load(configPath)
}

func runStart(args []string) int {
	fs := flag.NewFlagSet("start", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse flags: %v\n", err)
		return 1
	}

	cfg, err := loadConfigForTool(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	log.Setup(cfg.Log.Level)
	logger := log.WithComponent("main")
	logger.Info("tgwire starting", "version", version)

	pidLockPath := pidLockPathFor(cfg.Journal.Path)
	pidLock, err := lock.AcquirePIDLock(pidLockPath)
	if err != nil {
		logger.Error("failed to acquire PID lock (another instance may be running)", "path", pidLockPath, "error", err)
		return 1
	}
	defer pidLock.Release()
	logger.Info("acquired PID lock", "path", pidLockPath)

	client, err := telegram.NewClient(cfg.Bot.Token)
	if err != nil {
		logger.Error("failed to create telegram client", "error", err)
		return 1
	}

	pad := crashpad.Configure(client)
	if cfg.Bot.AdminChatID != 0 {
		pad.SetAdminChatID(cfg.Bot.AdminChatID)
		logger.Info("crash pad armed", "admin_chat_id", cfg.Bot.AdminChatID)
	} else {
		logger.Warn("crash pad admin chat unset, reports will be dropped")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := journal.Open(ctx, cfg.Journal.Path)
	if err != nil {
		logger.Error("failed to open journal", "path", cfg.Journal.Path, "error", err)
		return 1
	}
	defer db.Close()
	j := journal.New(db)
	logger.Info("journal opened", "path", cfg.Journal.Path)

	registered := []*dispatch.Plugin{
		plugins.AuditLog(),
		plugins.Ping(client),
	}
	for _, p := range registered {
		logger.Info("plugin registered", "name", p.Name())
	}

	engine := webhook.NewEngine(cfg.Bot.Token, registered,
		webhook.WithCrashPad(pad),
		webhook.WithJournal(j),
	)

	webhookConfig, err := webhook.FromGlobalConfig(&cfg.Webhook)
	if err != nil {
		logger.Error("failed to configure webhook server", "error", err)
		return 1
	}
	server := webhook.New(webhookConfig, engine, log.WithComponent("webhook"))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil && err != context.Canceled {
			errCh <- fmt.Errorf("webhook: %w", err)
		}
	}()

	logger.Info("tgwire running (press Ctrl+C to stop)")

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	case err := <-errCh:
		logger.Error("component failed", "error", err)
		cancel()
		return 1
	}

	logger.Info("tgwire stopped")
	return 0
}

// pidLockPathFor derives the PID lock path from the journal database path so
// both live in the same state directory.
func pidLockPathFor(journalPath string) string {
	dir := filepath.Dir(journalPath)
	base := filepath.Base(journalPath)
	ext := filepath.Ext(base)
	return filepath.Join(dir, base[:len(base)-len(ext)]+".pid")
}

func runWebhookSet(args []string) int {
	fs := flag.NewFlagSet("set", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	dropPending := fs.Bool("drop-pending", false, "Drop pending updates on registration")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse flags: %v\n", err)
		return 1
	}

	cfg, err := loadConfigForTool(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}
	if cfg.Webhook.PublicURL == "" {
		fmt.Fprintln(os.Stderr, "Error: webhook.public_url is not configured")
		return 1
	}

	client, err := telegram.NewClient(cfg.Bot.Token)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
		return 1
	}

	err = client.SetWebhook(context.Background(), telegram.WebhookParams{
		URL:                cfg.Webhook.PublicURL,
		SecretToken:        cfg.Webhook.SecretToken,
		AllowedUpdates:     update.KnownTypes(),
		DropPendingUpdates: *dropPending,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Set webhook failed: %v\n", err)
		return 1
	}

	fmt.Printf("Webhook registered: %s\n", cfg.Webhook.PublicURL)
	return 0
}

func runWebhookDelete(args []string) int {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	dropPending := fs.Bool("drop-pending", false, "Drop pending updates on removal")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse flags: %v\n", err)
		return 1
	}

	cfg, err := loadConfigForTool(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	client, err := telegram.NewClient(cfg.Bot.Token)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
		return 1
	}

	if err := client.DeleteWebhook(context.Background(), *dropPending); err != nil {
		fmt.Fprintf(os.Stderr, "Delete webhook failed: %v\n", err)
		return 1
	}

	fmt.Println("Webhook deleted")
	return 0
}

func runWebhookInfo(args []string) int {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	jsonOut := fs.Bool("json", false, "Output in structured JSON format")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse flags: %v\n", err)
		return 1
	}

	cfg, err := loadConfigForTool(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	client, err := telegram.NewClient(cfg.Bot.Token)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
		return 1
	}

	info, err := client.GetWebhookInfo(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Get webhook info failed: %v\n", err)
		return 1
	}

	if *jsonOut {
		data, _ := json.MarshalIndent(info, "", "  ")
		fmt.Println(string(data))
		return 0
	}

	fmt.Printf("URL:             %s\n", info.URL)
	fmt.Printf("Pending updates: %d\n", info.PendingUpdateCount)
	if info.LastErrorMessage != "" {
		fmt.Printf("Last error:      %s\n", info.LastErrorMessage)
	}
	if len(info.AllowedUpdates) > 0 {
		fmt.Printf("Allowed updates: %s\n", strings.Join(info.AllowedUpdates, ", "))
	}
	return 0
}

func runBotInfo(args []string) int {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	jsonOut := fs.Bool("json", false, "Output in structured JSON format")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse flags: %v\n", err)
		return 1
	}

	cfg, err := loadConfigForTool(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	client, err := telegram.NewClient(cfg.Bot.Token)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
		return 1
	}

	me, err := client.GetMe(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Get bot info failed: %v\n", err)
		return 1
	}

	if *jsonOut {
		data, _ := json.MarshalIndent(me, "", "  ")
		fmt.Println(string(data))
		return 0
	}

	fmt.Printf("ID:       %d\n", me.ID)
	fmt.Printf("Username: @%s\n", me.Username)
	fmt.Printf("Name:     %s\n", me.FirstName)
	return 0
}

func runConfigCheck(args []string) int {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse flags: %v\n", err)
		return 1
	}

	path := *configPath
	if path == "" {
		path = defaultConfigPath
	}

	if _, err := config.Load(path); err != nil {
		fmt.Fprintf(os.Stderr, "Config check FAILED: %v\n", err)
		return 1
	}

	fingerprint, err := config.Fingerprint(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Fingerprint error: %v\n", err)
		return 1
	}

	fmt.Println("Config check PASSED.")
	fmt.Printf("Fingerprint (BLAKE3): %s\n", fingerprint)
	return 0
}

func runJournalList(args []string) int {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	limit := fs.Int("limit", 20, "Maximum number of entries to show")
	jsonOut := fs.Bool("json", false, "Output in structured JSON format")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse flags: %v\n", err)
		return 1
	}

	cfg, err := loadConfigForTool(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	ctx := context.Background()
	db, err := journal.Open(ctx, cfg.Journal.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open journal: %v\n", err)
		return 1
	}
	defer db.Close()

	entries, err := journal.New(db).Recent(ctx, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read journal: %v\n", err)
		return 1
	}

	if *jsonOut {
		data, _ := json.MarshalIndent(entries, "", "  ")
		fmt.Println(string(data))
		return 0
	}

	if len(entries) == 0 {
		fmt.Println("Journal is empty.")
		return 0
	}

	fmt.Printf("%-26s %-10s %-20s %-8s %-7s %s\n", "RECEIVED", "UPDATE", "TYPE", "PLUGINS", "KILLED", "ERROR")
	for _, e := range entries {
		errText := ""
		if e.Error != nil {
			errText = *e.Error
		}
		fmt.Printf("%-26s %-10d %-20s %-8d %-7t %s\n",
			e.ReceivedAt.Local().Format("2006-01-02 15:04:05.000"),
			e.UpdateID, e.Type, e.PluginsRun, e.Killed, errText)
	}
	return 0
}

func runWatch(args []string) int {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse flags: %v\n", err)
		return 1
	}

	cfg, err := loadConfigForTool(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	ctx := context.Background()
	db, err := journal.Open(ctx, cfg.Journal.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open journal: %v\n", err)
		return 1
	}
	defer db.Close()

	model := watch.New(journal.New(db))
	if _, err := tea.NewProgram(model).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Watch TUI failed: %v\n", err)
		return 1
	}
	return 0
}
