// ABOUTME: Admin CLI for inspecting emotia data: agent memory, personas, messages
// ABOUTME: Operates directly on the local databases, no running client required

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/onet/emotia/internal/config"
	"github.com/onet/emotia/internal/conversation"
	"github.com/onet/emotia/internal/memory"
	"github.com/onet/emotia/internal/persona"
	"github.com/onet/emotia/internal/store"
)

const banner = `
                      _   _                       _           _
   ___ _ __ ___   ___ | |_(_) __ _        __ _  __| |_ __ ___ (_)_ __
  / _ \ '_ ' _ \ / _ \| __| |/ _' |_____ / _' |/ _' | '_ ' _ \| | '_ \
 |  __/ | | | | | (_) | |_| | (_| |_____| (_| | (_| | | | | | | | | | |
  \___|_| |_| |_|\___/ \__|_|\__,_|      \__,_|\__,_|_| |_| |_|_|_| |_|
`

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "memory":
		err = cmdMemory(args)
	case "agents":
		err = cmdAgents()
	case "personas":
		err = cmdPersonas()
	case "messages":
		err = cmdMessages(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)

	cyan.Print(banner)
	fmt.Println()
	fmt.Println("Usage: emotia-admin <command> [args]")
	fmt.Println()
	yellow.Println("Commands:")
	fmt.Println("  agents                    List agents with stored memory")
	fmt.Println("  memory <agent-id>         Show an agent's conversation memory")
	fmt.Println("  memory clear <agent-id>   Erase an agent's memory")
	fmt.Println("  personas                  List personas from the built-in set or pack")
	fmt.Println("  messages <peer-id>        Show visible messages for a conversation")
	fmt.Println()
	yellow.Println("Environment:")
	fmt.Println("  EMOTIA_CONFIG             Config file path (default: ~/.config/emotia/config.yaml)")
	fmt.Println()
	yellow.Println("Examples:")
	fmt.Println("  emotia-admin memory aya-x")
	fmt.Println("  emotia-admin memory clear aya-x")
	fmt.Println("  emotia-admin messages alex-ai")
	fmt.Println()
}

// loadConfig resolves the same config file the chat client uses.
func loadConfig() (*config.Config, error) {
	path := os.Getenv("EMOTIA_CONFIG")
	if path == "" {
		configDir := os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("could not determine config directory: %w", err)
			}
			configDir = filepath.Join(homeDir, ".config")
		}
		path = filepath.Join(configDir, "emotia", "config.yaml")
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}
	return cfg, nil
}

// cmdMemory shows or clears an agent's turn log.
func cmdMemory(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: memory <agent-id> | memory clear <agent-id>")
	}

	if args[0] == "clear" {
		if len(args) < 2 {
			return fmt.Errorf("usage: memory clear <agent-id>")
		}
		return cmdMemoryClear(args[1])
	}

	return cmdMemoryShow(args[0])
}

func cmdMemoryShow(agentID string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	mem, err := memory.Open(cfg.Memory.Path, discardLogger())
	if err != nil {
		return err
	}
	defer mem.Close()

	turns := mem.Load(agentID)

	cyan := color.New(color.FgCyan)
	fmt.Println()
	cyan.Printf("  Memory for %s\n", agentID)
	cyan.Println("  " + dashes(len(agentID)+11))

	if len(turns) == 0 {
		fmt.Println("  (no stored turns)")
		fmt.Println()
		return nil
	}

	green := color.New(color.FgGreen)
	for _, turn := range turns {
		stamp := turn.Timestamp.Local().Format("Jan 02 15:04:05")
		if turn.Role == memory.RoleUser {
			green.Printf("  %s  user   ", stamp)
		} else {
			fmt.Printf("  %s  agent  ", stamp)
		}
		fmt.Println(turn.Text)
	}
	fmt.Printf("\n  %d turns\n\n", len(turns))

	return nil
}

func cmdMemoryClear(agentID string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	mem, err := memory.Open(cfg.Memory.Path, discardLogger())
	if err != nil {
		return err
	}
	defer mem.Close()

	mem.Clear(agentID)

	green := color.New(color.FgGreen)
	green.Printf("✓ Cleared memory for %s\n", agentID)
	return nil
}

// cmdAgents lists agents that have stored turns.
func cmdAgents() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	mem, err := memory.Open(cfg.Memory.Path, discardLogger())
	if err != nil {
		return err
	}
	defer mem.Close()

	agents := mem.Agents()

	cyan := color.New(color.FgCyan)
	fmt.Println()
	cyan.Println("  Agents with stored memory")
	cyan.Println("  -------------------------")

	if len(agents) == 0 {
		fmt.Println("  (none)")
		fmt.Println()
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  AGENT\tTURNS")
	fmt.Fprintln(w, "  -----\t-----")
	for _, id := range agents {
		fmt.Fprintf(w, "  %s\t%d\n", id, len(mem.Load(id)))
	}
	w.Flush()
	fmt.Println()

	return nil
}

// cmdPersonas lists the resolved persona set.
func cmdPersonas() error {
	pack := persona.Builtin()

	// A pack path from config overrides the built-ins, same as the client.
	if cfg, err := loadConfig(); err == nil && cfg.Personas.Path != "" {
		pack, err = persona.LoadPack(cfg.Personas.Path)
		if err != nil {
			return err
		}
	}

	cyan := color.New(color.FgCyan)
	fmt.Println()
	cyan.Println("  Personas")
	cyan.Println("  --------")

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  ID\tNAME\tMOOD\tKIND\tPHRASES")
	fmt.Fprintln(w, "  --\t----\t----\t----\t-------")
	for _, per := range pack.All() {
		kind := "phrases"
		if pack.IsPrimary(per.ID) {
			kind = "rules"
		}
		fmt.Fprintf(w, "  %s\t%s\t%s %s\t%s\t%d\n",
			per.ID, per.Name, per.MoodEmoji, per.MoodKey, kind, len(per.Phrases))
	}
	w.Flush()
	fmt.Println()

	return nil
}

// cmdMessages shows the visible messages of the conversation between the
// configured user and the given peer.
func cmdMessages(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: messages <peer-id>")
	}
	peerID := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	key := conversation.Key(cfg.User.ID, peerID)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	messages, err := st.ListVisible(ctx, key)
	if err != nil {
		return err
	}

	cyan := color.New(color.FgCyan)
	fmt.Println()
	cyan.Printf("  Conversation %s\n", key)
	cyan.Println("  " + dashes(len(key)+13))

	if len(messages) == 0 {
		fmt.Println("  (no messages)")
		fmt.Println()
		return nil
	}

	green := color.New(color.FgGreen)
	for _, msg := range messages {
		stamp := msg.Timestamp.Local().Format("Jan 02 15:04:05")
		if msg.SenderID == cfg.User.ID {
			green.Printf("  %s  %s  ", stamp, msg.SenderName)
		} else {
			fmt.Printf("  %s  %s  ", stamp, msg.SenderName)
		}
		fmt.Println(msg.Text)
	}
	fmt.Printf("\n  %d messages\n\n", len(messages))

	return nil
}

// discardLogger silences library logging; admin output is the command's own.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func dashes(n int) string {
	out := make([]byte, n)
	for i := range out {
		out[i] = '-'
	}
	return string(out)
}
