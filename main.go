// emvctl is a terminal client for EMV chip cards: application discovery,
// ad-hoc APDU-level commands (SELECT, READ RECORD, GET DATA) and PIN
// verification, all driven from a PC/SC reader.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/ebfe/scard"
	"github.com/tomkp/go-emv/internal/cliutil"
	"github.com/tomkp/go-emv/internal/config"
)

const version = "0.1.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	globalFlags := flag.NewFlagSet("emvctl", flag.ContinueOnError)
	formatFlag := globalFlags.String("format", "text", "output format: text or json")
	verboseFlag := globalFlags.Bool("verbose", false, "enable debug logging")
	readerFlag := globalFlags.String("reader", "", "reader name (default: first reader)")
	configFlag := globalFlags.String("config", "", "path to a YAML session config file")
	versionFlag := globalFlags.Bool("version", false, "print version and exit")

	globalFlags.Usage = printUsage

	if err := globalFlags.Parse(args); err != nil {
		return 1
	}

	if *versionFlag {
		fmt.Println("emvctl " + version)
		return 0
	}

	level := slog.LevelInfo
	if *verboseFlag {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	format, err := cliutil.ParseFormat(*formatFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	rest := globalFlags.Args()
	if len(rest) == 0 {
		printUsage()
		return 1
	}
	cmdName, cmdArgs := rest[0], rest[1:]

	var cfg *config.Config
	if *configFlag != "" {
		cfg, err = config.Load(*configFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
			return 1
		}
	}

	env := &cliEnv{
		format:  format,
		reader:  config.ResolveReader(*readerFlag, cfg),
		config:  cfg,
		verbose: *verboseFlag,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}

	cmd, ok := commands[cmdName]
	if !ok {
		fmt.Fprintf(os.Stderr, "emvctl: unknown command %q\n", cmdName)
		printUsage()
		return 1
	}

	if err := cmd.run(env, cmdArgs); err != nil {
		fmt.Fprintf(os.Stderr, "emvctl %s: %v\n", cmdName, err)
		return 1
	}
	return 0
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: emvctl [--format text|json] [--verbose] [--reader NAME] [--config FILE] <command> [args]")
	fmt.Fprintln(os.Stderr, "\ncommands:")
	for _, name := range commandOrder {
		fmt.Fprintf(os.Stderr, "  %-14s %s\n", name, commands[name].help)
	}
}

// cliEnv carries the resolved global options through to each command.
type cliEnv struct {
	format  cliutil.Format
	reader  string
	config  *config.Config
	verbose bool
	stdout  *os.File
	stderr  *os.File
}

// connect establishes a PC/SC context and connects to the configured (or
// first available) reader, returning a Transport the emv package can drive
// directly, alongside a release func the caller must defer.
func connect(env *cliEnv) (transport *scard.Card, release func(), err error) {
	ctx, err := scard.EstablishContext()
	if err != nil {
		return nil, nil, fmt.Errorf("establish PC/SC context: %w", err)
	}

	readerName, err := resolveReaderName(ctx, env.reader)
	if err != nil {
		_ = ctx.Release()
		return nil, nil, err
	}

	card, err := ctx.Connect(readerName, scard.ShareShared, scard.ProtocolT0|scard.ProtocolT1)
	if err != nil {
		_ = ctx.Release()
		return nil, nil, fmt.Errorf("connect to %q: %w", readerName, err)
	}

	release = func() {
		if err := card.Disconnect(scard.LeaveCard); err != nil {
			slog.Warn("disconnect failed", "error", err)
		}
		if err := ctx.Release(); err != nil {
			slog.Warn("release context failed", "error", err)
		}
	}
	return card, release, nil
}

func resolveReaderName(ctx *scard.Context, want string) (string, error) {
	readers, err := ctx.ListReaders()
	if err != nil {
		return "", fmt.Errorf("list readers: %w", err)
	}
	if len(readers) == 0 {
		return "", fmt.Errorf("no PC/SC readers found")
	}
	if want == "" {
		return readers[0], nil
	}
	for _, r := range readers {
		if r == want {
			return r, nil
		}
	}
	return "", fmt.Errorf("reader %q not found among %v", want, readers)
}
