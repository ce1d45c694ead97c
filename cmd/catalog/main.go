package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
)

// Supported subcommands:
// - seed:  Insert the demo catalog next to the existing products
// - reset: Delete every product, then seed

func main() {
	seedCmd := flag.NewFlagSet("seed", flag.ExitOnError)
	resetCmd := flag.NewFlagSet("reset", flag.ExitOnError)

	flags := catalogFlags{
		Seed:  newWorkflowFlags(seedCmd),
		Reset: newWorkflowFlags(resetCmd),
	}

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := runSubcommand(ctx, &flags); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type catalogFlags struct {
	Seed  workflowFlags
	Reset workflowFlags
}

type workflowFlags struct {
	cmd         *flag.FlagSet
	source      *string
	key         *string
	concurrency *int
}

func newWorkflowFlags(cmd *flag.FlagSet) workflowFlags {
	return workflowFlags{
		cmd:         cmd,
		source:      cmd.String("source", "", "Blob URL of a YAML catalog (default: config, else embedded demo catalog)"),
		key:         cmd.String("key", "", "Object key of the catalog inside -source"),
		concurrency: cmd.Int("concurrency", 0, "Concurrent product writes (default: config)"),
	}
}

func runSubcommand(ctx context.Context, flags *catalogFlags) error {
	switch os.Args[1] {
	case workflowSeed:
		return handleWorkflow(ctx, workflowSeed, flags.Seed)
	case workflowReset:
		return handleWorkflow(ctx, workflowReset, flags.Reset)
	default:
		printUsage()

		return errors.New("unknown subcommand")
	}
}

func handleWorkflow(ctx context.Context, workflow string, flags workflowFlags) error {
	if err := flags.cmd.Parse(os.Args[2:]); err != nil {
		return errors.Wrapf(err, "failed to parse %s flags", workflow)
	}

	if *flags.concurrency < 0 {
		return errors.New("--concurrency must not be negative")
	}

	return runWorkflow(ctx, workflow, overrides{
		source:      *flags.source,
		key:         *flags.key,
		concurrency: *flags.concurrency,
	})
}

func printUsage() {
	fmt.Println("Usage: catalog <command> [options]")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  seed     Insert the demo catalog")
	fmt.Println("  reset    Delete every product, then insert the demo catalog")
	fmt.Println("")
	fmt.Println("Use 'catalog <command> -h' for more information about a command.")
}
