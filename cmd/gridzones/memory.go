package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/1broseidon/gridzones/internal/cli"
	"github.com/1broseidon/gridzones/internal/config"
	"github.com/1broseidon/gridzones/internal/ipc"
	"github.com/1broseidon/gridzones/internal/memory"
)

func printMemoryUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: gridzones memory <command>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  list                List remembered window positions")
	fmt.Fprintln(w, "  forget <app>        Forget remembered positions for an app")
	fmt.Fprintln(w, "  export [--file F]   Export position memory as JSON (stdout by default)")
	fmt.Fprintln(w, "  import [--file F]   Import position memory from JSON (stdin by default)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "list and forget talk to the running daemon; export and import open the")
	fmt.Fprintln(w, "database directly and work whether or not the daemon is running.")
}

func runMemory(args []string) int {
	if len(args) == 0 {
		printMemoryUsage(os.Stderr)
		return 2
	}
	if args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printMemoryUsage(os.Stdout)
		return 0
	}

	switch args[0] {
	case "list":
		fs := flag.NewFlagSet("list", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		jsonOut := fs.Bool("json", false, "Output entries as JSON")
		if err := fs.Parse(args[1:]); err != nil {
			if err == flag.ErrHelp {
				return 0
			}
			return 2
		}

		data, err := ipc.NewClient().ListMemory()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if *jsonOut {
			return printJSON(data.Entries)
		}
		cli.RenderMemory(os.Stdout, data.Entries)
		return 0

	case "forget":
		fs := flag.NewFlagSet("forget", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		fs.Usage = func() {
			fmt.Fprintln(os.Stderr, "Usage: gridzones memory forget <app>")
		}
		if err := fs.Parse(args[1:]); err != nil {
			if err == flag.ErrHelp {
				return 0
			}
			return 2
		}
		if fs.NArg() != 1 {
			fmt.Fprintln(os.Stderr, "memory forget requires <app>")
			return 2
		}

		app := fs.Arg(0)
		removed, err := ipc.NewClient().ForgetMemory(app)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		cli.Successf(os.Stdout, "forgot %d entries for %s", removed, app)
		return 0

	case "export":
		fs := flag.NewFlagSet("export", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		file := fs.String("file", "", "Write to a file instead of stdout")
		if err := fs.Parse(args[1:]); err != nil {
			if err == flag.ErrHelp {
				return 0
			}
			return 2
		}

		store, err := openMemoryStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		defer store.Close()

		out := io.Writer(os.Stdout)
		if *file != "" {
			f, err := os.Create(*file)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			defer f.Close()
			out = f
		}
		if err := store.Export(context.Background(), out); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0

	case "import":
		fs := flag.NewFlagSet("import", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		file := fs.String("file", "", "Read from a file instead of stdin")
		if err := fs.Parse(args[1:]); err != nil {
			if err == flag.ErrHelp {
				return 0
			}
			return 2
		}

		store, err := openMemoryStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		defer store.Close()

		in := io.Reader(os.Stdin)
		if *file != "" {
			f, err := os.Open(*file)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			defer f.Close()
			in = f
		}
		n, err := store.Import(context.Background(), in)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		cli.Successf(os.Stdout, "imported %d entries", n)
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown memory command: %s\n\n", args[0])
		printMemoryUsage(os.Stderr)
		return 2
	}
}

// openMemoryStore opens the position database at the configured path.
func openMemoryStore() (*memory.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	path := cfg.PositionMemory.Path
	if path == "" {
		path, err = memory.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return memory.Open(path)
}
