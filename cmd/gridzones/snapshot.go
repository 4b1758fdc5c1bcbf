package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/1broseidon/gridzones/internal/cli"
	"github.com/1broseidon/gridzones/internal/ipc"
	"github.com/1broseidon/gridzones/internal/snapshot"
)

func printSnapshotUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: gridzones snapshot <command>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  save <name>     Save current placements under a name")
	fmt.Fprintln(w, "  load <name>     Re-apply a saved snapshot by app name")
	fmt.Fprintln(w, "  list            List saved snapshots")
	fmt.Fprintln(w, "  delete <name>   Delete a snapshot")
}

func runSnapshot(args []string) int {
	if len(args) == 0 {
		printSnapshotUsage(os.Stderr)
		return 2
	}
	if args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printSnapshotUsage(os.Stdout)
		return 0
	}

	switch args[0] {
	case "save":
		fs := flag.NewFlagSet("save", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		fs.Usage = func() {
			fmt.Fprintln(os.Stderr, "Usage: gridzones snapshot save <name>")
		}
		if err := fs.Parse(args[1:]); err != nil {
			if err == flag.ErrHelp {
				return 0
			}
			return 2
		}
		if fs.NArg() != 1 {
			fmt.Fprintln(os.Stderr, "snapshot save requires <name>")
			return 2
		}

		name := fs.Arg(0)
		count, err := ipc.NewClient().SnapshotSave(name)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		cli.Successf(os.Stdout, "saved snapshot %q (%d placements)", name, count)
		return 0

	case "load":
		fs := flag.NewFlagSet("load", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		fs.Usage = func() {
			fmt.Fprintln(os.Stderr, "Usage: gridzones snapshot load <name>")
		}
		if err := fs.Parse(args[1:]); err != nil {
			if err == flag.ErrHelp {
				return 0
			}
			return 2
		}
		if fs.NArg() != 1 {
			fmt.Fprintln(os.Stderr, "snapshot load requires <name>")
			return 2
		}

		name := fs.Arg(0)
		count, err := ipc.NewClient().SnapshotLoad(name)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		cli.Successf(os.Stdout, "applied snapshot %q (%d windows placed)", name, count)
		return 0

	case "list":
		fs := flag.NewFlagSet("list", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		jsonOut := fs.Bool("json", false, "Output snapshots as JSON")
		if err := fs.Parse(args[1:]); err != nil {
			if err == flag.ErrHelp {
				return 0
			}
			return 2
		}

		infos, err := ipc.NewClient().SnapshotList()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if *jsonOut {
			return printJSON(infos)
		}
		cli.RenderSnapshots(os.Stdout, infos)
		return 0

	case "delete":
		fs := flag.NewFlagSet("delete", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		fs.Usage = func() {
			fmt.Fprintln(os.Stderr, "Usage: gridzones snapshot delete <name>")
		}
		if err := fs.Parse(args[1:]); err != nil {
			if err == flag.ErrHelp {
				return 0
			}
			return 2
		}
		if fs.NArg() != 1 {
			fmt.Fprintln(os.Stderr, "snapshot delete requires <name>")
			return 2
		}

		// Deletion is a plain file operation; no daemon required.
		store, err := snapshot.NewStore("")
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		name := fs.Arg(0)
		if err := store.Delete(name); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		cli.Successf(os.Stdout, "deleted snapshot %q", name)
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown snapshot command: %s\n\n", args[0])
		printSnapshotUsage(os.Stderr)
		return 2
	}
}
