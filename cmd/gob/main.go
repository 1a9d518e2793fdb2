// Command gob packs directories into GOB archives and unpacks, lists,
// and inspects existing ones.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/opencontainers/go-digest"

	"github.com/CubesAndCubes/gob"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("gob: ")

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd, args := os.Args[1], os.Args[2:]
	var err error
	switch cmd {
	case "pack":
		err = runPack(args)
	case "unpack":
		err = runUnpack(args)
	case "list":
		err = runList(args)
	case "cat":
		err = runCat(args)
	case "info":
		err = runInfo(args)
	default:
		log.Printf("unknown command %q", cmd)
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage:
  gob pack [-v] [-workers N] [-max-files N] DIR ARCHIVE
  gob unpack [-v] [-workers N] [-overwrite] ARCHIVE DIR
  gob list [-l] [-digest] ARCHIVE
  gob cat ARCHIVE PATH
  gob info ARCHIVE`)
}

// newLogger builds the stderr logger used by -v.
func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func runPack(args []string) error {
	flags := flag.NewFlagSet("pack", flag.ExitOnError)
	verbose := flags.Bool("v", false, "log progress to stderr")
	workers := flags.Int("workers", 0, "concurrent file reads (0 reads serially)")
	maxFiles := flags.Int("max-files", 0, "fail when the directory holds more files (0 means no limit)")
	_ = flags.Parse(args) //nolint:errcheck // ExitOnError

	if flags.NArg() != 2 {
		usage()
		os.Exit(2)
	}
	dir, target := flags.Arg(0), flags.Arg(1)

	opts := []gob.ImportOption{
		gob.ImportWithWorkers(*workers),
		gob.ImportWithMaxFiles(*maxFiles),
	}
	if *verbose {
		opts = append(opts, gob.ImportWithLogger(newLogger()))
	}

	archive, err := gob.ImportDir(context.Background(), dir, opts...)
	if err != nil {
		return err
	}
	if err := archive.Save(target); err != nil {
		return err
	}
	fmt.Printf("packed %d files (%d data bytes) into %s\n", archive.Len(), archive.TotalDataSize(), target)
	return nil
}

func runUnpack(args []string) error {
	flags := flag.NewFlagSet("unpack", flag.ExitOnError)
	verbose := flags.Bool("v", false, "log progress to stderr")
	workers := flags.Int("workers", 0, "concurrent file writes (0 uses the default)")
	overwrite := flags.Bool("overwrite", false, "overwrite existing files")
	_ = flags.Parse(args) //nolint:errcheck // ExitOnError

	if flags.NArg() != 2 {
		usage()
		os.Exit(2)
	}
	source, dir := flags.Arg(0), flags.Arg(1)

	archive, err := gob.OpenFile(source)
	if err != nil {
		return err
	}

	opts := []gob.ExtractOption{gob.ExtractWithOverwrite(*overwrite)}
	if *workers > 0 {
		opts = append(opts, gob.ExtractWithWorkers(*workers))
	}
	if *verbose {
		opts = append(opts, gob.ExtractWithLogger(newLogger()))
	}

	if err := archive.Extract(context.Background(), dir, opts...); err != nil {
		return err
	}
	fmt.Printf("unpacked %d files into %s\n", archive.Len(), dir)
	return nil
}

func runList(args []string) error {
	flags := flag.NewFlagSet("list", flag.ExitOnError)
	long := flags.Bool("l", false, "include payload sizes")
	withDigest := flags.Bool("digest", false, "include payload digests")
	_ = flags.Parse(args) //nolint:errcheck // ExitOnError

	if flags.NArg() != 1 {
		usage()
		os.Exit(2)
	}

	archive, err := gob.OpenFile(flags.Arg(0))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for rec := range archive.Records() {
		switch {
		case *long && *withDigest:
			fmt.Fprintf(w, "%d\t%s\t%s\n", rec.Size(), rec.Digest(), rec.Path)
		case *long:
			fmt.Fprintf(w, "%d\t%s\n", rec.Size(), rec.Path)
		case *withDigest:
			fmt.Fprintf(w, "%s\t%s\n", rec.Digest(), rec.Path)
		default:
			fmt.Fprintln(w, rec.Path)
		}
	}
	return w.Flush()
}

func runCat(args []string) error {
	flags := flag.NewFlagSet("cat", flag.ExitOnError)
	_ = flags.Parse(args) //nolint:errcheck // ExitOnError

	if flags.NArg() != 2 {
		usage()
		os.Exit(2)
	}

	archive, err := gob.OpenFile(flags.Arg(0))
	if err != nil {
		return err
	}
	content, err := archive.ReadFile(gob.NormalizePath(flags.Arg(1)))
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(content)
	return err
}

func runInfo(args []string) error {
	flags := flag.NewFlagSet("info", flag.ExitOnError)
	_ = flags.Parse(args) //nolint:errcheck // ExitOnError

	if flags.NArg() != 1 {
		usage()
		os.Exit(2)
	}

	archive, err := gob.OpenFile(flags.Arg(0))
	if err != nil {
		return err
	}

	unique := make(map[digest.Digest]struct{}, archive.Len())
	for rec := range archive.Records() {
		unique[rec.Digest()] = struct{}{}
	}

	fmt.Printf("files:           %d\n", archive.Len())
	fmt.Printf("unique payloads: %d\n", len(unique))
	fmt.Printf("data bytes:      %d\n", archive.TotalDataSize())
	fmt.Printf("archive bytes:   %d\n", archive.SerializedSize())
	return nil
}
