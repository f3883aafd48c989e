package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path"
	"syscall"

	"gitlab.com/ketan-sonar/png-hack-go/internal/commands"
	"gitlab.com/ketan-sonar/png-hack-go/internal/config"
	"gitlab.com/ketan-sonar/png-hack-go/internal/png"
)

// Exit codes.
const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

func main() {
	os.Exit(Run(os.Args, os.Stdout, os.Stderr))
}

// Run is the entrypoint for testing.
func Run(args []string, stdout, stderr io.Writer) int {
	program := "pngme"
	if len(args) > 0 {
		program = path.Base(args[0])
	}
	if len(args) < 2 {
		usage(stderr, program)
		return exitUsage
	}

	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}
	logger := cfg.NewLogger(stderr)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := commands.NewRunner(cfg, logger)

	switch args[1] {
	case "encode":
		return runEncodeCmd(ctx, r, args[2:], stdout, stderr)
	case "decode":
		return runDecodeCmd(ctx, r, args[2:], stdout, stderr)
	case "remove":
		return runRemoveCmd(ctx, r, args[2:], stdout, stderr)
	case "print":
		return runPrintCmd(ctx, r, args[2:], stdout, stderr)
	case "help", "-h", "--help":
		usage(stdout, program)
		return exitOK
	default:
		_, _ = fmt.Fprintf(stderr, "Unknown command: %s\n", args[1])
		usage(stderr, program)
		return exitUsage
	}
}

func usage(w io.Writer, program string) {
	_, _ = fmt.Fprintf(w, "Usage: %s <command> [flags] <args>\n", program)
	_, _ = fmt.Fprintln(w, "\nCommands:")
	_, _ = fmt.Fprintln(w, "  encode [-o out.png] [-before TYPE] <file.png> <chunk_type> <message>")
	_, _ = fmt.Fprintln(w, "                                 Hide a message in a new chunk")
	_, _ = fmt.Fprintln(w, "  decode <file.png> [chunk_type]  Print the message stored in a chunk")
	_, _ = fmt.Fprintln(w, "  remove <file.png> [chunk_type]  Remove the first chunk of a type")
	_, _ = fmt.Fprintln(w, "  print <file.png>                List every chunk in the file")
}

// runEncodeCmd implements `pngme encode`.
//
// Exit codes:
//
//	0 = message written
//	1 = file or codec error
//	2 = usage error
func runEncodeCmd(ctx context.Context, r *commands.Runner, args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("encode", flag.ContinueOnError)
	cmd.SetOutput(stderr)

	var output, before string
	cmd.StringVar(&output, "o", "", "Write the result to this file instead of the input")
	cmd.StringVar(&before, "before", "", "Insert ahead of the first chunk of this type (e.g. IEND)")

	if err := cmd.Parse(args); err != nil {
		return exitUsage
	}
	if cmd.NArg() < 3 {
		_, _ = fmt.Fprintln(stderr, "Usage: pngme encode [-o out.png] [-before TYPE] <file.png> <chunk_type> <message>")
		return exitUsage
	}
	// the output file may also be given as a trailing positional
	if cmd.NArg() > 3 && output == "" {
		output = cmd.Arg(3)
	}

	written, err := r.Encode(ctx, commands.EncodeOptions{
		Path:      cmd.Arg(0),
		ChunkType: cmd.Arg(1),
		Message:   cmd.Arg(2),
		Output:    output,
		Before:    before,
	})
	if err != nil {
		return fail(stderr, err)
	}

	if written != cmd.Arg(0) {
		_, _ = fmt.Fprintln(stdout, "New file has been created and message encoded successfully!")
	} else {
		_, _ = fmt.Fprintln(stdout, "Message encoded successfully!")
	}
	return exitOK
}

// runDecodeCmd implements `pngme decode`. A file without the chunk is not an error.
func runDecodeCmd(ctx context.Context, r *commands.Runner, args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("decode", flag.ContinueOnError)
	cmd.SetOutput(stderr)
	if err := cmd.Parse(args); err != nil {
		return exitUsage
	}
	if cmd.NArg() < 1 {
		_, _ = fmt.Fprintln(stderr, "Usage: pngme decode <file.png> [chunk_type]")
		return exitUsage
	}

	msg, found, err := r.Decode(ctx, cmd.Arg(0), cmd.Arg(1))
	if err != nil {
		return fail(stderr, err)
	}
	if !found {
		_, _ = fmt.Fprintln(stdout, "No message hidden in this image with this chunk type")
		return exitOK
	}
	_, _ = fmt.Fprintf(stdout, "Message: %q\n", msg)
	return exitOK
}

func runRemoveCmd(ctx context.Context, r *commands.Runner, args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("remove", flag.ContinueOnError)
	cmd.SetOutput(stderr)
	if err := cmd.Parse(args); err != nil {
		return exitUsage
	}
	if cmd.NArg() < 1 {
		_, _ = fmt.Fprintln(stderr, "Usage: pngme remove <file.png> [chunk_type]")
		return exitUsage
	}

	if _, err := r.Remove(ctx, cmd.Arg(0), cmd.Arg(1)); err != nil {
		return fail(stderr, err)
	}
	_, _ = fmt.Fprintln(stdout, "Message has been removed successfully!")
	return exitOK
}

func runPrintCmd(ctx context.Context, r *commands.Runner, args []string, stdout, stderr io.Writer) int {
	cmd := flag.NewFlagSet("print", flag.ContinueOnError)
	cmd.SetOutput(stderr)
	if err := cmd.Parse(args); err != nil {
		return exitUsage
	}
	if cmd.NArg() < 1 {
		_, _ = fmt.Fprintln(stderr, "Usage: pngme print <file.png>")
		return exitUsage
	}

	if err := r.Print(ctx, cmd.Arg(0), stdout); err != nil {
		return fail(stderr, err)
	}
	return exitOK
}

// fail reports err and picks the exit code. A bad type code is a usage mistake.
func fail(stderr io.Writer, err error) int {
	_, _ = fmt.Fprintf(stderr, "An error occurred: %v\n", err)
	if errors.Is(err, png.ErrInvalidChunkType) || errors.Is(err, commands.ErrNotPNG) {
		return exitUsage
	}
	return exitFail
}
