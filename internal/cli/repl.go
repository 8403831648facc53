package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// errQuit ends the REPL from inside a command (e.g. the journal locked itself).
var errQuit = errors.New("quit")

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	Add(ctx context.Context) error
	List(ctx context.Context) error
	Tag(ctx context.Context, tag string) error
	Tags(ctx context.Context) error
	Date(ctx context.Context, day string) error
	Dates(ctx context.Context) error
	Delete(ctx context.Context, id string) error
	Export(ctx context.Context) error
	Import(ctx context.Context, path string) error
	ToggleShowTags(ctx context.Context) error
	Passcode(ctx context.Context, sub string) error
	Security(ctx context.Context) error
	Lock(ctx context.Context) error
}

const helpText = "Available commands: add, (l)ist, tag <t>, tags, date <YYYY-MM-DD>, dates, delete <id>, " +
	"export, import <path>, showtags, passcode set|change|reset, security, lock, exit"

// runREPL reads a line from reader, parses the first token as the command
// and dispatches to a. Commands that prompt read from the same reader.
// Handlers report their own errors; the loop only stops on EOF,
// "exit"/"quit" or errQuit.
func runREPL(ctx context.Context, a execIface, reader *bufio.Reader) {
	for {
		printlnFn("chronochat> ")
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		line = strings.TrimSpace(line)
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		arg := strings.TrimSpace(strings.TrimPrefix(line, cmd))

		err = nil
		switch cmd {
		case "help":
			printlnFn(helpText)
		case "add":
			err = a.Add(ctx)
		case "l", "list":
			err = a.List(ctx)
		case "tag":
			if arg == "" {
				printlnFn("Usage: tag <tag>")
				continue
			}
			err = a.Tag(ctx, arg)
		case "tags":
			err = a.Tags(ctx)
		case "date":
			if arg == "" {
				printlnFn("Usage: date <YYYY-MM-DD>")
				continue
			}
			err = a.Date(ctx, arg)
		case "dates":
			err = a.Dates(ctx)
		case "delete":
			if arg == "" {
				printlnFn("Usage: delete <id>")
				continue
			}
			err = a.Delete(ctx, arg)
		case "export":
			err = a.Export(ctx)
		case "import":
			err = a.Import(ctx, arg)
		case "showtags":
			err = a.ToggleShowTags(ctx)
		case "passcode":
			err = a.Passcode(ctx, arg)
		case "security":
			err = a.Security(ctx)
		case "lock":
			err = a.Lock(ctx)
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}

		if errors.Is(err, errQuit) {
			return
		}
		if err != nil {
			printlnFn("Error:", err)
		}
	}
}
