package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Add(ctx context.Context) error
	List(ctx context.Context) error
	Show(ctx context.Context, id string) error
	Edit(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, term string) error
	Category(ctx context.Context, name string) error
	Sync(ctx context.Context) error
	Status(ctx context.Context) error
	Stats(ctx context.Context) error
	Rotate(ctx context.Context) error
}

const (
	helpLoggedOut = "Available commands: register, login, help, exit"
	helpLoggedIn  = "Available commands: add, (l)ist, show <id>, edit <id>, delete <id>, search <term>, " +
		"category <name>, sync, status, stats, rotate, logout, help, exit"
)

// runREPL starts a simple read–eval–print loop for the healthlog CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command and the rest as its argument, and dispatches to methods on 'a'.
// Commands that work on the journal are refused until the user is logged in.
// Errors returned by handlers are printed and the loop continues. The loop
// exits on scanner EOF, on ctx cancellation, or when the user types "exit"
// or "quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("hl %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		arg := strings.Join(parts[1:], " ")

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}
			continue

		case "exit", "quit":
			printlnFn("Bye!")
			return

		case "register":
			err = a.Register(ctx)

		case "login":
			err = a.Login(ctx)

		case "logout", "add", "l", "list", "show", "edit", "delete", "search", "category",
			"sync", "status", "stats", "rotate":
			if !a.isLoggedIn() {
				printlnFn("Please log in first")
				continue
			}
			err = dispatch(ctx, a, cmd, arg)

		default:
			printlnFn("Unknown command:", cmd)
			continue
		}

		if err != nil {
			printlnFn("Error:", err)
		}
	}
}

func dispatch(ctx context.Context, a execIface, cmd, arg string) error {
	needArg := func(usage string, fn func(context.Context, string) error) error {
		if arg == "" {
			printlnFn("Usage:", usage)
			return nil
		}
		return fn(ctx, arg)
	}

	switch cmd {
	case "logout":
		return a.Logout(ctx)
	case "add":
		return a.Add(ctx)
	case "l", "list":
		return a.List(ctx)
	case "show":
		return needArg("show <id>", a.Show)
	case "edit":
		return needArg("edit <id>", a.Edit)
	case "delete":
		return needArg("delete <id>", a.Delete)
	case "search":
		return needArg("search <term>", a.Search)
	case "category":
		return needArg("category <name>", a.Category)
	case "sync":
		return a.Sync(ctx)
	case "status":
		return a.Status(ctx)
	case "stats":
		return a.Stats(ctx)
	case "rotate":
		return a.Rotate(ctx)
	}
	return nil
}
