package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a
// lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	EnableOTP(ctx context.Context) error
	List(ctx context.Context) error
	Upload(ctx context.Context) error
	Download(ctx context.Context) error
	Delete(ctx context.Context) error
	Share(ctx context.Context) error
	SharedWithMe(ctx context.Context) error
	Link(ctx context.Context) error
	Links(ctx context.Context) error
	Unlink(ctx context.Context) error
	Resolve(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Any errors returned by command handlers are ignored here; handlers print
// their own errors. This keeps the loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner, w io.Writer) {
	for {
		fmt.Fprintf(w, "fs> %s > \n", statusFn())
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(w, "Available commands: (l)ist, upload, download, delete, share, shared, link, links, unlink, resolve, otp, logout, exit")
			} else {
				fmt.Fprintln(w, "Available commands: register, login, resolve, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "otp":
			_ = a.EnableOTP(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "upload":
			_ = a.Upload(ctx)

		case "download":
			_ = a.Download(ctx)

		case "delete":
			_ = a.Delete(ctx)

		case "share":
			_ = a.Share(ctx)

		case "shared":
			_ = a.SharedWithMe(ctx)

		case "link":
			_ = a.Link(ctx)

		case "links":
			_ = a.Links(ctx)

		case "unlink":
			_ = a.Unlink(ctx)

		case "resolve":
			_ = a.Resolve(ctx)

		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return

		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}
	}
}
