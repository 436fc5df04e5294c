package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL needs.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	helpText() string
	Status(ctx context.Context) error
	Discord(ctx context.Context) error
	Twitter(ctx context.Context) error
	Verify(ctx context.Context) error
	Wallet(ctx context.Context) error
	Submit(ctx context.Context) error
	Returning(ctx context.Context) error
	Claim(ctx context.Context) error
	Clear(ctx context.Context) error
	Resume(ctx context.Context, rawURL string) error
}

// runREPL reads commands line by line and dispatches them to a.
//
// Commands:
//
//	help              show the commands available in the current phase
//	status | s        print the session table
//	discord           open the Discord authorize page
//	twitter           open the Twitter authorize page
//	verify            check the linked accounts against the allow list
//	wallet            request an account from the wallet
//	submit            submit the connected wallet
//	returning         check a wallet that was allow-listed before
//	claim             open the boarding pass page
//	clear             forget saved progress
//	resume <url>      apply a redirect URL pasted from the browser
//	exit | quit       leave the program
//
// Handlers report their own errors, so the loop ignores them. It returns
// on scanner EOF, on exit, or when ctx is done.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("bp %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			printlnFn(a.helpText())

		case "s", "status":
			_ = a.Status(ctx)

		case "discord":
			_ = a.Discord(ctx)

		case "twitter":
			_ = a.Twitter(ctx)

		case "verify":
			_ = a.Verify(ctx)

		case "wallet":
			_ = a.Wallet(ctx)

		case "submit":
			_ = a.Submit(ctx)

		case "returning":
			_ = a.Returning(ctx)

		case "claim":
			_ = a.Claim(ctx)

		case "clear":
			_ = a.Clear(ctx)

		case "resume":
			if len(parts) < 2 {
				printlnFn("Usage: resume <redirect url>")
				continue
			}
			_ = a.Resume(ctx, parts[1])

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
