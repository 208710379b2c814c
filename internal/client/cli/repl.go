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
	isAuthenticated() bool
	Go(ctx context.Context, args []string) error
	Login(ctx context.Context) error
	OTP(ctx context.Context, args []string) error
	TOTP(ctx context.Context) error
	OTPStatus(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	List(ctx context.Context) error
	Show(ctx context.Context, args []string) error
	Add(ctx context.Context, args []string) error
	Edit(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Stats(ctx context.Context) error
	Export(ctx context.Context, args []string) error
	Return(ctx context.Context, args []string) error
	Logout(ctx context.Context) error
	ClearPending(ctx context.Context) error
}

const (
	helpAnonymous = "Available commands: login, otp <code>, cancel, go <path>, exit"
	helpSignedIn  = "Available commands: go <path>, list, show <id>, add name=value..., edit <id> name=value..., " +
		"delete <id>, stats, export [excel|word], return <id>, profile, otp <code>, totp, otpstatus, logout, exit"
)

// runREPL starts a simple read–eval–print loop for the library client.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Unknown commands are reported back to the
// user. The loop exits on EOF, on cancellation of ctx, or when the user
// types "exit" or "quit".
//
// Commands that act on records (list, show, add, edit, delete, stats,
// export) use the collection of the current view; "go /books" first.
//
// Errors returned by command handlers are ignored here; handlers report
// their own errors as notifications.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("lib %s > ", statusFn()))
		line, ok := readLine(reader)
		if !ok {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isAuthenticated() {
				printlnFn(helpSignedIn)
			} else {
				printlnFn(helpAnonymous)
			}

		case "go", "cd":
			_ = a.Go(ctx, args)

		case "login":
			_ = a.Login(ctx)

		case "otp":
			_ = a.OTP(ctx, args)

		case "totp":
			_ = a.TOTP(ctx)

		case "otpstatus":
			_ = a.OTPStatus(ctx)

		case "whoami", "profile":
			_ = a.WhoAmI(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "show":
			_ = a.Show(ctx, args)

		case "add":
			_ = a.Add(ctx, args)

		case "edit":
			_ = a.Edit(ctx, args)

		case "delete", "rm":
			_ = a.Delete(ctx, args)

		case "stats":
			_ = a.Stats(ctx)

		case "export":
			_ = a.Export(ctx, args)

		case "return":
			_ = a.Return(ctx, args)

		case "logout":
			_ = a.Logout(ctx)

		case "cancel", "reset":
			_ = a.ClearPending(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
