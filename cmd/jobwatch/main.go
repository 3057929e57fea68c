// Command jobwatch is a terminal view of the job dashboard. It polls the
// backend directly through the shared view-model library, renders the job
// table, dispatches cancel/retry, and can register an account with live
// availability checking.
//
// Usage:
//
//	jobwatch [flags] watch
//	jobwatch [flags] cancel <job-id>
//	jobwatch [flags] retry <job-id>
//	jobwatch [flags] register
//	jobwatch [flags] logout
package main

import (
	"fmt"
	"os"

	"github.com/jonesrussell/north-cloud/dashboard/internal/session"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	app, args, err := newApp()
	if err != nil {
		return err
	}

	cmd := "watch"
	if len(args) > 0 {
		cmd = args[0]
	}

	switch cmd {
	case "watch":
		return app.watch()
	case "cancel":
		if len(args) < 2 {
			return fmt.Errorf("usage: jobwatch cancel <job-id>")
		}
		return app.cancel(args[1])
	case "retry":
		if len(args) < 2 {
			return fmt.Errorf("usage: jobwatch retry <job-id>")
		}
		return app.retry(args[1])
	case "register":
		return app.register()
	case "logout":
		if err := app.tokens.Clear(); err != nil {
			return err
		}
		fmt.Println("Logged out.")
		return nil
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// loadSession returns the stored session, or nil when not logged in.
func loadSession(tokens *session.TokenFile) *session.Session {
	s, err := tokens.Load()
	if err != nil {
		return nil
	}
	return s
}
