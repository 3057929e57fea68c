package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/jonesrussell/north-cloud/dashboard/internal/backend"
	"github.com/jonesrussell/north-cloud/dashboard/internal/register"
	"github.com/jonesrussell/north-cloud/dashboard/internal/session"
)

// register walks through account creation. Every edit of the username or
// email feeds the debounced checker, so availability is resolved while
// the user is still deciding, without one backend call per keystroke.
func (a *app) register() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	reader := bufio.NewReader(os.Stdin)

	username, err := a.promptAvailable(ctx, reader, "username", a.client.CheckUsernameAvailable)
	if err != nil {
		return err
	}

	email, err := a.promptAvailable(ctx, reader, "email", a.client.CheckEmailAvailable)
	if err != nil {
		return err
	}

	fmt.Print("password: ")
	pw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	resp, err := a.client.Register(ctx, backend.RegisterRequest{
		Username: username,
		Email:    email,
		Password: string(pw),
	})
	if err != nil {
		return describe(err)
	}

	sess, err := session.New(resp.AccessToken)
	if err != nil {
		return err
	}
	if err := a.tokens.Save(sess); err != nil {
		return err
	}

	fmt.Printf("Registered as %s. Token stored.\n", username)
	return nil
}

// promptAvailable re-prompts until an available value survives the
// debounce window.
func (a *app) promptAvailable(ctx context.Context, reader *bufio.Reader, field string, check register.CheckFunc) (string, error) {
	results := make(chan register.Result, 1)
	checker := register.NewChecker(check, func(r register.Result) {
		results <- r
	}, a.log)
	defer checker.Close()

	for {
		fmt.Printf("%s: ", field)
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("read %s: %w", field, err)
		}
		value := strings.TrimSpace(line)

		checker.Input(ctx, value)
		if len(value) < register.DefaultMinLength {
			fmt.Printf("%s must be at least %d characters\n", field, register.DefaultMinLength)
			continue
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case r := <-results:
			if r.Err != nil {
				fmt.Printf("could not check %s: %v\n", field, describe(r.Err))
				continue
			}
			if !r.Available {
				fmt.Printf("%s %q is taken\n", field, r.Value)
				continue
			}
			return r.Value, nil
		}
	}
}
