package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"agency/internal/errors"
)

// Supported subcommands:
// - login:  Exchange credentials for a session token and keep it on disk
// - logout: Forget the stored session
// - whoami: Print the identity in the stored token
// - list:   List a content collection
// - theme:  Print or toggle the stored theme preference

const defaultBackendURL = "http://localhost:5000/api"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type commonFlags struct {
	backend *string
	storage *string
	timeout *time.Duration
}

func registerCommon(cmd *flag.FlagSet) commonFlags {
	backendURL := os.Getenv("AGENCY_BACKEND_URL")
	if backendURL == "" {
		backendURL = defaultBackendURL
	}

	return commonFlags{
		backend: cmd.String("backend", backendURL, "Base URL of the content API"),
		storage: cmd.String("storage", "", "Session file (default: user config dir)"),
		timeout: cmd.Duration("timeout", 30*time.Second, "Backend request timeout"),
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) < 1 {
		printUsage(out)

		return errors.New("missing subcommand")
	}

	cmd := flag.NewFlagSet(args[0], flag.ContinueOnError)
	cmd.SetOutput(out)
	common := registerCommon(cmd)

	switch args[0] {
	case "login":
		email := cmd.String("email", "", "Account email")
		password := cmd.String("password", "", "Account password")
		if err := cmd.Parse(args[1:]); err != nil {
			return errors.Wrap(err, "failed to parse login flags")
		}
		if *email == "" || *password == "" {
			return errors.New("--email and --password are required for login")
		}

		return withSession(common, out, func(s *session) error {
			return s.login(ctx, *email, *password)
		})
	case "logout":
		if err := cmd.Parse(args[1:]); err != nil {
			return errors.Wrap(err, "failed to parse logout flags")
		}

		return withSession(common, out, func(s *session) error {
			return s.logout()
		})
	case "whoami":
		if err := cmd.Parse(args[1:]); err != nil {
			return errors.Wrap(err, "failed to parse whoami flags")
		}

		return withSession(common, out, func(s *session) error {
			return s.whoami()
		})
	case "list":
		resource := cmd.String("resource", "blog", "Collection to list (blog, client, team, work, journey)")
		kind := cmd.String("kind", "", "Journey kind (experience, skill, education)")
		if err := cmd.Parse(args[1:]); err != nil {
			return errors.Wrap(err, "failed to parse list flags")
		}

		return withSession(common, out, func(s *session) error {
			return s.list(ctx, *resource, *kind)
		})
	case "theme":
		toggle := cmd.Bool("toggle", false, "Flip between dark and light")
		if err := cmd.Parse(args[1:]); err != nil {
			return errors.Wrap(err, "failed to parse theme flags")
		}

		return withSession(common, out, func(s *session) error {
			return s.showTheme(*toggle)
		})
	default:
		printUsage(out)

		return errors.Errorf("unknown subcommand %q", args[0])
	}
}

func withSession(common commonFlags, out io.Writer, fn func(*session) error) error {
	s, err := newSession(*common.backend, *common.storage, *common.timeout, out)
	if err != nil {
		return err
	}

	return fn(s)
}

func printUsage(out io.Writer) {
	fmt.Fprintln(out, "Usage: agencyctl <command> [options]")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  login     Log in and keep the session on disk")
	fmt.Fprintln(out, "  logout    Forget the stored session")
	fmt.Fprintln(out, "  whoami    Print the identity of the stored session")
	fmt.Fprintln(out, "  list      List a content collection")
	fmt.Fprintln(out, "  theme     Print or toggle the theme preference")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Use 'agencyctl <command> -h' for more information about a command.")
}
