// Command makeadmin grants the admin role to an account.
//
//	makeadmin -email someone@voyana.in
//	makeadmin -email admin@voyana.in -create -name "Voyana Admin"
//
// With -create the account is created (or reset) as a verified admin and the
// password is read from ADMIN_PASSWORD or prompted for without echo.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/config"
	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/database"
	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/logging"
	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/mailer"
	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/repository"
	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/security"
	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/services"
	"github.com/ahmetcoskunkizilkaya/voyana-api/internal/session"
	"golang.org/x/term"
)

// readPassword is swapped in tests to avoid touching the terminal.
var readPassword = term.ReadPassword

type options struct {
	email  string
	name   string
	create bool
}

func main() {
	var opts options
	flag.StringVar(&opts.email, "email", "", "email of the account to promote")
	flag.StringVar(&opts.name, "name", "Voyana Admin", "display name when creating the account")
	flag.BoolVar(&opts.create, "create", false, "create the account if missing and reset its password")
	flag.Parse()

	cfg := config.Load()
	logging.Setup(cfg.AppEnv)

	if opts.email == "" {
		fmt.Fprintln(os.Stderr, "usage: makeadmin -email <email> [-create] [-name <name>]")
		os.Exit(2)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer database.Close(db)
	if err := database.Migrate(db); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	users := repository.NewGormUserRepository(db)
	if err := run(context.Background(), cfg, users, opts, os.Stdout); err != nil {
		slog.Error("makeadmin failed", "email", opts.email, "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, users repository.UserRepository, opts options, out io.Writer) error {
	auth := services.NewAuthService(users,
		security.NewBcryptHasher(cfg.BcryptCost),
		session.NewSigner(cfg.JWTSecret, cfg.JWTExpiresIn),
		mailer.LogSender{},
		cfg,
	)

	if !opts.create {
		user, err := services.NewUserService(users, auth).Promote(ctx, opts.email)
		if errors.Is(err, services.ErrUserNotFound) {
			return fmt.Errorf("no account with email %s; pass -create to create it", opts.email)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "User %s (%s) is now an admin.\n", user.Name, user.Email)
		return nil
	}

	password, err := adminPassword(out)
	if err != nil {
		return err
	}
	user, created, err := auth.EnsureAdmin(ctx, opts.name, opts.email, password)
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(out, "Admin %s (%s) created.\n", user.Name, user.Email)
	} else {
		fmt.Fprintf(out, "Admin %s (%s) updated.\n", user.Name, user.Email)
	}
	return nil
}

func adminPassword(out io.Writer) (string, error) {
	if pw := os.Getenv("ADMIN_PASSWORD"); pw != "" {
		return pw, nil
	}
	fmt.Fprint(out, "Admin password: ")
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(pw), nil
}
