package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/entrypoint"
)

// CreateAdminCommand provisions an admin account directly in the database,
// bypassing the HTTP API.
type CreateAdminCommand struct {
	Fullname string
	Email    string
	Password string

	cfg    *config.Config
	logger *zap.Logger
}

func NewCreateAdminCommand(cfg *config.Config, logger *zap.Logger) *CreateAdminCommand {
	return &CreateAdminCommand{cfg: cfg, logger: logger}
}

func (cmd *CreateAdminCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-admin", flag.ExitOnError)

	fs.StringVar(&cmd.Fullname, "name", "", "Full name of the admin (required)")
	fs.StringVar(&cmd.Email, "email", "", "Email address used to log in (required)")
	fs.StringVar(&cmd.Password, "password", os.Getenv("ADMIN_PASSWORD"), "Password, defaults to $ADMIN_PASSWORD")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-admin [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create an admin account in the configured database.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s create-admin -name \"Ada Lovelace\" -email ada@example.com -password s3cret\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  ADMIN_PASSWORD=s3cret %s create-admin -name \"Ada Lovelace\" -email ada@example.com\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Fullname == "" || cmd.Email == "" || cmd.Password == "" {
		fs.Usage()
		return fmt.Errorf("name, email and password are required")
	}

	return nil
}

func (cmd *CreateAdminCommand) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	backend, closeBackend, err := entrypoint.OpenBackend(ctx, cmd.cfg.Database, cmd.logger)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer closeBackend(ctx)

	service := auth.NewService(backend, backend, nil, nil, nil, cmd.cfg.Auth)
	user, err := service.CreateAdmin(ctx, cmd.Fullname, cmd.Email, cmd.Password)
	if err != nil {
		return err
	}

	fmt.Printf("Created admin %s <%s> with id %s\n", user.Fullname, user.Email, user.ID)
	return nil
}
