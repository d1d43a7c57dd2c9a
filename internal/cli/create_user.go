package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/mkorchagin/docforge/internal/auth"
	"github.com/mkorchagin/docforge/internal/config"
	"github.com/mkorchagin/docforge/internal/crypto"
	"github.com/mkorchagin/docforge/internal/database"
)

// CreateUserCommand registers a user and prints their API token once.
type CreateUserCommand struct {
	Username     string
	Password     string
	DatabasePath string
}

func NewCreateUserCommand() *CreateUserCommand {
	return &CreateUserCommand{}
}

func (cmd *CreateUserCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ExitOnError)

	fs.StringVar(&cmd.Username, "username", "", "Username for the new account (required)")
	fs.StringVar(&cmd.Password, "password", "", "Password for the new account (required, min 12 characters)")
	fs.StringVar(&cmd.DatabasePath, "db", "", "Path to the database file (default: from config)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-user [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create a user account and print its API token.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Username == "" || cmd.Password == "" {
		fs.Usage()
		return fmt.Errorf("username and password are required")
	}

	return nil
}

func (cmd *CreateUserCommand) Run() error {
	cfg := config.NewConfig()
	if cmd.DatabasePath != "" {
		cfg.Database.Path = cmd.DatabasePath
	}

	encryptor, err := crypto.ResolveEncryptor(cfg.Crypto.Key, cfg.Crypto.KeyFile)
	if err != nil {
		return fmt.Errorf("failed to resolve encryption key: %w", err)
	}

	db, err := database.NewDatabase(cfg.Database.Path, encryptor)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	service := auth.NewService(db, cfg.Auth)
	user, token, err := service.CreateUser(cmd.Username, cmd.Password)
	if err != nil {
		return err
	}

	fmt.Printf("Created user %s (id %d)\n", user.Username, user.ID)
	fmt.Printf("API token (shown once, store it safely):\n%s\n", token)
	return nil
}
