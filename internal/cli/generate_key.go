package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/mkorchagin/docforge/internal/crypto"
)

// GenerateKeyCommand prints a fresh base64 encryption key for the
// ENCRYPTION_KEY environment variable.
type GenerateKeyCommand struct{}

func NewGenerateKeyCommand() *GenerateKeyCommand {
	return &GenerateKeyCommand{}
}

func (cmd *GenerateKeyCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("generate-key", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s generate-key\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Generate a new AES-256 key for encrypting data source settings.\n")
	}
	return fs.Parse(args)
}

func (cmd *GenerateKeyCommand) Run() error {
	key, err := crypto.GenerateKey()
	if err != nil {
		return fmt.Errorf("failed to generate key: %w", err)
	}
	fmt.Println(key)
	return nil
}
