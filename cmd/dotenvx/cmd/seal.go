package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/linux-china/dotenvx-go/internal/crypto"
	"github.com/linux-china/dotenvx-go/internal/keyring"
)

// SealedKeysFileName is the at-rest form of $HOME/.env.keys.
const SealedKeysFileName = ".env.keys.aes"

var sealCmd = &cobra.Command{
	Use:   "seal",
	Short: "Encrypt $HOME/.env.keys with a password",
	Long: `Wrap the global private-key file with an AES-256-GCM key derived from
an interactively entered password (Argon2id), writing $HOME/.env.keys.aes
and deleting the plaintext.`,
	RunE: runSeal,
}

var unsealCmd = &cobra.Command{
	Use:   "unseal",
	Short: "Restore $HOME/.env.keys from its sealed form",
	Long: `Decrypt $HOME/.env.keys.aes back to $HOME/.env.keys. The sealed file
is kept.`,
	RunE: runUnseal,
}

func init() {
	rootCmd.AddCommand(sealCmd)
	rootCmd.AddCommand(unsealCmd)
}

func runSeal(cmd *cobra.Command, args []string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	plainPath := filepath.Join(home, keyring.KeysFileName)
	if _, err := os.Stat(plainPath); err != nil {
		return fmt.Errorf("dotenvx: nothing to seal, %s does not exist", plainPath)
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}
	confirm, err := promptPassword("Confirm password: ")
	if err != nil {
		return err
	}
	if string(password) != string(confirm) {
		return errors.New("dotenvx: passwords do not match")
	}
	sealedPath := filepath.Join(home, SealedKeysFileName)
	if err := crypto.SealFile(plainPath, sealedPath, password); err != nil {
		return err
	}
	if err := os.Remove(plainPath); err != nil {
		return err
	}
	printSuccess("✔ sealed %s", sealedPath)
	return nil
}

func runUnseal(cmd *cobra.Command, args []string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	sealedPath := filepath.Join(home, SealedKeysFileName)
	if _, err := os.Stat(sealedPath); err != nil {
		return fmt.Errorf("dotenvx: nothing to unseal, %s does not exist", sealedPath)
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}
	plainPath := filepath.Join(home, keyring.KeysFileName)
	if err := crypto.UnsealFile(sealedPath, plainPath, password); err != nil {
		return err
	}
	printSuccess("✔ unsealed %s", plainPath)
	return nil
}

func promptPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, err
	}
	return password, nil
}
