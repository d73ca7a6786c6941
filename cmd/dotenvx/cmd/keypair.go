package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/linux-china/dotenvx-go/internal/envfile"
	"github.com/linux-china/dotenvx-go/internal/keyring"
)

var keypairCmd = &cobra.Command{
	Use:   "keypair",
	Short: "Print the resolved key pair for a profile",
	Long: `Resolve the public and private key for the active profile and print
them. Keys that cannot be resolved print as empty strings; a mismatched
pair is an error.

Examples:
  dotenvx keypair
  dotenvx -p prod keypair --format shell`,
	RunE: runKeypair,
}

func init() {
	keypairCmd.Flags().String("format", "json", "output format (json, shell)")
	rootCmd.AddCommand(keypairCmd)
}

func runKeypair(cmd *cobra.Command, args []string) error {
	resolver := newResolver()
	publicKeyName := envfile.PublicKeyNameFor(profileFlag)
	privateKeyName := envfile.PrivateKeyNameFor(profileFlag)

	publicKey, _ := resolver.PublicKey(profileFlag)
	privateKey, _ := resolver.PrivateKey(profileFlag, "")
	if publicKey != "" && privateKey != "" {
		pair := keyring.KeyPair{PublicKey: publicKey, PrivateKey: privateKey}
		if err := pair.Validate(); err != nil {
			return err
		}
	}

	format, _ := cmd.Flags().GetString("format")
	if format == "shell" {
		fmt.Printf("export %s=%s\n", publicKeyName, publicKey)
		fmt.Printf("export %s=%s\n", privateKeyName, privateKey)
		return nil
	}
	out, err := json.MarshalIndent(map[string]string{
		publicKeyName:  publicKey,
		privateKeyName: privateKey,
	}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(out))
	return nil
}
