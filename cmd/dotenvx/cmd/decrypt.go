package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/linux-china/dotenvx-go/internal/crypto"
	"github.com/linux-china/dotenvx-go/internal/envfile"
	"github.com/linux-china/dotenvx-go/internal/envops"
)

var decryptCmd = &cobra.Command{
	Use:   "decrypt [value]",
	Short: "Decrypt a dotenv file (or a single encrypted value)",
	Long: `Rewrite every encrypted value back to plaintext with the private key.
With a literal "encrypted:..." argument, decrypt just that value and print
it. --verify only asserts the file signature.

Examples:
  dotenvx decrypt
  dotenvx -p prod decrypt --stdout --format shell
  dotenvx decrypt --keys "*TOKEN*"
  dotenvx decrypt encrypted:BDqDBibm4wsYqMC...
  dotenvx decrypt --verify`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDecrypt,
}

func init() {
	decryptCmd.Flags().StringSlice("keys", nil, "decrypt only keys matching these glob patterns")
	decryptCmd.Flags().Bool("verify", false, "only verify the file signature")
	decryptCmd.Flags().String("file", "", "dotenv file to decrypt (default per profile)")
	decryptCmd.Flags().Bool("stdout", false, "print the result instead of rewriting the file")
	decryptCmd.Flags().String("format", "text", "stdout format (text, shell, json, csv, raw)")
	rootCmd.AddCommand(decryptCmd)
}

func runDecrypt(cmd *cobra.Command, args []string) error {
	resolver := newResolver()

	// A bare encrypted token decrypts directly.
	if len(args) == 1 && crypto.IsEncrypted(args[0]) {
		value, err := envops.DecryptToken(resolver, profileFlag, args[0])
		if err != nil {
			return err
		}
		fmt.Println(value)
		return nil
	}

	path, _ := cmd.Flags().GetString("file")
	if path == "" {
		path = envFileArg(args)
	}
	if verify, _ := cmd.Flags().GetBool("verify"); verify {
		if err := envops.VerifyFile(resolver, path); err != nil {
			return err
		}
		printSuccess("✔ signature is valid (%s)", path)
		return nil
	}

	keys, _ := cmd.Flags().GetStringSlice("keys")
	stdout, _ := cmd.Flags().GetBool("stdout")
	format, _ := cmd.Flags().GetString("format")

	if stdout && format != "text" {
		res, err := envops.DecryptFile(resolver, path, envops.Options{Keys: keys, Stdout: true})
		if err != nil {
			return err
		}
		doc, err := envfile.Parse(filepath.Base(path), res.Content)
		if err != nil {
			return err
		}
		return emitEntries(os.Stdout, doc.Entries(), format)
	}

	res, err := envops.DecryptFile(resolver, path, envops.Options{Keys: keys, Stdout: stdout})
	if err != nil {
		return err
	}
	if stdout {
		fmt.Print(res.Content)
		return nil
	}
	if !res.Changed {
		printSuccess("✔ no changes (%s)", path)
		return nil
	}
	printSuccess("✔ decrypted (%s)", path)
	return nil
}
