package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/linux-china/dotenvx-go/internal/envops"
)

var encryptCmd = &cobra.Command{
	Use:   "encrypt [file]",
	Short: "Encrypt the plain values of a dotenv file in place",
	Long: `Replace every plain value with an ECIES ciphertext under the file's
public key, preserving comments, blank lines and ordering. A file without
a key pair gets one generated on first use.

Examples:
  dotenvx encrypt
  dotenvx encrypt .env.prod --sign
  dotenvx encrypt --keys "*TOKEN*" --keys "*PASSWORD*"
  dotenvx encrypt --stdout`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEncrypt,
}

func init() {
	encryptCmd.Flags().StringSlice("keys", nil, "encrypt only keys matching these glob patterns")
	encryptCmd.Flags().Bool("sign", false, "maintain the front-matter signature")
	encryptCmd.Flags().Bool("stdout", false, "print the result instead of rewriting the file")
	rootCmd.AddCommand(encryptCmd)
}

func runEncrypt(cmd *cobra.Command, args []string) error {
	path := envFileArg(args)
	keys, _ := cmd.Flags().GetStringSlice("keys")
	sign, _ := cmd.Flags().GetBool("sign")
	stdout, _ := cmd.Flags().GetBool("stdout")

	res, err := envops.EncryptFile(newResolver(), path, envops.Options{
		Keys:   keys,
		Sign:   sign,
		Stdout: stdout,
	})
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
	printSuccess("✔ encrypted (%s)", path)
	return nil
}
