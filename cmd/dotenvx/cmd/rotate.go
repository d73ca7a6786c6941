package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/linux-china/dotenvx-go/internal/envops"
)

var rotateCmd = &cobra.Command{
	Use:   "rotate [file]",
	Short: "Rotate the file's key pair and re-encrypt its values",
	Long: `Decrypt every encrypted entry, generate a fresh key pair, rewrite the
public-key header and the keystore, and re-encrypt exactly the entries
that were encrypted before.

Examples:
  dotenvx rotate
  dotenvx rotate .env.prod`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRotate,
}

func init() {
	rotateCmd.Flags().Bool("stdout", false, "print the result instead of rewriting the file")
	rootCmd.AddCommand(rotateCmd)
}

func runRotate(cmd *cobra.Command, args []string) error {
	path := envFileArg(args)
	stdout, _ := cmd.Flags().GetBool("stdout")
	res, err := envops.Rotate(newResolver(), path, envops.Options{Stdout: stdout})
	if err != nil {
		return err
	}
	if stdout {
		fmt.Print(res.Content)
		return nil
	}
	printSuccess("✔ rotated (%s)", path)
	return nil
}
