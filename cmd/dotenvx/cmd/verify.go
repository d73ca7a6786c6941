package cmd

import (
	"github.com/spf13/cobra"

	"github.com/linux-china/dotenvx-go/internal/envops"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [file]",
	Short: "Verify the file's front-matter signature",
	Long: `Extract the "# sign:" line from the front matter, recompute the signed
message, and verify it against the file's public key. Exits non-zero when
the signature is missing or invalid.

Examples:
  dotenvx verify
  dotenvx verify .env.prod`,
	Args: cobra.MaximumNArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	path := envFileArg(args)
	if err := envops.VerifyFile(newResolver(), path); err != nil {
		return err
	}
	printSuccess("✔ the file is valid (%s)", path)
	return nil
}
