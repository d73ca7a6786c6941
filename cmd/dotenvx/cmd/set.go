package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/linux-china/dotenvx-go/internal/envops"
)

var setCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a single credential",
	Long: `Add or replace one entry, preserving the file layout. The value is
encrypted under the file's public key unless --plain is given or an
existing file stores no encrypted entries yet; a new file gets it
encrypted. Use "-" to read the value from stdin.

Examples:
  dotenvx set API_TOKEN tok-123
  dotenvx set DB_PASSWORD - < password.txt
  dotenvx set GREETING "hello world" --plain
  dotenvx set API_TOKEN tok-123 --stdout`,
	Args: cobra.ExactArgs(2),
	RunE: runSet,
}

func init() {
	setCmd.Flags().Bool("encrypt", false, "force encryption of the value")
	setCmd.Flags().Bool("plain", false, "store the value as plain text")
	setCmd.Flags().String("file", "", "dotenv file to modify (default per profile)")
	setCmd.Flags().Bool("stdout", false, "print the result instead of rewriting the file")
	rootCmd.AddCommand(setCmd)
}

func runSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]
	if value == "-" {
		input, err := io.ReadAll(os.Stdin)
		if err != nil {
			return err
		}
		value = strings.TrimSpace(string(input))
	}

	encryptFlag, _ := cmd.Flags().GetBool("encrypt")
	plainFlag, _ := cmd.Flags().GetBool("plain")
	if encryptFlag && plainFlag {
		return errors.New("dotenvx: --encrypt and --plain are mutually exclusive")
	}
	mode := envops.SetAuto
	if encryptFlag {
		mode = envops.SetEncrypted
	}
	if plainFlag {
		mode = envops.SetPlain
	}

	path, _ := cmd.Flags().GetString("file")
	if path == "" {
		path = envFileArg(nil)
	}
	stdout, _ := cmd.Flags().GetBool("stdout")
	res, err := envops.Set(newResolver(), path, key, value, mode, envops.Options{Stdout: stdout})
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
	printSuccess("✔ set %s (%s)", key, path)
	return nil
}
