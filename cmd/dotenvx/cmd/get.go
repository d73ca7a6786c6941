package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/linux-china/dotenvx-go/internal/crypto"
	"github.com/linux-china/dotenvx-go/internal/envops"
)

var getCmd = &cobra.Command{
	Use:   "get [key] [value]",
	Short: "Return one decrypted credential, or the whole set",
	Long: `Look a key up in the dotenv file and decrypt it when needed. With a
literal encrypted value as second argument, decrypt that instead. With no
key, emit the whole decrypted set.

Examples:
  dotenvx get API_TOKEN
  dotenvx -p prod get API_TOKEN
  dotenvx get API_TOKEN encrypted:BDqDBibm4wsY...
  dotenvx get --format json`,
	Args: cobra.MaximumNArgs(2),
	RunE: runGet,
}

func init() {
	getCmd.Flags().String("file", "", "dotenv file to read (default per profile)")
	getCmd.Flags().String("format", "text", "output format (text, shell, json, csv, raw)")
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	resolver := newResolver()
	format, _ := cmd.Flags().GetString("format")
	path, _ := cmd.Flags().GetString("file")
	if path == "" {
		path = envFileArg(nil)
	}

	if len(args) == 0 {
		entries, err := envops.ReadDecrypted(resolver, path)
		if err != nil {
			return err
		}
		return emitEntries(os.Stdout, entries, format)
	}

	key := args[0]
	if len(args) == 2 && crypto.IsEncrypted(args[1]) {
		value, err := envops.DecryptToken(resolver, profileFlag, args[1])
		if err != nil {
			return err
		}
		return emitValue(os.Stdout, key, value, format)
	}

	value, err := envops.Get(resolver, path, key)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("dotenvx: key %q not found in %s", key, path)
	}
	if err != nil {
		return err
	}
	return emitValue(os.Stdout, key, value, format)
}
