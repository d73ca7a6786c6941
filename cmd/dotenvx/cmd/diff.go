package cmd

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/linux-china/dotenvx-go/internal/envops"
)

var diffCmd = &cobra.Command{
	Use:   "diff <key[,key...]>",
	Short: "Compare keys across the dotenv files in this directory",
	Long: `For every .env* file in the current directory (excluding .env.keys and
.env.vault), print one row with the decrypted values of the given keys.

Examples:
  dotenvx diff DB_URL
  dotenvx diff DB_URL,API_TOKEN --format csv`,
	Args: cobra.ExactArgs(1),
	RunE: runDiff,
}

func init() {
	diffCmd.Flags().String("format", "table", "output format (table, csv)")
	rootCmd.AddCommand(diffCmd)
}

func runDiff(cmd *cobra.Command, args []string) error {
	var keys []string
	for _, key := range strings.Split(args[0], ",") {
		if key = strings.TrimSpace(key); key != "" {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return errors.New("dotenvx: no keys to compare")
	}
	rows, err := envops.Diff(newResolver(), ".", keys)
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")
	header := append([]string{"PROFILE"}, keys...)
	if format == "csv" {
		cw := csv.NewWriter(os.Stdout)
		if err := cw.Write(header); err != nil {
			return err
		}
		for _, row := range rows {
			if err := cw.Write(append([]string{row.Profile}, row.Values...)); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	}
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(header, "\t"))
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(append([]string{row.Profile}, row.Values...), "\t"))
	}
	return w.Flush()
}
