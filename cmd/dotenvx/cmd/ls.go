package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/linux-china/dotenvx-go/internal/envops"
)

var lsCmd = &cobra.Command{
	Use:   "ls [directory]",
	Short: "List dotenv files with their key and signature status",
	Long: `Enumerate the dotenv files under a directory (depth-limited), showing
each file's UUID, entry count, public key and signature status.

Examples:
  dotenvx ls
  dotenvx -p prod ls ./deploy`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLs,
}

func init() {
	lsCmd.Flags().Int("max-depth", 0, "directory depth limit (default 3)")
	rootCmd.AddCommand(lsCmd)
}

func runLs(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	maxDepth, _ := cmd.Flags().GetInt("max-depth")
	infos, err := envops.ListFiles(newResolver(), dir, profileFlag, maxDepth)
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Printf("No .env files found in directory: %s\n", dir)
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PATH\tUUID\tENTRIES\tPUBLIC KEY\tSIGNED\tVERIFIED")
	for _, info := range infos {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\n",
			info.Path,
			orNA(info.UUID),
			info.Entries,
			orNA(info.PublicKey),
			yesNo(info.Signed),
			verifiedLabel(info),
		)
	}
	return w.Flush()
}

func orNA(value string) string {
	if value == "" {
		return "N/A"
	}
	return value
}

func yesNo(value bool) string {
	if value {
		return "Yes"
	}
	return "No"
}

func verifiedLabel(info envops.FileInfo) string {
	if !info.Signed {
		return "N/A"
	}
	if info.Verified {
		return "Yes"
	}
	return "Fail"
}
