package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/linux-china/dotenvx-go/internal/envops"
	"github.com/linux-china/dotenvx-go/internal/keyring"
)

var initCmd = &cobra.Command{
	Use:   "init [file]",
	Short: "Create a dotenv file with a fresh key pair",
	Long: `Generate a new key pair and create the dotenv file with a public-key
header and one sample entry. The private key is written to .env.keys and
recorded in the global keystore.

Examples:
  dotenvx init
  dotenvx init .env.prod
  dotenvx init --global
  dotenvx init --stdout`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().Bool("global", false, "provision $HOME/.env.keys with one pair per canonical profile")
	initCmd.Flags().Bool("stdout", false, "only print a generated pair, write nothing")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	if stdout, _ := cmd.Flags().GetBool("stdout"); stdout {
		pair, err := keyring.Generate(profileFlag)
		if err != nil {
			return err
		}
		fmt.Printf("%s:  %s\n", color.GreenString("Public Key"), pair.PublicKey)
		fmt.Printf("%s: %s\n", color.RedString("Private Key"), pair.PrivateKey)
		return nil
	}
	resolver := newResolver()
	if global, _ := cmd.Flags().GetBool("global"); global {
		created, err := envops.InitGlobal(resolver)
		if err != nil {
			return err
		}
		if len(created) == 0 {
			printSuccess("✔ no changes (%s)", keyring.KeysFileName)
			return nil
		}
		for _, pair := range created {
			fmt.Printf("%s: %s\n", pair.Profile, pair.PublicKey)
		}
		printSuccess("✔ provisioned %d key pairs in $HOME/%s", len(created), keyring.KeysFileName)
		return nil
	}
	path := envFileArg(args)
	pair, err := envops.InitFile(resolver, path)
	if err != nil {
		return err
	}
	printSuccess("✔ initialized %s (public key %s)", path, pair.PublicKey[:8]+"...")
	return nil
}
