// Package cmd implements the dotenvx command-line interface.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/linux-china/dotenvx-go/internal/keyring"
)

var (
	profileFlag string
	noColorFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "dotenvx",
	Short: "Encrypt, decrypt and load dotenv files",
	Long: `dotenvx manages dotenv files whose values are encrypted in place with
per-environment key pairs, so the files stay safe to commit while private
keys live in .env.keys or the global keystore.

Examples:
  dotenvx init
  dotenvx encrypt --sign
  dotenvx set API_TOKEN tok-123
  dotenvx get API_TOKEN
  dotenvx -p prod decrypt --stdout
  dotenvx rotate`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI. Every command error is caught here, printed as a
// single red line, and mapped to exit status 1.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVarP(&profileFlag, "profile", "p", "", "profile to use, such as 'dev', 'prod', or 'g_default' for a global one")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", false, "disable colored output (NO_COLOR is honored too)")
}

func initConfig() {
	if noColorFlag {
		color.NoColor = true
	}
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, keyring.StoreDirName))
	}
	viper.SetEnvPrefix("DOTENVX")
	viper.AutomaticEnv()
	viper.SetDefault("sync_ignore", true)
	_ = viper.ReadInConfig()
}

// newResolver builds the resolver every command shares, with the
// ignore-file side effect wired to configuration.
func newResolver() *keyring.Resolver {
	r := keyring.NewResolver()
	r.SyncIgnore = viper.GetBool("sync_ignore")
	return r
}

// envFileArg picks the target file: the positional argument when given,
// otherwise the profile-selected default. Global profiles resolve under
// $HOME/.dotenvx.
func envFileArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	name := ".env"
	if profileFlag != "" {
		name = ".env." + profileFlag
	}
	if keyring.IsGlobalProfile(profileFlag) {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, keyring.StoreDirName, name)
		}
	}
	return name
}

func printError(err error) {
	fmt.Fprintln(os.Stderr, color.RedString("%v", err))
}

func printSuccess(format string, args ...any) {
	fmt.Println(color.GreenString(format, args...))
}
