package main

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/celer-network/go-vault/config"
	"github.com/celer-network/go-vault/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	flagConfig    = "config"
	flagEnvFile   = "env"
	flagKey       = "key"
	flagPassword  = "password"
	flagAdmin     = "admin"
	flagUser      = "user"
	flagMint      = "mint"
	flagTo        = "to"
	flagAmount    = "amount"
	flagDecimals  = "decimals"
	flagSeed      = "seed"
	flagFeeBps    = "fee-bps"
	flagPaused    = "paused"
	flagFromSeq   = "from-seq"
	flagBeforeSeq = "before-seq"
)

var logger = log.NewLogger("vaultcli")

func main() {
	cobra.EnableCommandSorting = false
	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:           "vaultcli",
		Short:         "single-asset custodial vault",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(viper.GetString(flagEnvFile)); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			return viper.BindPFlags(cmd.Flags())
		},
	}

	rootCmd.AddCommand(
		initConfigCommand(),
		newKeyCommand(),
		airdropCommand(),
		createMintCommand(),
		createHoldingCommand(),
		mintCommand(),
		initializeCommand(),
		depositCommand(),
		requestWithdrawalCommand(),
		claimCommand(),
		pauseCommand(),
		statusCommand(),
		pruneEventsCommand(),
	)

	rootCmd.PersistentFlags().String(flagConfig, ".", "directory holding vault.yaml")
	rootCmd.PersistentFlags().String(flagEnvFile, ".env", "dotenv file loaded before reading the environment")
	viper.BindPFlag(flagEnvFile, rootCmd.PersistentFlags().Lookup(flagEnvFile))

	if err := rootCmd.Execute(); err != nil {
		logger.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
