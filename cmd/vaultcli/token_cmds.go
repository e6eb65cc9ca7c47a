package main

import (
	"fmt"
	"path/filepath"

	"github.com/celer-network/go-vault/config"
	"github.com/celer-network/go-vault/pda"
	"github.com/celer-network/go-vault/storage"
	"github.com/celer-network/go-vault/token"
	"github.com/celer-network/go-vault/utils"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const mintSeed = "mint"

func initConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init-config",
		Short: "write the default vault.yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := filepath.Join(viper.GetString(flagConfig), config.FileName+".yaml")
			if err := config.Write(path, config.Default()); err != nil {
				return err
			}
			fmt.Println(path)
			return nil
		},
	}
	return cmd
}

func newKeyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new-key",
		Short: "create a keystore key in the configured keystore directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(viper.GetString(flagConfig))
			if err != nil {
				return err
			}
			addr, path, err := utils.NewKeystoreKey(cfg.Keystore, viper.GetString(flagPassword))
			if err != nil {
				return err
			}
			fmt.Printf("address: %s\nkeystore: %s\n", addr.Hex(), path)
			return nil
		},
	}
	cmd.Flags().String(flagPassword, "", "keystore password")
	return cmd
}

func airdropCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "airdrop",
		Short: "credit native balance for rent deposits",
		RunE: func(cmd *cobra.Command, args []string) error {
			to, err := addressFlag(flagTo)
			if err != nil {
				return err
			}
			amount := viper.GetUint64(flagAmount)
			n, err := openNode()
			if err != nil {
				return err
			}
			defer n.Close()

			var balance uint64
			err = n.update(func(b *storage.Batch) error {
				if err := b.Fund(to, amount); err != nil {
					return err
				}
				balance, err = b.NativeBalance(to)
				return err
			})
			if err != nil {
				return err
			}
			fmt.Printf("%s native balance: %d\n", to.Hex(), balance)
			return nil
		},
	}
	cmd.Flags().String(flagTo, "", "recipient address")
	cmd.Flags().Uint64(flagAmount, 0, "native amount")
	return cmd
}

func createMintCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-mint",
		Short: "create an asset whose mint authority is the signing key",
		RunE: func(cmd *cobra.Command, args []string) error {
			decimals := viper.GetUint(flagDecimals)
			if decimals > 18 {
				return fmt.Errorf("--%s: at most 18, got %d", flagDecimals, decimals)
			}
			_, authority, err := loadKey()
			if err != nil {
				return err
			}
			n, err := openNode()
			if err != nil {
				return err
			}
			defer n.Close()

			mint, _, err := pda.FindAddress(n.cfg.TokenProgram(), []byte(mintSeed), authority.Bytes(), []byte(viper.GetString(flagSeed)))
			if err != nil {
				return err
			}
			err = n.update(func(b *storage.Batch) error {
				return n.ledger.CreateMint(b, mint, authority, authority, uint8(decimals))
			})
			if err != nil {
				return err
			}
			logger.Info().Str("mint", mint.Hex()).Str("authority", authority.Hex()).Uint("decimals", decimals).Msg("mint created")
			fmt.Println(mint.Hex())
			return nil
		},
	}
	cmd.Flags().String(flagKey, "", "keystore file of the mint authority")
	cmd.Flags().String(flagPassword, "", "keystore password")
	cmd.Flags().Uint(flagDecimals, 6, "decimal places")
	cmd.Flags().String(flagSeed, "", "name distinguishing mints of one authority")
	return cmd
}

func createHoldingCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-holding",
		Short: "create the signing key's associated holding of an asset",
		RunE: func(cmd *cobra.Command, args []string) error {
			mint, err := addressFlag(flagMint)
			if err != nil {
				return err
			}
			_, owner, err := loadKey()
			if err != nil {
				return err
			}
			n, err := openNode()
			if err != nil {
				return err
			}
			defer n.Close()

			var holding common.Address
			err = n.update(func(b *storage.Batch) error {
				holding, err = n.ledger.CreateAssociatedAccount(b, owner, mint, owner)
				return err
			})
			if err != nil {
				return err
			}
			fmt.Println(holding.Hex())
			return nil
		},
	}
	cmd.Flags().String(flagKey, "", "keystore file of the holding owner")
	cmd.Flags().String(flagPassword, "", "keystore password")
	cmd.Flags().String(flagMint, "", "asset address")
	return cmd
}

func mintCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mint",
		Short: "issue units of an asset into an owner's associated holding",
		RunE: func(cmd *cobra.Command, args []string) error {
			mint, err := addressFlag(flagMint)
			if err != nil {
				return err
			}
			to, err := addressFlag(flagTo)
			if err != nil {
				return err
			}
			_, authority, err := loadKey()
			if err != nil {
				return err
			}
			n, err := openNode()
			if err != nil {
				return err
			}
			defer n.Close()

			decimals, err := n.mintDecimals(mint)
			if err != nil {
				return err
			}
			amount, err := token.ParseAmount(viper.GetString(flagAmount), decimals)
			if err != nil {
				return err
			}
			var balance uint64
			err = n.update(func(b *storage.Batch) error {
				holding, err := n.ledger.CreateAssociatedAccount(b, to, mint, authority)
				if err != nil {
					return err
				}
				if err := n.ledger.MintTo(b, mint, holding, amount, token.Signers{authority}); err != nil {
					return err
				}
				acct, err := n.ledger.Account(b, holding)
				if err != nil {
					return err
				}
				balance = acct.Amount
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Printf("%s balance: %s\n", to.Hex(), token.FormatAmount(balance, decimals))
			return nil
		},
	}
	cmd.Flags().String(flagKey, "", "keystore file of the mint authority")
	cmd.Flags().String(flagPassword, "", "keystore password")
	cmd.Flags().String(flagMint, "", "asset address")
	cmd.Flags().String(flagTo, "", "owner receiving the units")
	cmd.Flags().String(flagAmount, "0", "amount in whole units, e.g. 12.5")
	return cmd
}
