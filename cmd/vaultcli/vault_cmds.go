package main

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/celer-network/go-vault/token"
	"github.com/celer-network/go-vault/types"
	"github.com/celer-network/go-vault/vault"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const statusEventLimit = 20

// txCommand builds a command that signs one vault transaction with --key.
func txCommand(use, short string, build func(n *node, signer common.Address, nonce uint64) (types.Transaction, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, signer, err := loadKey()
			if err != nil {
				return err
			}
			n, err := openNode()
			if err != nil {
				return err
			}
			defer n.Close()
			return runTx(n, key, signer, build)
		},
	}
	cmd.Flags().String(flagKey, "", "keystore file of the signer")
	cmd.Flags().String(flagPassword, "", "keystore password")
	return cmd
}

func runTx(n *node, key *ecdsa.PrivateKey, signer common.Address, build func(n *node, signer common.Address, nonce uint64) (types.Transaction, error)) error {
	nonce, err := n.nextNonce(signer)
	if err != nil {
		return err
	}
	tx, err := build(n, signer, nonce)
	if err != nil {
		return err
	}
	update, err := n.submit(tx, key)
	if err != nil {
		return err
	}
	for _, e := range update.Events {
		printEvent(e)
	}
	return nil
}

func initializeCommand() *cobra.Command {
	cmd := txCommand("initialize", "create the signer's vault for an accepted asset",
		func(n *node, signer common.Address, nonce uint64) (types.Transaction, error) {
			mint, err := addressFlag(flagMint)
			if err != nil {
				return nil, err
			}
			feeBps := viper.GetUint(flagFeeBps)
			if feeBps > math.MaxUint16 {
				return nil, fmt.Errorf("--%s: %d out of range", flagFeeBps, feeBps)
			}
			return &types.InitializeTransaction{
				Admin:        signer,
				AcceptedMint: mint,
				FeeBps:       uint16(feeBps),
				Nonce:        nonce,
			}, nil
		})
	cmd.Flags().String(flagMint, "", "accepted asset address")
	cmd.Flags().Uint(flagFeeBps, 0, "withdrawal fee in basis points")
	return cmd
}

func depositCommand() *cobra.Command {
	cmd := txCommand("deposit", "deposit the accepted asset and receive receipt units",
		func(n *node, signer common.Address, nonce uint64) (types.Transaction, error) {
			admin, state, err := vaultFlag(n)
			if err != nil {
				return nil, err
			}
			amount, err := parseVaultAmount(n, state.AcceptedMint)
			if err != nil {
				return nil, err
			}
			return &types.DepositTransaction{User: signer, Admin: admin, Amount: amount, Nonce: nonce}, nil
		})
	cmd.Flags().String(flagAdmin, "", "vault admin address")
	cmd.Flags().String(flagAmount, "0", "amount in whole units, e.g. 12.5")
	return cmd
}

func requestWithdrawalCommand() *cobra.Command {
	cmd := txCommand("request-withdrawal", "burn receipt units and open a withdrawal ticket",
		func(n *node, signer common.Address, nonce uint64) (types.Transaction, error) {
			admin, state, err := vaultFlag(n)
			if err != nil {
				return nil, err
			}
			amount, err := parseVaultAmount(n, state.ReceiptMint)
			if err != nil {
				return nil, err
			}
			return &types.RequestWithdrawalTransaction{User: signer, Admin: admin, ReceiptAmount: amount, Nonce: nonce}, nil
		})
	cmd.Flags().String(flagAdmin, "", "vault admin address")
	cmd.Flags().String(flagAmount, "0", "receipt amount in whole units")
	return cmd
}

func claimCommand() *cobra.Command {
	cmd := txCommand("claim", "settle the signer's withdrawal ticket after the cooldown",
		func(n *node, signer common.Address, nonce uint64) (types.Transaction, error) {
			admin, err := addressFlag(flagAdmin)
			if err != nil {
				return nil, err
			}
			return &types.ClaimTransaction{User: signer, Admin: admin, Nonce: nonce}, nil
		})
	cmd.Flags().String(flagAdmin, "", "vault admin address")
	return cmd
}

func pauseCommand() *cobra.Command {
	cmd := txCommand("pause", "pause or resume deposits and withdrawal requests",
		func(n *node, signer common.Address, nonce uint64) (types.Transaction, error) {
			return &types.SetPausedTransaction{Admin: signer, Paused: viper.GetBool(flagPaused), Nonce: nonce}, nil
		})
	cmd.Flags().Bool(flagPaused, true, "false resumes the vault")
	return cmd
}

func statusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "print vault state, solvency, a user's ticket and recent events",
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := openNode()
			if err != nil {
				return err
			}
			defer n.Close()

			admin, state, err := vaultFlag(n)
			if err != nil {
				return err
			}
			decimals, err := n.mintDecimals(state.AcceptedMint)
			if err != nil {
				return err
			}
			solvency, err := n.processor.Solvency(admin)
			if err != nil {
				return err
			}
			fmt.Printf("vault:           %s\n", solvency.Vault.Hex())
			fmt.Printf("admin:           %s\n", state.Admin.Hex())
			fmt.Printf("accepted mint:   %s\n", state.AcceptedMint.Hex())
			fmt.Printf("receipt mint:    %s\n", state.ReceiptMint.Hex())
			fmt.Printf("fee bps:         %d\n", state.FeeBps)
			fmt.Printf("paused:          %t\n", state.IsPaused)
			fmt.Printf("total deposited: %s\n", token.FormatAmount(solvency.TotalDeposited, decimals))
			fmt.Printf("held balance:    %s\n", token.FormatAmount(solvency.HeldBalance, decimals))
			fmt.Printf("solvent:         %t\n", solvency.Holds())

			if viper.GetString(flagUser) != "" {
				user, err := addressFlag(flagUser)
				if err != nil {
					return err
				}
				if err := printTicket(n, user, admin, decimals); err != nil {
					return err
				}
			}

			events, err := n.processor.Events(admin, viper.GetUint64(flagFromSeq), statusEventLimit)
			if err != nil {
				return err
			}
			for _, e := range events {
				printEvent(e)
			}
			return nil
		},
	}
	cmd.Flags().String(flagAdmin, "", "vault admin address")
	cmd.Flags().String(flagUser, "", "print this user's pending withdrawal")
	cmd.Flags().Uint64(flagFromSeq, 1, "first event sequence to print")
	return cmd
}

func printTicket(n *node, user, admin common.Address, decimals uint8) error {
	ticket, err := n.processor.Ticket(user, admin)
	if errors.Is(err, vault.ErrNoPendingWithdrawal) {
		fmt.Printf("ticket:          none for %s\n", user.Hex())
		return nil
	}
	if err != nil {
		return err
	}
	claimableAt, err := n.processor.ClaimableAt(user, admin)
	if err != nil {
		return err
	}
	fmt.Printf("ticket:          %s receipt units, claimable at %s\n",
		token.FormatAmount(ticket.ReceiptAmount, decimals), time.Unix(claimableAt, 0).UTC().Format(time.RFC3339))
	return nil
}

func printEvent(e *types.Event) {
	fmt.Printf("#%d %s actor=%s amount=%d fee=%d total=%d paused=%t at=%s\n",
		e.Seq, e.Kind, e.Actor.Hex(), e.Amount, e.Fee, e.Total, e.Paused,
		time.Unix(e.Timestamp, 0).UTC().Format(time.RFC3339))
}

func vaultFlag(n *node) (common.Address, *types.VaultState, error) {
	admin, err := addressFlag(flagAdmin)
	if err != nil {
		return common.Address{}, nil, err
	}
	state, err := n.processor.Vault(admin)
	if err != nil {
		return common.Address{}, nil, err
	}
	return admin, state, nil
}

func parseVaultAmount(n *node, mint common.Address) (uint64, error) {
	decimals, err := n.mintDecimals(mint)
	if err != nil {
		return 0, err
	}
	return token.ParseAmount(viper.GetString(flagAmount), decimals)
}

func pruneEventsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune-events",
		Short: "delete audit events older than a sequence number",
		RunE: func(cmd *cobra.Command, args []string) error {
			admin, err := addressFlag(flagAdmin)
			if err != nil {
				return err
			}
			n, err := openNode()
			if err != nil {
				return err
			}
			defer n.Close()

			pruned, err := n.processor.PruneEvents(admin, viper.GetUint64(flagBeforeSeq))
			if err != nil {
				return err
			}
			fmt.Printf("pruned %d events\n", pruned)
			return nil
		},
	}
	cmd.Flags().String(flagAdmin, "", "vault admin address")
	cmd.Flags().Uint64(flagBeforeSeq, 0, "events with a lower sequence are deleted")
	return cmd
}
