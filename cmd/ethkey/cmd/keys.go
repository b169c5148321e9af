package cmd

import (
	"github.com/spf13/cobra"

	"github.com/sevenqinlittle/ethers.js"
)

var pubkeyCompressed bool

var pubkeyCmd = &cobra.Command{
	Use:   "pubkey <key>",
	Short: "Derive or normalize a public key",
	Long: `Derive a public key from a private key, or re-encode an existing
public key. The input may be a 32-byte private key, a 33-byte
compressed point, a 65-byte uncompressed point, or a 64-byte raw
point.

Examples:
  ethkey pubkey 0x0000000000000000000000000000000000000000000000000000000000000001
  ethkey pubkey --compressed 0x0479be667e...`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pub, err := ethers.ComputePublicKey(args[0], pubkeyCompressed)
		if err != nil {
			return err
		}
		return writeOutput(cmd, map[string]any{"publicKey": pub})
	},
}

var addressCmd = &cobra.Command{
	Use:   "address <key>",
	Short: "Derive the EIP-55 checksummed address for a key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := ethers.ComputeAddress(args[0])
		if err != nil {
			return err
		}
		return writeOutput(cmd, map[string]any{"address": addr})
	},
}

func init() {
	pubkeyCmd.Flags().BoolVar(&pubkeyCompressed, "compressed", false, "emit the 33-byte compressed encoding")
	rootCmd.AddCommand(pubkeyCmd)
	rootCmd.AddCommand(addressCmd)
}
