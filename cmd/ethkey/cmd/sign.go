package cmd

import (
	"github.com/spf13/cobra"

	"github.com/sevenqinlittle/ethers.js"
)

var signCmd = &cobra.Command{
	Use:   "sign <digest>",
	Short: "Sign a 32-byte digest with the configured key",
	Long: `Produce a deterministic, low-s, recoverable ECDSA signature over a
32-byte digest. The digest must already be hashed; ethkey never
hashes.

Example:
  ETHKEY_PRIVATE_KEY=0x0123... ethkey sign 0x9c22ff5f...`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := signingKeyFromConfig()
		if err != nil {
			return err
		}
		sig, err := key.Sign(args[0])
		if err != nil {
			return err
		}
		return writeOutput(cmd, map[string]any{
			"r":       sig.R,
			"s":       sig.S,
			"v":       sig.V,
			"compact": sig.Compact(),
		})
	},
}

var recoverCmd = &cobra.Command{
	Use:   "recover <digest> <signature>",
	Short: "Recover the public key and address that produced a signature",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pub, err := ethers.RecoverPublicKey(args[0], args[1])
		if err != nil {
			return err
		}
		addr, err := ethers.ComputeAddress(pub)
		if err != nil {
			return err
		}
		return writeOutput(cmd, map[string]any{
			"publicKey": pub,
			"address":   addr,
		})
	},
}

var ecdhCmd = &cobra.Command{
	Use:   "ecdh <otherKey>",
	Short: "Compute the raw ECDH shared secret with another party's key",
	Long: `Compute the ECDH shared secret between the configured private key
and another party's key (any supported encoding). The output is the
raw x-coordinate; hash it before use as a symmetric key.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := signingKeyFromConfig()
		if err != nil {
			return err
		}
		secret, err := key.ComputeSharedSecret(args[0])
		if err != nil {
			return err
		}
		return writeOutput(cmd, map[string]any{"sharedSecret": secret})
	},
}

func init() {
	rootCmd.AddCommand(signCmd)
	rootCmd.AddCommand(recoverCmd)
	rootCmd.AddCommand(ecdhCmd)
}
