package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sevenqinlittle/ethers.js"
	"github.com/sevenqinlittle/ethers.js/hdkey"
	"github.com/sevenqinlittle/ethers.js/hexutil"
)

var (
	hdSeed string
	hdPath string
)

var hdCmd = &cobra.Command{
	Use:   "hd",
	Short: "Hierarchical deterministic key derivation",
}

var hdDeriveCmd = &cobra.Command{
	Use:   "derive [xkey]",
	Short: "Derive a child key from a seed or an extended key",
	Long: `Derive a key at a BIP32 path, starting from either a hex seed
(--seed) or a serialized extended key argument (xprv/xpub).

Hardened path components use an apostrophe. Deriving a hardened
component requires private material.

Examples:
  ethkey hd derive --seed 0x000102...0f --path "m/44'/60'/0'/0/0"
  ethkey hd derive xpub661MyMwAqRb... --path "m/0/1"`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var root *hdkey.ExtendedKey

		switch {
		case hdSeed != "" && len(args) == 1:
			return fmt.Errorf("pass either --seed or an extended key, not both")
		case hdSeed != "":
			seed, err := hexutil.Decode(hdSeed)
			if err != nil {
				return fmt.Errorf("invalid seed: %w", err)
			}
			if root, err = hdkey.NewMaster(seed); err != nil {
				return err
			}
		case len(args) == 1:
			var err error
			if root, err = hdkey.Parse(args[0]); err != nil {
				return err
			}
		default:
			return fmt.Errorf("pass --seed or an extended key")
		}
		return deriveAndPrint(cmd, root)
	},
}

func deriveAndPrint(cmd *cobra.Command, root *hdkey.ExtendedKey) error {
	path, err := parseDerivationPath(hdPath)
	if err != nil {
		return err
	}
	key, err := root.Derive(path...)
	if err != nil {
		return err
	}

	addr, err := ethers.ComputeAddress(key.PublicKey())
	if err != nil {
		return err
	}

	result := map[string]any{
		"xpub":      key.Neuter().String(),
		"publicKey": key.PublicKey(),
		"address":   addr,
	}
	if key.IsPrivate() {
		result["xprv"] = key.String()
	}
	return writeOutput(cmd, result)
}

// parseDerivationPath parses a BIP32 path like m/44'/60'/0'/0/0.
// An apostrophe (or trailing h/H) marks a hardened component.
func parseDerivationPath(path string) ([]uint32, error) {
	parts := strings.Split(strings.TrimSpace(path), "/")
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty derivation path")
	}
	if parts[0] == "m" || parts[0] == "M" {
		parts = parts[1:]
	}

	out := make([]uint32, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			return nil, fmt.Errorf("empty path component in %q", path)
		}
		hardened := false
		switch part[len(part)-1] {
		case '\'', 'h', 'H':
			hardened = true
			part = part[:len(part)-1]
		}
		n, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid path component %q: %w", part, err)
		}
		if n >= uint64(hdkey.HardenedKeyStart) {
			return nil, fmt.Errorf("path component %d out of range", n)
		}
		idx := uint32(n)
		if hardened {
			idx += hdkey.HardenedKeyStart
		}
		out = append(out, idx)
	}
	return out, nil
}

func init() {
	hdDeriveCmd.Flags().StringVar(&hdSeed, "seed", "", "hex seed (16-64 bytes) for master key derivation")
	hdDeriveCmd.Flags().StringVar(&hdPath, "path", "m", "BIP32 derivation path")
	hdCmd.AddCommand(hdDeriveCmd)
	rootCmd.AddCommand(hdCmd)
}
