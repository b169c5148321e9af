package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/sevenqinlittle/ethers.js"
)

var outputFormat string

var rootCmd = &cobra.Command{
	Use:   "ethkey",
	Short: "secp256k1 signing-key utilities",
	Long: `Derive, sign, recover, and protect secp256k1 keys from the command line.

Key material is taken from --key or the ETHKEY_PRIVATE_KEY environment
variable. All byte values are passed and printed as 0x-prefixed hex.

Examples:
  # Uncompressed public key for a private key
  ethkey pubkey 0x0123...

  # Sign a 32-byte digest
  ETHKEY_PRIVATE_KEY=0x0123... ethkey sign 0xdigest...

  # Recover the signer
  ethkey recover 0xdigest... 0xsignature...

  # Seal a key as keystore V3 JSON
  ETHKEY_PASSWORD=secret ethkey keystore encrypt --key 0x0123...`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ethkey: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "output format: text, json, or yaml")
	rootCmd.PersistentFlags().String("key", "", "private key as 0x-hex (or ETHKEY_PRIVATE_KEY)")

	viper.SetEnvPrefix("ethkey")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	_ = viper.BindPFlag("private-key", rootCmd.PersistentFlags().Lookup("key"))
}

// signingKeyFromConfig builds the SigningKey from --key or the
// environment. The raw value is never echoed on failure.
func signingKeyFromConfig() (*ethers.SigningKey, error) {
	raw := viper.GetString("private-key")
	if raw == "" {
		return nil, fmt.Errorf("no signing key: pass --key or set ETHKEY_PRIVATE_KEY")
	}
	return ethers.NewSigningKey(raw)
}

// writeOutput renders a result map in the selected output format.
func writeOutput(cmd *cobra.Command, result map[string]any) error {
	out := cmd.OutOrStdout()
	switch outputFormat {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case "yaml":
		enc := yaml.NewEncoder(out)
		defer enc.Close()
		return enc.Encode(result)
	case "text":
		keys := make([]string, 0, len(result))
		for k := range result {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(out, "%s: %v\n", k, result[k])
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q", outputFormat)
	}
}
