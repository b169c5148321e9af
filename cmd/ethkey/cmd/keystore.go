package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sevenqinlittle/ethers.js"
	"github.com/sevenqinlittle/ethers.js/keystore"
)

var (
	keystoreLight bool
	keystoreOut   string
)

var keystoreCmd = &cobra.Command{
	Use:   "keystore",
	Short: "Encrypt and decrypt keystore V3 documents",
}

var keystoreEncryptCmd = &cobra.Command{
	Use:   "encrypt",
	Short: "Seal the configured key as keystore V3 JSON",
	Long: `Encrypt the configured private key under a password as a Web3
Secret Storage (keystore V3) document. The password comes from the
ETHKEY_PASSWORD environment variable.

Example:
  ETHKEY_PRIVATE_KEY=0x0123... ETHKEY_PASSWORD=secret \
    ethkey keystore encrypt --out key.json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := signingKeyFromConfig()
		if err != nil {
			return err
		}
		password, err := passwordFromConfig()
		if err != nil {
			return err
		}

		scryptN, scryptP := keystore.StandardScryptN, keystore.StandardScryptP
		if keystoreLight {
			scryptN, scryptP = keystore.LightScryptN, keystore.LightScryptP
		}

		doc, err := keystore.EncryptWithParams(key, password, scryptN, scryptP)
		if err != nil {
			return err
		}

		if keystoreOut == "" {
			fmt.Fprintln(cmd.OutOrStdout(), string(doc))
			return nil
		}
		// 0600: the document guards key material even when encrypted.
		return os.WriteFile(keystoreOut, doc, 0o600)
	},
}

var keystoreDecryptCmd = &cobra.Command{
	Use:   "decrypt <file>",
	Short: "Open a keystore V3 document and print the key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		password, err := passwordFromConfig()
		if err != nil {
			return err
		}

		key, err := keystore.Decrypt(data, password)
		if err != nil {
			return err
		}
		addr, err := ethers.ComputeAddress(key.PublicKey())
		if err != nil {
			return err
		}
		return writeOutput(cmd, map[string]any{
			"privateKey": key.PrivateKey(),
			"publicKey":  key.PublicKey(),
			"address":    addr,
		})
	},
}

func passwordFromConfig() (string, error) {
	password := viper.GetString("password")
	if password == "" {
		return "", fmt.Errorf("no password: set ETHKEY_PASSWORD")
	}
	return password, nil
}

func init() {
	keystoreEncryptCmd.Flags().BoolVar(&keystoreLight, "light", false, "use the light scrypt preset")
	keystoreEncryptCmd.Flags().StringVar(&keystoreOut, "out", "", "write the document to a file instead of stdout")
	keystoreCmd.AddCommand(keystoreEncryptCmd)
	keystoreCmd.AddCommand(keystoreDecryptCmd)
	rootCmd.AddCommand(keystoreCmd)
}
