package cmd

import (
	"fmt"

	"github.com/corey/emcee/internal/domain/cipher"
	"github.com/spf13/cobra"
)

var (
	keyImage    string
	keySeed     uint64
	keyAlphabet string
)

var decipherCmd = &cobra.Command{
	Use:   "decipher [FILE]",
	Short: "Apply a key to a ciphertext",
	Long:  "Maps each alphabet symbol of FILE (or stdin) through the key given by --key, or regenerated from --seed.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTranslate(cmd, args, (*cipher.Key).Decipher)
	},
}

var encipherCmd = &cobra.Command{
	Use:   "encipher [FILE]",
	Short: "Apply the inverse of a key to a plaintext",
	Long:  "Produces the ciphertext that the same --key or --seed deciphers back to FILE (or stdin).",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTranslate(cmd, args, (*cipher.Key).Encipher)
	},
}

func init() {
	for _, c := range []*cobra.Command{decipherCmd, encipherCmd} {
		c.Flags().StringVarP(&keyImage, "key", "k", "", "Key image in alphabet order (e.g. from emcee runs)")
		c.Flags().Uint64Var(&keySeed, "seed", 0, "Regenerate the random key of this seed")
		c.Flags().StringVar(&keyAlphabet, "alphabet", "", "Key alphabet (default from config)")
		c.MarkFlagsMutuallyExclusive("key", "seed")
	}
}

// resolveKey builds the key named by --key, else the one seeded by --seed
// (or the configured seed).
func resolveKey(cmd *cobra.Command) (*cipher.Key, error) {
	alphabet := cfg.Alphabet
	if cmd.Flags().Changed("alphabet") {
		alphabet = keyAlphabet
	}
	seed := cfg.Seed
	if cmd.Flags().Changed("seed") {
		seed = keySeed
	}

	if cmd.Flags().Changed("key") {
		return cipher.Parse(alphabet, keyImage, cipher.NewRand(seed))
	}
	return cipher.New(alphabet, cipher.NewRand(seed))
}

func runTranslate(cmd *cobra.Command, args []string, apply func(*cipher.Key, string) string) error {
	key, err := resolveKey(cmd)
	if err != nil {
		return err
	}
	logger.Debug("key", "mapping", key.String())

	text, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), apply(key, text))
	return nil
}
