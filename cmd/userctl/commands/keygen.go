package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spec-kit/user-service/internal/config"
)

func keygenCmd() *cobra.Command {
	var (
		out   string
		size  int
		force bool
	)
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Write a random token signing key file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if size < config.MinSigningKeySize {
				return fmt.Errorf("--bytes must be at least %d", config.MinSigningKeySize)
			}
			key, err := randomBytes(size)
			if err != nil {
				return fmt.Errorf("generate key: %w", err)
			}

			flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
			if force {
				flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
			}
			f, err := os.OpenFile(out, flags, 0o600)
			if err != nil {
				return err
			}
			if _, err := f.Write(key); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d-byte signing key to %s\n", size, out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "secret.key", "destination file")
	cmd.Flags().IntVar(&size, "bytes", config.MinSigningKeySize, "key length in bytes")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}
