package commands

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/user-service/internal/config"
)

func secretCmd() *cobra.Command {
	var size int
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Print a random hex secret for PASSWORD_PEPPER or LOCAL_SALT",
		RunE: func(cmd *cobra.Command, args []string) error {
			if size <= 0 {
				return fmt.Errorf("--bytes must be positive")
			}
			buf, err := randomBytes(size)
			if err != nil {
				return fmt.Errorf("generate secret: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(buf))
			return nil
		},
	}
	cmd.Flags().IntVar(&size, "bytes", config.PepperSize, "secret length in bytes")
	return cmd
}
