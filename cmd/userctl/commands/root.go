// Package commands implements userctl, the operator tool for provisioning
// the service's secrets and seeding credentials.
package commands

import (
	"crypto/rand"
	"io"

	"github.com/spf13/cobra"
)

// entropy is replaced in tests.
var entropy io.Reader = rand.Reader

// Execute runs the root command against the process arguments.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd assembles the command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "userctl",
		Short:         "Provision secrets and credentials for user-service",
		SilenceUsage:  true,
	}
	root.AddCommand(keygenCmd(), secretCmd(), hashCmd())
	return root
}

func randomBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(entropy, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
