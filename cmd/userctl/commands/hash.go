package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/spec-kit/user-service/internal/auth"
	"github.com/spec-kit/user-service/internal/config"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

func hashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash",
		Short: "Derive a stored credential for a password read from the terminal",
		Long: "Reads LOCAL_SALT and PASSWORD_PEPPER from the environment (or .env), " +
			"prompts for a password without echo and prints pw_hash and pw_salt " +
			"for seeding the users table.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			localSalt, pepper, err := config.LoadPasswordSecrets(cfg.Auth)
			if err != nil {
				return err
			}
			params, err := auth.ParamsFromConfig(cfg.Auth)
			if err != nil {
				return err
			}
			hasher, err := auth.NewHasher(localSalt, pepper, params)
			if err != nil {
				return err
			}

			out := cmd.ErrOrStderr()
			fmt.Fprint(out, "Password: ")
			first, err := readPassword(int(os.Stdin.Fd()))
			fmt.Fprintln(out)
			if err != nil {
				return err
			}
			fmt.Fprint(out, "Repeat password: ")
			second, err := readPassword(int(os.Stdin.Fd()))
			fmt.Fprintln(out)
			if err != nil {
				return err
			}
			if string(first) != string(second) {
				return errors.New("passwords do not match")
			}

			cred, err := hasher.Derive(string(first))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pw_hash=%s\npw_salt=%s\n", cred.Hash, cred.Salt)
			return nil
		},
	}
}
