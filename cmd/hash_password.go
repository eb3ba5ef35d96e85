package cmd

import (
	"fmt"

	"github.com/satheeshds/invoicer/auth"
	"github.com/satheeshds/invoicer/models"
	"github.com/spf13/cobra"
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password <password>",
	Short: "Print the bcrypt hash of a password",
	Long: `Print the bcrypt hash of a password, e.g. to seed the first admin account:

  INSERT INTO users (name, username, password_hash, is_admin)
  VALUES ('Admin', 'admin', '<hash>', true);`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args[0]) < models.MinPasswordLength {
			return fmt.Errorf("password must be at least %d characters", models.MinPasswordLength)
		}
		hash, err := auth.HashPassword(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(hashPasswordCmd)
}
