package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/jira-bridge/internal/credential"
)

var credentialCmd = &cobra.Command{
	Use:   "credential",
	Short: "Manage the Jira API token stored in the system keyring",
}

var credentialSetCmd = &cobra.Command{
	Use:   "set <token>",
	Short: "Store the Jira API token",
	Long: `Store the Jira API token in the system keyring. It is used when
JIRA_API_TOKEN is not set.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		token := strings.TrimSpace(args[0])
		if token == "" {
			return errors.New("token must not be empty")
		}
		if err := credential.Set(credential.APITokenKey, token); err != nil {
			return err
		}
		printSuccess(cmd.OutOrStdout(), "API token stored")
		return nil
	},
}

var credentialDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove the stored Jira API token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := credential.Delete(credential.APITokenKey); err != nil {
			return err
		}
		printSuccess(cmd.OutOrStdout(), "API token removed")
		return nil
	},
}

var credentialStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report whether an API token is stored",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		token, err := credential.Get(credential.APITokenKey)
		if errors.Is(err, credential.ErrNotFound) {
			printNote(cmd.OutOrStdout(), "no API token stored")
			return nil
		}
		if err != nil {
			return err
		}
		printSuccess(cmd.OutOrStdout(), fmt.Sprintf("API token stored (%d characters)", len(token)))
		return nil
	},
}

func init() {
	credentialCmd.AddCommand(credentialSetCmd, credentialDeleteCmd, credentialStatusCmd)
	rootCmd.AddCommand(credentialCmd)
}
