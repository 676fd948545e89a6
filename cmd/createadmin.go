/*
Copyright © 2026 The skybiz Authors

*/
package cmd

import (
	"fmt"

	"github.com/skybiz/skybiz/colors"
	"github.com/skybiz/skybiz/server"
	"github.com/spf13/cobra"
)

var adminUser struct {
	username string
	email    string
	password string
}

// createAdminCmd represents the createadmin command
var createAdminCmd = &cobra.Command{
	Use:   "createadmin",
	Short: "Create a staff superuser",
	Long: `Create a staff superuser that can sign in to the admin panel and the dashboard.
The database is migrated first, using the same config as the server command.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if serverConfigFile == "" && !isDevEnv {
			return formattedError("--sconfig is required outside of dev mode")
		}

		notice, err := server.CreateStaffUser(serverConfig(), isDevEnv, adminUser.username, adminUser.email, adminUser.password)
		if err != nil {
			return formattedError("%v", err)
		}

		fmt.Println(colors.Green(notice))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(createAdminCmd)

	createAdminCmd.Flags().StringVar(&serverConfigFile, "sconfig", "", "Config for server")
	createAdminCmd.Flags().StringVarP(&adminUser.username, "username", "u", "", "Username of the new admin")
	createAdminCmd.Flags().StringVarP(&adminUser.email, "email", "e", "", "Email of the new admin")
	createAdminCmd.Flags().StringVarP(&adminUser.password, "password", "p", "", "Password of the new admin")

	createAdminCmd.MarkFlagRequired("username")
	createAdminCmd.MarkFlagRequired("password")
}
