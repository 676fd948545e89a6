/*
Copyright © 2026 The skybiz Authors

*/
package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/skybiz/skybiz/dev/config"
	"github.com/skybiz/skybiz/server"
	"github.com/skybiz/skybiz/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the skybiz web server",
	Long: `Start the skybiz web server. Pass the YAML config with --sconfig, or use --dev to run with
dev/server.yml, which is created on first use.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if serverConfigFile == "" && !isDevEnv {
			return formattedError("--sconfig is required outside of dev mode")
		}

		server.Start(serverConfig(), isDevEnv)
		return nil
	},
}

var serverConfigFile string

// Env vars read on top of the config file, keyed by config path.
var serverEnvBindings = map[string]string{
	"mail.from":                     "DEFAULT_FROM_EMAIL",
	"mail.host":                     "EMAIL_HOST",
	"mail.username":                 "EMAIL_HOST_USER",
	"mail.password":                 "EMAIL_HOST_PASSWORD",
	"twilio.accountSid":             "TWILIO_ACCOUNT_SID",
	"twilio.authToken":              "TWILIO_AUTH_TOKEN",
	"twilio.whatsAppNumber":         "TWILIO_WHATSAPP_NUMBER",
	"google.applicationCredentials": "GOOGLE_APPLICATION_CREDENTIALS",
	"database.dsn":                  "DATABASE_URL",
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringVar(&serverConfigFile, "sconfig", "", "Config for server")
}

func serverConfig() *viper.Viper {
	v := viper.New()

	if isDevEnv {
		serverConfigFile = devConfigFilePath()
	}

	v.SetConfigFile(serverConfigFile)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, env := range serverEnvBindings {
		cobra.CheckErr(v.BindEnv(key, env))
	}

	if err := v.ReadInConfig(); err != nil {
		log.Panic(fmt.Sprintf("error reading server config file: %v", err))
	}

	return v
}

// devConfigFilePath returns dev/server.yml, writing the default dev config there if it's missing.
func devConfigFilePath() string {
	workDir, err := os.Getwd()
	if err != nil {
		log.Panic(err)
	}

	devDir := filepath.Join(workDir, "dev")
	if err = utils.CreateDirIfNotExist(devDir); err != nil {
		log.Panic(err)
	}

	configFile := filepath.Join(devDir, "server.yml")
	if !utils.FileExist(configFile) {
		if err = os.WriteFile(configFile, []byte(config.SERVER_YML), 0600); err != nil {
			log.Panic(err)
		}
	}

	return configFile
}
