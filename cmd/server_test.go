package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type TestDataProvider []struct {
	description string
	args        []string
	expectedOut string
}

func TestCommandsRequireFlags(t *testing.T) {
	savedConfigFile := serverConfigFile
	defer func() {
		serverConfigFile = savedConfigFile
	}()

	cases := TestDataProvider{
		{
			description: "Should NOT start the server without a config file outside dev mode",
			args:        []string{"server"},
			expectedOut: "--sconfig is required outside of dev mode",
		},
		{
			description: "Should NOT create an admin without username and password",
			args:        []string{"createadmin", "--email", "admin@skybiz.example"},
			expectedOut: "required flag(s)",
		},
	}

	for _, c := range cases {
		serverConfigFile = ""
		buff := new(bytes.Buffer)

		rootCmd.SetOut(buff)
		rootCmd.SetErr(buff)
		rootCmd.SetArgs(c.args)

		err := rootCmd.Execute()
		if assert.NotNil(t, err, c.description) {
			assert.Contains(t, err.Error(), c.expectedOut, c.description)
		}
	}
}

func TestServerConfigReadsFileAndEnv(t *testing.T) {
	savedConfigFile := serverConfigFile
	defer func() {
		serverConfigFile = savedConfigFile
	}()

	serverConfigFile = filepath.Join(t.TempDir(), "server.yml")
	err := os.WriteFile(serverConfigFile, []byte(`
skybiz:
  listener:
    port: 8000
database:
  driver: sqlite
mail:
  from: "config@skybiz.example"
`), 0600)
	require.Nil(t, err)

	t.Setenv("DEFAULT_FROM_EMAIL", "env@skybiz.example")
	t.Setenv("SKYBIZ_LISTENER_PORT", "9000")

	v := serverConfig()

	assert.Equal(t, "env@skybiz.example", v.GetString("mail.from"), "DEFAULT_FROM_EMAIL should override mail.from")
	assert.Equal(t, 9000, v.GetInt("skybiz.listener.port"), "env vars should override nested keys")
	assert.Equal(t, "sqlite", v.GetString("database.driver"))
}
