package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fedinstance/config"
	"fedinstance/db"
	"fedinstance/etc"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSiteConfig = `[config]
sitename = Test Site
info = Hello fediverse
register_policy = 2

[system]
url = https://social.example
language = de
nodeinfo = true
`

func testSettings(t *testing.T) *config.Settings {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "local.ini")
	require.NoError(t, os.WriteFile(configPath, []byte(testSiteConfig), 0o600))
	return &config.Settings{
		DatabasePath: filepath.Join(dir, "test.db"),
		ConfigPath:   configPath,
		LogLevel:     "error",
		LogFormat:    "console",
		CronInterval: time.Minute,
	}
}

func runApp(settings *config.Settings, input string, args ...string) (string, error) {
	var out bytes.Buffer
	app := newApp(settings)
	app.Reader = strings.NewReader(input)
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"fedinstance"}, args...))
	return out.String(), err
}

func TestSetupThenInstance(t *testing.T) {
	settings := testSettings(t)

	out, err := runApp(settings, "admin\nThe Admin\nadmin@social.example\nHi *there*\nshort\nlongenough\n", "setup")
	require.NoError(t, err)
	assert.Contains(t, out, "Password must be at least 8 characters long")
	assert.Contains(t, out, "Administrator created successfully!")

	cfg, err := config.Load(settings.ConfigPath)
	require.NoError(t, err)
	assert.Equal(t, "admin@social.example", config.String(cfg, "config", "admin_email", ""))

	out, err = runApp(settings, "", "nodeinfo")
	require.NoError(t, err)
	var usage struct {
		Users struct {
			Total int64 `json:"total"`
		} `json:"users"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &usage))
	assert.EqualValues(t, 1, usage.Users.Total)

	out, err = runApp(settings, "", "instance")
	require.NoError(t, err)

	var instance map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &instance))
	assert.Equal(t, "social.example", instance["uri"])
	assert.Equal(t, "Test Site", instance["title"])
	assert.Equal(t, "Hello fediverse", instance["description"])
	assert.Equal(t, "admin@social.example", instance["email"])
	assert.Equal(t, "2.8.0 (compatible; Friendica "+etc.Version+")", instance["version"])
	assert.Equal(t, []any{"de"}, instance["languages"])
	assert.Equal(t, true, instance["registrations"])
	assert.Equal(t, false, instance["approval_required"])
	assert.Equal(t, "https://social.example/images/friendica-banner.jpg", instance["thumbnail"])

	stats := instance["stats"].(map[string]any)
	assert.EqualValues(t, 1, stats["user_count"])

	account := instance["contact_account"].(map[string]any)
	assert.Equal(t, "admin", account["username"])
	assert.Equal(t, "admin", account["acct"])
	assert.Equal(t, "The Admin", account["display_name"])
	assert.Equal(t, "https://social.example/profile/admin", account["url"])
	assert.Contains(t, account["note"], "<em>there</em>")
}

func TestSetupRejectsShortInput(t *testing.T) {
	settings := testSettings(t)

	_, err := runApp(settings, "admin\nThe Admin\nadmin@social.example\nbio\nshort\n", "setup")
	assert.Error(t, err)

	_, err = runApp(settings, "admin\nThe Admin\nnot-an-email\n", "setup")
	assert.ErrorContains(t, err, "invalid email")
}

func countRows(t *testing.T, path, table string) int64 {
	t.Helper()
	d, err := db.InitDB(path)
	require.NoError(t, err)
	defer d.Close()
	n, err := d.Count(context.Background(), table, nil)
	require.NoError(t, err)
	return n
}

func TestSetupLeavesNoRowsWhenConfigCannotBeSaved(t *testing.T) {
	settings := testSettings(t)
	writable := settings.ConfigPath
	settings.ConfigPath = filepath.Join(t.TempDir(), "missing", "local.ini")

	input := "https://social.example\nadmin\nThe Admin\nadmin@social.example\nbio\nlongenough\n"
	_, err := runApp(settings, input, "setup")
	require.ErrorContains(t, err, "failed to save config")
	assert.Zero(t, countRows(t, settings.DatabasePath, "user"))
	assert.Zero(t, countRows(t, settings.DatabasePath, "contact"))

	settings.ConfigPath = writable
	out, err := runApp(settings, "admin\nThe Admin\nadmin@social.example\nbio\nlongenough\n", "setup")
	require.NoError(t, err)
	assert.Contains(t, out, "Administrator created successfully!")
	assert.EqualValues(t, 1, countRows(t, settings.DatabasePath, "user"))
	assert.EqualValues(t, 1, countRows(t, settings.DatabasePath, "contact"))
}

func TestSetupRejectsTakenNickname(t *testing.T) {
	settings := testSettings(t)
	input := "admin\nThe Admin\nAdmin@Social.example\nbio\nlongenough\n"

	_, err := runApp(settings, input, "setup")
	require.NoError(t, err)

	_, err = runApp(settings, input, "setup")
	assert.ErrorContains(t, err, "already taken")

	cfg, err := config.Load(settings.ConfigPath)
	require.NoError(t, err)
	assert.Equal(t, "Admin@Social.example", config.String(cfg, "config", "admin_email", ""))
}

func TestInstanceWithoutAdmin(t *testing.T) {
	settings := testSettings(t)

	out, err := runApp(settings, "", "instance")
	require.NoError(t, err)

	var instance map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &instance))
	assert.Equal(t, map[string]any{}, instance["contact_account"])
	assert.Equal(t, "", instance["email"])
	assert.Equal(t, []any{}, instance["rules"])
}

func TestServerCommand(t *testing.T) {
	settings := testSettings(t)

	out, err := runApp(settings, "", "server", "https://Other.example/")
	require.NoError(t, err)
	assert.Equal(t, "1 federated servers known\n", out)

	out, err = runApp(settings, "", "server", "--network", "dfrn", "https://third.example")
	require.NoError(t, err)
	assert.Equal(t, "2 federated servers known\n", out)

	// saving an existing server updates it in place
	out, err = runApp(settings, "", "server", "--blocked", "https://other.example")
	require.NoError(t, err)
	assert.Equal(t, "1 federated servers known\n", out)
	assert.EqualValues(t, 2, countRows(t, settings.DatabasePath, "gserver"))

	_, err = runApp(settings, "", "nodeinfo")
	require.NoError(t, err)
	out, err = runApp(settings, "", "instance")
	require.NoError(t, err)
	var instance struct {
		Stats struct {
			DomainCount int64 `json:"domain_count"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &instance))
	assert.EqualValues(t, 1, instance.Stats.DomainCount)

	_, err = runApp(settings, "", "server", "--network", "smtp", "https://mail.example")
	assert.ErrorContains(t, err, "unknown network")
	_, err = runApp(settings, "", "server")
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := runApp(testSettings(t), "", "version")
	require.NoError(t, err)
	assert.Equal(t, etc.ProductName+" "+etc.Version+"\n", out)
}
