package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpsig "github.com/offblocks/httpsig-draft"
	"github.com/offblocks/httpsig-draft/internal/log"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600))
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	c, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, log.InfoLevel, c.Log.Level)
	assert.Equal(t, ":8080", c.Server.Address)
	assert.Equal(t, 10*time.Second, c.Server.ReadTimeout)
	assert.Equal(t, int64(1048576), c.Server.MaxBodyBytes)

	alg, err := c.Signing.ParsedAlgorithm()
	require.NoError(t, err)
	assert.Equal(t, httpsig.AlgorithmRsaSha512, alg)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := writeConfig(t, `
server:
  address: "127.0.0.1:9000"
signing:
  key_id: 90d1b2c4-3a5e-4f6a-8b7c-9d0e1f2a3b4c
  algorithm: ECDSA_SHA256
`)

	c, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", c.Server.Address)
	assert.Equal(t, 10*time.Second, c.Server.WriteTimeout)
	assert.Equal(t, "90d1b2c4-3a5e-4f6a-8b7c-9d0e1f2a3b4c", c.Signing.KeyID)

	alg, err := c.Signing.ParsedAlgorithm()
	require.NoError(t, err)
	assert.Equal(t, httpsig.AlgorithmEcdsaSha256, alg)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HTTPSIG_SERVER_MAX_BODY_BYTES", "2048")
	t.Setenv("HTTPSIG_WEBHOOK_SHARED_SECRET", "aaaaaaaa-aaaa-4aaa-aaaa-aaaaaaaaaaaa")

	c, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, int64(2048), c.Server.MaxBodyBytes)
	assert.Equal(t, "aaaaaaaa-aaaa-4aaa-aaaa-aaaaaaaaaaaa", c.Webhook.SharedSecret)
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("algorithm", func(t *testing.T) {
		_, err := Load(writeConfig(t, "signing:\n  algorithm: md5-rsa\n"))
		assert.ErrorIs(t, err, httpsig.ErrUnsupportedAlgorithm)
	})
	t.Run("key id", func(t *testing.T) {
		_, err := Load(writeConfig(t, "signing:\n  key_id: not-a-uuid\n"))
		assert.Error(t, err)
	})
	t.Run("body limit", func(t *testing.T) {
		_, err := Load(writeConfig(t, "server:\n  max_body_bytes: 0\n"))
		assert.Error(t, err)
	})
	t.Run("bad yaml", func(t *testing.T) {
		_, err := Load(writeConfig(t, "server: [\n"))
		assert.Error(t, err)
	})
}

type plainConfig struct {
	Name string `mapstructure:"name" structs:"name"`
}

func TestParseConfig_MissingFile(t *testing.T) {
	_, err := ParseConfig[plainConfig]([]string{t.TempDir()})
	assert.Error(t, err)

	c, err := ParseConfig[plainConfig]([]string{writeConfig(t, "name: demo\n")})
	require.NoError(t, err)
	assert.Equal(t, "demo", c.Name)
}
