package configx_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Conversia-AI/craftable-dto/configx"
	"github.com/Conversia-AI/craftable-dto/errx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("CFGTEST_SERVER_PORT", "9000")
	t.Setenv("CFGTEST_BIND_USE_NUMBER", "true")

	cfg, err := configx.NewBuilder().
		WithDefaults(map[string]any{
			"server": map[string]any{"port": 8080, "host": "localhost"},
			"debug":  false,
		}).
		FromEnv("CFGTEST_").
		Build()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Get("server.port").AsInt())
	assert.Equal(t, "localhost", cfg.Get("server.host").AsString())
	assert.True(t, cfg.Get("bind.use.number").AsBool())
	assert.False(t, cfg.Get("debug").AsBool())
	assert.Contains(t, cfg.Keys(), "server.port")

	server, ok := cfg.AllSettings()["server"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "localhost", server["host"])
}

func TestBuild_RequireEnv(t *testing.T) {
	t.Setenv("CFGTEST_PRESENT", "x")

	_, err := configx.NewBuilder().
		RequireEnv("CFGTEST_PRESENT", "CFGTEST_DEFINITELY_ABSENT").
		Build()
	require.Error(t, err)
	assert.True(t, errx.IsCode(err, configx.ErrMissingEnv))

	var xerr *errx.Error
	require.ErrorAs(t, err, &xerr)
	assert.Equal(t, []string{"CFGTEST_DEFINITELY_ABSENT"}, xerr.Details["variables"])
}

func TestBuild_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"bind":{"max":{"body":1024}}}`), 0o600))

	cfg, err := configx.NewBuilder().FromFile(path).Build()
	require.NoError(t, err)
	assert.Equal(t, int64(1024), cfg.Get("bind.max.body").AsInt64())

	_, err = configx.NewBuilder().FromFile(filepath.Join(t.TempDir(), "missing.json")).Build()
	assert.True(t, errx.IsCode(err, configx.ErrReadFile))
}

func TestValue_Fallbacks(t *testing.T) {
	cfg, err := configx.NewBuilder().Build()
	require.NoError(t, err)

	v := cfg.Get("not.there")
	assert.False(t, v.IsSet())
	assert.Equal(t, "fallback", v.AsStringOr("fallback"))
	assert.Equal(t, 3, v.AsIntOr(3))
	assert.True(t, v.AsBoolOr(true))
}
