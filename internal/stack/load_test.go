package stack

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDescriptor(t *testing.T) {
	st, err := Load(context.Background(), "../../testdata/compose/docker-compose.yml", Options{Name: "legotest"})
	require.NoError(t, err)

	assert.Equal(t, "legotest", st.Name)
	require.Len(t, st.Services, 3)

	n8n := st.Services["n8n"]
	require.NotNil(t, n8n)
	assert.Equal(t, "docker.n8n.io/n8nio/n8n", n8n.Image)
	assert.Nil(t, n8n.Build)
	assert.Equal(t, "always", n8n.Restart)
	require.Len(t, n8n.Ports, 1)
	assert.Equal(t, 5678, n8n.Ports[0].HostPort)
	assert.Equal(t, 5678, n8n.Ports[0].ContainerPort)
	assert.Equal(t, "Europe/Brussels", n8n.Env["GENERIC_TIMEZONE"])
	assert.Empty(t, n8n.DependsOn)

	require.Len(t, n8n.Mounts, 2)
	assert.Equal(t, "n8n_data", n8n.Mounts[0].Source)
	assert.Equal(t, "/home/node/.n8n", n8n.Mounts[0].Target)
	assert.False(t, n8n.Mounts[0].Bind())
	assert.True(t, n8n.Mounts[1].Bind())

	gmail := st.Services["gmail"]
	require.NotNil(t, gmail)
	assert.Empty(t, gmail.Image)
	require.NotNil(t, gmail.Build)
	assert.Contains(t, gmail.Build.Context, "gmail")
	assert.Equal(t, []string{"n8n"}, gmail.DependsOn)
	require.Len(t, gmail.Mounts, 1)
	assert.True(t, gmail.Mounts[0].ReadOnly)

	vol, ok := st.Volumes["n8n_data"]
	require.True(t, ok)
	assert.True(t, vol.External)

	net, ok := st.Networks["automation"]
	require.True(t, ok)
	assert.Equal(t, "bridge", net.Driver)
	assert.False(t, net.External)
}

func TestLoadInterpolatesEnvironment(t *testing.T) {
	t.Setenv("SUBDOMAIN", "app")
	t.Setenv("DOMAIN_NAME", "example.com")
	t.Setenv("PYSCRIPT_DIR", "./scripts")
	t.Setenv("SECRETS_DIR", "./secrets")
	t.Setenv("DEFAULT_EMAIL", "reception@example.com")

	st, err := Load(context.Background(), "../../testdata/compose/templated.yml", Options{})
	require.NoError(t, err)

	n8n := st.Services["n8n"]
	require.NotNil(t, n8n)
	assert.Equal(t, "app.example.com", n8n.Env["N8N_HOST"])
	assert.Equal(t, "Europe/Brussels", n8n.Env["GENERIC_TIMEZONE"])
	assert.Equal(t, "https://app.example.com/", n8n.PublicURL())
}

func TestLoadEnvFile(t *testing.T) {
	st, err := Load(context.Background(), "../../testdata/compose/templated.yml", Options{
		EnvFile: "../../testdata/compose/test.env",
	})
	require.NoError(t, err)

	n8n := st.Services["n8n"]
	require.NotNil(t, n8n)
	assert.Equal(t, "https://app.example.com/", n8n.PublicURL())
	assert.Equal(t, "reception@example.com", st.Services["gmail"].Env["DEFAULT_EMAIL"])
}

func TestLoadMissingDescriptor(t *testing.T) {
	_, err := Load(context.Background(), "../../testdata/compose/nope.yml", Options{})
	require.Error(t, err)
}

func TestLoadFallback(t *testing.T) {
	t.Setenv("SUBDOMAIN", "app")
	t.Setenv("DOMAIN_NAME", "example.com")
	t.Setenv("PYSCRIPT_DIR", "./scripts")
	t.Setenv("SECRETS_DIR", "./secrets")
	t.Setenv("DEFAULT_EMAIL", "reception@example.com")

	st, err := loadFallback("../../testdata/compose/templated.yml", "lego", "")
	require.NoError(t, err)

	n8n := st.Services["n8n"]
	require.NotNil(t, n8n)
	assert.Equal(t, "https://app.example.com/", n8n.PublicURL())
	require.Len(t, n8n.Ports, 1)
	assert.Equal(t, 5678, n8n.Ports[0].ContainerPort)

	gmail := st.Services["gmail"]
	require.NotNil(t, gmail)
	require.NotNil(t, gmail.Build)
	assert.Contains(t, gmail.Build.Context, "gmail")
	require.Len(t, gmail.Mounts, 1)
	assert.True(t, gmail.Mounts[0].Bind())

	assert.True(t, st.Volumes["n8n_data"].External)
}

func TestEnvironmentPrecedence(t *testing.T) {
	t.Setenv("SUBDOMAIN", "fromprocess")

	env, err := Environment("../../testdata/compose/test.env")
	require.NoError(t, err)

	assert.Equal(t, "fromprocess", env["SUBDOMAIN"])
	assert.Equal(t, "example.com", env["DOMAIN_NAME"])
}
