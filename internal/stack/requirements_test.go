package stack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequirements(t *testing.T) {
	required, err := Requirements("../../testdata/compose/templated.yml")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"DEFAULT_EMAIL",
		"DOMAIN_NAME",
		"PYSCRIPT_DIR",
		"SECRETS_DIR",
		"SUBDOMAIN",
	}, required)
}

func TestRequirementsNoReferences(t *testing.T) {
	required, err := Requirements("../../testdata/compose/docker-compose.yml")
	require.NoError(t, err)
	assert.Empty(t, required)
}

func TestMissingEnv(t *testing.T) {
	required := []string{"DOMAIN_NAME", "SECRETS_DIR", "SUBDOMAIN"}
	env := map[string]string{
		"SUBDOMAIN":   "app",
		"SECRETS_DIR": "",
	}

	assert.Equal(t, []string{"DOMAIN_NAME", "SECRETS_DIR"}, MissingEnv(required, env))
}

func TestMissingEnvAllSet(t *testing.T) {
	required := []string{"SUBDOMAIN"}
	env := map[string]string{"SUBDOMAIN": "app"}
	assert.Empty(t, MissingEnv(required, env))
}
