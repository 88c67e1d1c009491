package stack

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServiceNames(t *testing.T) {
	st := validStack()
	assert.Equal(t, []string{"n8n", "ticket"}, st.ServiceNames())
}

func TestPublicURL(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		expected string
	}{
		{
			"protocol honored",
			map[string]string{
				"N8N_HOST":     "app.example.com",
				"N8N_PROTOCOL": "http",
			},
			"http://app.example.com/",
		},
		{
			"https default",
			map[string]string{"N8N_HOST": "app.example.com"},
			"https://app.example.com/",
		},
		{
			"forwarding target is not an address",
			map[string]string{"WEBHOOK_URL": "http://n8n:5678/webhook/ticket-upload"},
			"",
		},
		{
			"nothing advertised",
			map[string]string{"PORT": "8000"},
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &Service{Name: "n8n", Env: tt.env}
			assert.Equal(t, tt.expected, svc.PublicURL())
		})
	}
}

func TestDockerfileName(t *testing.T) {
	assert.Equal(t, "Dockerfile", (&Build{Context: "./x"}).DockerfileName())
	assert.Equal(t, "build.Dockerfile", (&Build{Context: "./x", Dockerfile: "build.Dockerfile"}).DockerfileName())
}
