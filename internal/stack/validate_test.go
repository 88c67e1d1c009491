package stack

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validStack() *Stack {
	return &Stack{
		Name:   "lego",
		Source: "docker-compose.yml",
		Services: map[string]*Service{
			"n8n": {
				Name:     "n8n",
				Image:    "docker.n8n.io/n8nio/n8n",
				Restart:  "always",
				Ports:    []PortMapping{{HostPort: 5678, ContainerPort: 5678, Protocol: "tcp"}},
				Mounts:   []Mount{{Source: "n8n_data", Target: "/home/node/.n8n"}},
				Networks: []string{"automation"},
				Env:      map[string]string{},
			},
			"ticket": {
				Name:      "ticket",
				Image:     "lego/lego-ticket:latest",
				Ports:     []PortMapping{{HostPort: 8000, ContainerPort: 8000, Protocol: "tcp"}},
				Networks:  []string{"automation"},
				DependsOn: []string{"n8n"},
				Env:       map[string]string{},
			},
		},
		Volumes: map[string]Volume{
			"n8n_data": {Name: "n8n_data", External: true},
		},
		Networks: map[string]Network{
			"automation": {Name: "automation", Driver: "bridge"},
		},
	}
}

func TestValidateOK(t *testing.T) {
	assert.Empty(t, validStack().Validate())
}

func TestValidateEmptyStack(t *testing.T) {
	st := &Stack{Name: "lego", Source: "x.yml", Services: map[string]*Service{}}
	errs := st.Validate()
	require.Len(t, errs, 1)
	assert.Equal(t, "services", errs[0].Field)
}

func TestValidateStructure(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Stack)
		field  string
	}{
		{
			"neither image nor build",
			func(s *Stack) { s.Services["ticket"].Image = "" },
			"services.ticket",
		},
		{
			"both image and build",
			func(s *Stack) { s.Services["ticket"].Build = &Build{Context: "."} },
			"services.ticket",
		},
		{
			"duplicate host port",
			func(s *Stack) { s.Services["ticket"].Ports[0].HostPort = 5678 },
			"services.ticket.ports",
		},
		{
			"invalid port",
			func(s *Stack) { s.Services["ticket"].Ports[0].ContainerPort = 0 },
			"services.ticket.ports",
		},
		{
			"undeclared volume",
			func(s *Stack) { s.Services["n8n"].Mounts[0].Source = "ghost_data" },
			"services.n8n.volumes",
		},
		{
			"undeclared network",
			func(s *Stack) { s.Services["n8n"].Networks = []string{"ghostnet"} },
			"services.n8n.networks",
		},
		{
			"unknown dependency",
			func(s *Stack) { s.Services["ticket"].DependsOn = []string{"ghost"} },
			"services.ticket.depends_on",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := validStack()
			tt.mutate(st)
			errs := st.Validate()
			require.NotEmpty(t, errs)
			assert.Equal(t, tt.field, errs[0].Field)
		})
	}
}

func TestValidateBuildContext(t *testing.T) {
	dir := t.TempDir()

	st := validStack()
	st.Services["ticket"].Image = ""
	st.Services["ticket"].Build = &Build{Context: dir}

	// context exists but has no Dockerfile
	errs := st.Validate()
	require.Len(t, errs, 1)
	assert.Equal(t, "services.ticket.build", errs[0].Field)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "Dockerfile"), []byte("FROM alpine\n"), 0644))
	assert.Empty(t, st.Validate())
}

func TestValidateDependencyCycle(t *testing.T) {
	st := validStack()
	st.Services["n8n"].DependsOn = []string{"ticket"}

	errs := st.Validate()
	require.NotEmpty(t, errs)

	var found bool
	for _, e := range errs {
		if e.Field == "services" {
			assert.Contains(t, e.Message, "circular")
			found = true
		}
	}
	assert.True(t, found, "cycle should be reported")
}

func TestStartOrder(t *testing.T) {
	st := validStack()
	st.Services["gmail"] = &Service{
		Name:      "gmail",
		Image:     "lego/lego-gmail:latest",
		Ports:     []PortMapping{{HostPort: 8001, ContainerPort: 8001, Protocol: "tcp"}},
		Networks:  []string{"automation"},
		DependsOn: []string{"n8n"},
		Env:       map[string]string{},
	}

	order := st.StartOrder()
	require.Len(t, order, 3)
	assert.Equal(t, "n8n", order[0])

	pos := map[string]int{}
	for i, name := range order {
		pos[name] = i
	}
	assert.Greater(t, pos["ticket"], pos["n8n"])
	assert.Greater(t, pos["gmail"], pos["n8n"])
}

func TestStartOrderCycleStillCompletes(t *testing.T) {
	st := validStack()
	st.Services["n8n"].DependsOn = []string{"ticket"}

	order := st.StartOrder()
	assert.Len(t, order, 2)
}
