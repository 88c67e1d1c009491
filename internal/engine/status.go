package engine

import (
	"context"
	"fmt"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"

	"github.com/mamisoa/lego/internal/stack"
)

// ServiceStatus describes one service's runtime state.
type ServiceStatus struct {
	Service   string
	Container string
	// State is the daemon's container state, or "missing" when no
	// container carries the service label.
	State string
	Ports []string
	URL   string
}

// Running reports whether the service's container is up.
func (s ServiceStatus) Running() bool {
	return s.State == "running"
}

// Status reports the state of every declared service, plus any leftover
// containers that carry the stack label but no longer match a service.
func (e *Engine) Status(ctx context.Context, st *stack.Stack) ([]ServiceStatus, error) {
	if _, err := e.api.Ping(ctx); err != nil {
		return nil, fmt.Errorf("docker engine unreachable: %w", err)
	}

	containers, err := e.listStack(ctx)
	if err != nil {
		return nil, err
	}
	byService := map[string]types.Container{}
	for _, c := range containers {
		byService[c.Labels[labelService]] = c
	}

	var statuses []ServiceStatus
	for _, name := range st.ServiceNames() {
		svc := st.Services[name]
		status := ServiceStatus{
			Service:   name,
			Container: e.containerName(name),
			State:     "missing",
			URL:       svc.PublicURL(),
		}
		for _, p := range svc.Ports {
			status.Ports = append(status.Ports, p.String())
		}
		if c, ok := byService[name]; ok {
			status.Container = containerDisplayName(c)
			status.State = c.State
			delete(byService, name)
		}
		statuses = append(statuses, status)
	}

	for _, name := range sortedKeys(byService) {
		c := byService[name]
		statuses = append(statuses, ServiceStatus{
			Service:   name,
			Container: containerDisplayName(c),
			State:     c.State,
		})
	}
	return statuses, nil
}

// MissingExternals returns the runtime names of external volumes and
// networks the stack expects but the daemon does not have. Up stops at the
// first one; this reports them all so validate can list every gap.
func (e *Engine) MissingExternals(ctx context.Context, st *stack.Stack) ([]string, error) {
	if _, err := e.api.Ping(ctx); err != nil {
		return nil, fmt.Errorf("docker engine unreachable: %w", err)
	}

	var missing []string
	for _, name := range sortedKeys(st.Volumes) {
		v := st.Volumes[name]
		if !v.External {
			continue
		}
		runtime := e.volumeName(name, v)
		if _, err := e.api.VolumeInspect(ctx, runtime); err != nil {
			if !client.IsErrNotFound(err) {
				return nil, &ResourceError{Kind: "volume", Name: runtime, Err: err}
			}
			missing = append(missing, "volume "+runtime)
		}
	}
	for _, name := range sortedKeys(st.Networks) {
		n := st.Networks[name]
		if !n.External {
			continue
		}
		runtime := e.networkName(name, n)
		if _, err := e.api.NetworkInspect(ctx, runtime, network.InspectOptions{}); err != nil {
			if !client.IsErrNotFound(err) {
				return nil, &ResourceError{Kind: "network", Name: runtime, Err: err}
			}
			missing = append(missing, "network "+runtime)
		}
	}
	return missing, nil
}
