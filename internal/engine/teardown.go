package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"

	"github.com/mamisoa/lego/internal/stack"
)

// DownOptions control how much of the stack Down removes.
type DownOptions struct {
	// RemoveVolumes also deletes managed volumes. External volumes are
	// never touched.
	RemoveVolumes bool
}

// Down stops and removes every container carrying the stack label, then the
// managed networks and, on request, the managed volumes. Resources that are
// already gone are skipped, so Down can be re-run safely.
func (e *Engine) Down(ctx context.Context, st *stack.Stack, opts DownOptions) error {
	if _, err := e.api.Ping(ctx); err != nil {
		return fmt.Errorf("docker engine unreachable: %w", err)
	}

	containers, err := e.listStack(ctx)
	if err != nil {
		return err
	}

	// dependents go down first: reverse of the start order, with
	// containers from services no longer declared leading
	rank := map[string]int{}
	for i, name := range st.StartOrder() {
		rank[name] = i
	}
	sort.SliceStable(containers, func(i, j int) bool {
		ri, iok := rank[containers[i].Labels[labelService]]
		rj, jok := rank[containers[j].Labels[labelService]]
		if iok != jok {
			return !iok
		}
		return ri > rj
	})

	for _, c := range containers {
		name := containerDisplayName(c)
		e.progressf("stopping %s", name)
		timeout := stopTimeout
		if err := e.api.ContainerStop(ctx, c.ID, container.StopOptions{Timeout: &timeout}); err != nil && !client.IsErrNotFound(err) {
			return &ResourceError{Kind: "container", Name: name, Err: err}
		}
		if err := e.api.ContainerRemove(ctx, c.ID, container.RemoveOptions{Force: true}); err != nil && !client.IsErrNotFound(err) {
			return &ResourceError{Kind: "container", Name: name, Err: err}
		}
	}

	for _, name := range sortedKeys(st.Networks) {
		n := st.Networks[name]
		if n.External {
			continue
		}
		runtime := e.networkName(name, n)
		e.progressf("removing network %s", runtime)
		if err := e.api.NetworkRemove(ctx, runtime); err != nil && !client.IsErrNotFound(err) {
			return &ResourceError{Kind: "network", Name: runtime, Err: err}
		}
	}

	if opts.RemoveVolumes {
		for _, name := range sortedKeys(st.Volumes) {
			v := st.Volumes[name]
			if v.External {
				continue
			}
			runtime := e.volumeName(name, v)
			e.progressf("removing volume %s", runtime)
			if err := e.api.VolumeRemove(ctx, runtime, false); err != nil && !client.IsErrNotFound(err) {
				return &ResourceError{Kind: "volume", Name: runtime, Err: err}
			}
		}
	}
	return nil
}

func (e *Engine) listStack(ctx context.Context) ([]types.Container, error) {
	return e.api.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filters.NewArgs(filters.Arg("label", labelStack+"="+e.project)),
	})
}

func containerDisplayName(c types.Container) string {
	if len(c.Names) > 0 {
		name := c.Names[0]
		if len(name) > 0 && name[0] == '/' {
			name = name[1:]
		}
		return name
	}
	return c.ID
}
