package engine

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/api/types/volume"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"

	"github.com/mamisoa/lego/internal/stack"
)

// Up converges the daemon towards the stack: networks and managed volumes
// are created when absent, images are built or pulled, and containers are
// created, started, or replaced as their desired configuration dictates.
// Re-applying an unchanged stack changes nothing.
func (e *Engine) Up(ctx context.Context, st *stack.Stack) error {
	if _, err := e.api.Ping(ctx); err != nil {
		return fmt.Errorf("docker engine unreachable: %w", err)
	}

	runID := uuid.NewString()

	if err := e.ensureNetworks(ctx, st); err != nil {
		return err
	}
	if err := e.ensureVolumes(ctx, st); err != nil {
		return err
	}
	images, err := e.ensureImages(ctx, st)
	if err != nil {
		return err
	}

	for _, name := range st.StartOrder() {
		svc := st.Services[name]
		if err := e.convergeService(ctx, st, svc, images[name], runID); err != nil {
			return &ResourceError{Kind: "service", Name: name, Err: err}
		}
	}
	return nil
}

func (e *Engine) ensureNetworks(ctx context.Context, st *stack.Stack) error {
	for _, name := range sortedKeys(st.Networks) {
		n := st.Networks[name]
		runtime := e.networkName(name, n)

		_, err := e.api.NetworkInspect(ctx, runtime, network.InspectOptions{})
		if err == nil {
			continue
		}
		if !client.IsErrNotFound(err) {
			return &ResourceError{Kind: "network", Name: runtime, Err: err}
		}
		if n.External {
			return &ResourceError{Kind: "network", Name: runtime, Err: ErrExternalNetworkMissing}
		}

		driver := n.Driver
		if driver == "" {
			driver = "bridge"
		}
		e.progressf("creating network %s", runtime)
		if _, err := e.api.NetworkCreate(ctx, runtime, network.CreateOptions{
			Driver: driver,
			Labels: e.resourceLabels(),
		}); err != nil {
			// lost a race with a concurrent apply
			if _, ierr := e.api.NetworkInspect(ctx, runtime, network.InspectOptions{}); ierr == nil {
				continue
			}
			return &ResourceError{Kind: "network", Name: runtime, Err: err}
		}
	}
	return nil
}

func (e *Engine) ensureVolumes(ctx context.Context, st *stack.Stack) error {
	for _, name := range sortedKeys(st.Volumes) {
		v := st.Volumes[name]
		runtime := e.volumeName(name, v)

		_, err := e.api.VolumeInspect(ctx, runtime)
		if err == nil {
			continue
		}
		if !client.IsErrNotFound(err) {
			return &ResourceError{Kind: "volume", Name: runtime, Err: err}
		}
		if v.External {
			return &ResourceError{Kind: "volume", Name: runtime, Err: ErrExternalVolumeMissing}
		}

		e.progressf("creating volume %s", runtime)
		if _, err := e.api.VolumeCreate(ctx, volume.CreateOptions{
			Name:   runtime,
			Driver: v.Driver,
			Labels: e.resourceLabels(),
		}); err != nil {
			if _, ierr := e.api.VolumeInspect(ctx, runtime); ierr == nil {
				continue
			}
			return &ResourceError{Kind: "volume", Name: runtime, Err: err}
		}
	}
	return nil
}

// resolvedImage is a service's image after ensureImages ran: the reference
// containers are created from, and the content ID that feeds the config hash.
type resolvedImage struct {
	Ref string
	ID  string
}

func (e *Engine) ensureImages(ctx context.Context, st *stack.Stack) (map[string]resolvedImage, error) {
	images := map[string]resolvedImage{}
	for _, name := range st.ServiceNames() {
		svc := st.Services[name]

		ref := svc.Image
		if svc.Build != nil {
			// local sources are authoritative: rebuild on every apply and
			// let the layer cache decide whether anything changed
			ref = e.imageTag(name)
			if err := e.buildImage(ctx, svc, ref); err != nil {
				return nil, &ResourceError{Kind: "image", Name: ref, Err: err}
			}
		} else if err := e.ensurePulled(ctx, ref); err != nil {
			return nil, &ResourceError{Kind: "image", Name: ref, Err: err}
		}

		inspect, _, err := e.api.ImageInspectWithRaw(ctx, ref)
		if err != nil {
			return nil, &ResourceError{Kind: "image", Name: ref, Err: err}
		}
		images[name] = resolvedImage{Ref: ref, ID: inspect.ID}
	}
	return images, nil
}

func (e *Engine) imageTag(service string) string {
	return fmt.Sprintf("lego/%s-%s:latest", e.project, service)
}

func (e *Engine) convergeService(ctx context.Context, st *stack.Stack, svc *stack.Service, img resolvedImage, runID string) error {
	name := e.containerName(svc.Name)

	cfg, hostCfg, netCfg, err := e.containerSpec(st, svc, img.Ref)
	if err != nil {
		return err
	}
	hash := configHash(img.ID, cfg, hostCfg, netCfg)
	cfg.Labels = e.labels(svc.Name, hash, runID)

	existing, err := e.api.ContainerInspect(ctx, name)
	switch {
	case err == nil:
		current := ""
		if existing.Config != nil {
			current = existing.Config.Labels[labelConfigHash]
		}
		if current == hash {
			if existing.State != nil && existing.State.Running {
				e.progressf("%s up to date", name)
				return nil
			}
			e.progressf("starting %s", name)
			return e.api.ContainerStart(ctx, existing.ID, container.StartOptions{})
		}

		e.progressf("replacing %s", name)
		timeout := stopTimeout
		if err := e.api.ContainerStop(ctx, existing.ID, container.StopOptions{Timeout: &timeout}); err != nil && !client.IsErrNotFound(err) {
			return fmt.Errorf("stopping: %w", err)
		}
		if err := e.api.ContainerRemove(ctx, existing.ID, container.RemoveOptions{Force: true}); err != nil && !client.IsErrNotFound(err) {
			return fmt.Errorf("removing: %w", err)
		}
	case !client.IsErrNotFound(err):
		return err
	default:
		e.progressf("creating %s", name)
	}

	created, err := e.api.ContainerCreate(ctx, cfg, hostCfg, netCfg, name)
	if err != nil {
		return fmt.Errorf("creating: %w", err)
	}
	if err := e.api.ContainerStart(ctx, created.ID, container.StartOptions{}); err != nil {
		return fmt.Errorf("starting: %w", err)
	}
	return nil
}

// containerSpec translates a stack service into the create payload. Labels
// are left empty; the caller stamps them after hashing.
func (e *Engine) containerSpec(st *stack.Stack, svc *stack.Service, imageRef string) (*container.Config, *container.HostConfig, *network.NetworkingConfig, error) {
	env := make([]string, 0, len(svc.Env))
	for k, v := range svc.Env {
		env = append(env, k+"="+v)
	}
	sort.Strings(env)

	exposed := nat.PortSet{}
	bindings := nat.PortMap{}
	for _, p := range svc.Ports {
		port, err := nat.NewPort(p.Protocol, strconv.Itoa(p.ContainerPort))
		if err != nil {
			return nil, nil, nil, fmt.Errorf("port %s: %w", p, err)
		}
		exposed[port] = struct{}{}
		bindings[port] = append(bindings[port], nat.PortBinding{
			HostIP:   p.HostIP,
			HostPort: strconv.Itoa(p.HostPort),
		})
	}

	mounts := make([]mount.Mount, 0, len(svc.Mounts))
	for _, m := range svc.Mounts {
		mnt := mount.Mount{Target: m.Target, ReadOnly: m.ReadOnly}
		if m.Bind() {
			mnt.Type = mount.TypeBind
			mnt.Source = m.Source
		} else {
			mnt.Type = mount.TypeVolume
			mnt.Source = e.volumeName(m.Source, st.Volumes[m.Source])
		}
		mounts = append(mounts, mnt)
	}

	endpoints := map[string]*network.EndpointSettings{}
	for _, n := range svc.Networks {
		// the service name is an alias so containers reach each other by it
		endpoints[e.networkName(n, st.Networks[n])] = &network.EndpointSettings{
			Aliases: []string{svc.Name},
		}
	}

	cfg := &container.Config{
		Image:        imageRef,
		Env:          env,
		ExposedPorts: exposed,
	}
	hostCfg := &container.HostConfig{
		PortBindings:  bindings,
		Mounts:        mounts,
		RestartPolicy: restartPolicy(svc.Restart),
	}
	netCfg := &network.NetworkingConfig{EndpointsConfig: endpoints}
	return cfg, hostCfg, netCfg, nil
}

func restartPolicy(s string) container.RestartPolicy {
	switch s {
	case "always":
		return container.RestartPolicy{Name: container.RestartPolicyAlways}
	case "unless-stopped":
		return container.RestartPolicy{Name: container.RestartPolicyUnlessStopped}
	case "on-failure":
		return container.RestartPolicy{Name: container.RestartPolicyOnFailure}
	default:
		return container.RestartPolicy{Name: container.RestartPolicyDisabled}
	}
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
