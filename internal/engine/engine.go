package engine

import (
	"context"
	"fmt"
	"io"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/api/types/volume"
	"github.com/docker/docker/client"

	"github.com/mamisoa/lego/internal/stack"
)

// Labels stamped on every resource the engine manages. Teardown and status
// are scoped by them, so resources created outside lego are never touched.
const (
	labelStack      = "lego.stack"
	labelService    = "lego.service"
	labelConfigHash = "lego.config-hash"
	labelRun        = "lego.run"
)

// stopTimeout is how long a container gets to exit before it is killed,
// in seconds.
const stopTimeout = 10

// API is the slice of the Docker client the engine needs. Tests run
// against a fake.
type API interface {
	Ping(ctx context.Context) (types.Ping, error)

	NetworkInspect(ctx context.Context, id string, opts network.InspectOptions) (network.Inspect, error)
	NetworkCreate(ctx context.Context, name string, opts network.CreateOptions) (network.CreateResponse, error)
	NetworkRemove(ctx context.Context, id string) error

	VolumeInspect(ctx context.Context, id string) (volume.Volume, error)
	VolumeCreate(ctx context.Context, opts volume.CreateOptions) (volume.Volume, error)
	VolumeRemove(ctx context.Context, id string, force bool) error

	ImageInspectWithRaw(ctx context.Context, id string) (types.ImageInspect, []byte, error)
	ImagePull(ctx context.Context, ref string, opts image.PullOptions) (io.ReadCloser, error)
	ImageBuild(ctx context.Context, buildCtx io.Reader, opts types.ImageBuildOptions) (types.ImageBuildResponse, error)

	ContainerList(ctx context.Context, opts container.ListOptions) ([]types.Container, error)
	ContainerInspect(ctx context.Context, id string) (types.ContainerJSON, error)
	ContainerCreate(ctx context.Context, cfg *container.Config, hostCfg *container.HostConfig, netCfg *network.NetworkingConfig, name string) (container.CreateResponse, error)
	ContainerStart(ctx context.Context, id string, opts container.StartOptions) error
	ContainerStop(ctx context.Context, id string, opts container.StopOptions) error
	ContainerRemove(ctx context.Context, id string, opts container.RemoveOptions) error
}

// Engine converges a stack against a Docker daemon.
type Engine struct {
	api     API
	project string

	// Progress receives one line per engine step when set.
	Progress func(msg string)
}

// New returns an engine for the given project name backed by api.
func New(api API, project string) *Engine {
	return &Engine{api: api, project: project}
}

// Connect builds an engine on the local Docker daemon, honoring the
// standard DOCKER_HOST family of variables.
func Connect(project string) (*Engine, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("docker client: %w", err)
	}
	return New(dockerAPI{cli}, project), nil
}

// dockerAPI adapts *client.Client to the narrower API interface.
type dockerAPI struct {
	cli *client.Client
}

func (d dockerAPI) Ping(ctx context.Context) (types.Ping, error) {
	return d.cli.Ping(ctx)
}

func (d dockerAPI) NetworkInspect(ctx context.Context, id string, opts network.InspectOptions) (network.Inspect, error) {
	return d.cli.NetworkInspect(ctx, id, opts)
}

func (d dockerAPI) NetworkCreate(ctx context.Context, name string, opts network.CreateOptions) (network.CreateResponse, error) {
	return d.cli.NetworkCreate(ctx, name, opts)
}

func (d dockerAPI) NetworkRemove(ctx context.Context, id string) error {
	return d.cli.NetworkRemove(ctx, id)
}

func (d dockerAPI) VolumeInspect(ctx context.Context, id string) (volume.Volume, error) {
	return d.cli.VolumeInspect(ctx, id)
}

func (d dockerAPI) VolumeCreate(ctx context.Context, opts volume.CreateOptions) (volume.Volume, error) {
	return d.cli.VolumeCreate(ctx, opts)
}

func (d dockerAPI) VolumeRemove(ctx context.Context, id string, force bool) error {
	return d.cli.VolumeRemove(ctx, id, force)
}

func (d dockerAPI) ImageInspectWithRaw(ctx context.Context, id string) (types.ImageInspect, []byte, error) {
	return d.cli.ImageInspectWithRaw(ctx, id)
}

func (d dockerAPI) ImagePull(ctx context.Context, ref string, opts image.PullOptions) (io.ReadCloser, error) {
	return d.cli.ImagePull(ctx, ref, opts)
}

func (d dockerAPI) ImageBuild(ctx context.Context, buildCtx io.Reader, opts types.ImageBuildOptions) (types.ImageBuildResponse, error) {
	return d.cli.ImageBuild(ctx, buildCtx, opts)
}

func (d dockerAPI) ContainerList(ctx context.Context, opts container.ListOptions) ([]types.Container, error) {
	return d.cli.ContainerList(ctx, opts)
}

func (d dockerAPI) ContainerInspect(ctx context.Context, id string) (types.ContainerJSON, error) {
	return d.cli.ContainerInspect(ctx, id)
}

func (d dockerAPI) ContainerCreate(ctx context.Context, cfg *container.Config, hostCfg *container.HostConfig, netCfg *network.NetworkingConfig, name string) (container.CreateResponse, error) {
	return d.cli.ContainerCreate(ctx, cfg, hostCfg, netCfg, nil, name)
}

func (d dockerAPI) ContainerStart(ctx context.Context, id string, opts container.StartOptions) error {
	return d.cli.ContainerStart(ctx, id, opts)
}

func (d dockerAPI) ContainerStop(ctx context.Context, id string, opts container.StopOptions) error {
	return d.cli.ContainerStop(ctx, id, opts)
}

func (d dockerAPI) ContainerRemove(ctx context.Context, id string, opts container.RemoveOptions) error {
	return d.cli.ContainerRemove(ctx, id, opts)
}

func (e *Engine) progressf(format string, args ...any) {
	if e.Progress != nil {
		e.Progress(fmt.Sprintf(format, args...))
	}
}

// containerName returns the runtime name for a service's container.
func (e *Engine) containerName(service string) string {
	return e.project + "-" + service
}

// volumeName returns the runtime name for a declared volume. External
// volumes keep their declared name; managed ones are scoped to the project.
func (e *Engine) volumeName(name string, v stack.Volume) string {
	if v.External {
		return name
	}
	return e.project + "_" + name
}

// networkName returns the runtime name for a declared network.
func (e *Engine) networkName(name string, n stack.Network) string {
	if n.External {
		return name
	}
	return e.project + "_" + name
}

func (e *Engine) labels(service, hash, runID string) map[string]string {
	return map[string]string{
		labelStack:      e.project,
		labelService:    service,
		labelConfigHash: hash,
		labelRun:        runID,
	}
}

func (e *Engine) resourceLabels() map[string]string {
	return map[string]string{labelStack: e.project}
}
