package stack

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/compose-spec/compose-go/v2/cli"
	"github.com/compose-spec/compose-go/v2/dotenv"
	composetypes "github.com/compose-spec/compose-go/v2/types"

	"github.com/mamisoa/lego/internal/util"
)

// Options control how a descriptor is loaded.
type Options struct {
	Name    string // project name, defaults to "lego"
	EnvFile string // optional .env file merged under the process environment
}

// Load parses a compose-format descriptor into a Stack, interpolating
// ${VAR} references from the environment. The compose-spec loader is tried
// first; files it rejects fall back to a plain YAML parse.
func Load(ctx context.Context, path string, opts Options) (*Stack, error) {
	name := opts.Name
	if name == "" {
		name = "lego"
	}
	name = util.SanitizeID(name)
	path = util.ExpandPath(path)

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("descriptor: %w", err)
	}

	fns := []cli.ProjectOptionsFn{
		cli.WithName(name),
		cli.WithOsEnv,
	}
	if opts.EnvFile != "" {
		if _, err := os.Stat(opts.EnvFile); err == nil {
			fns = append(fns, cli.WithEnvFiles(opts.EnvFile))
		}
	}
	fns = append(fns, cli.WithDotEnv, cli.WithInterpolation(true))

	po, err := cli.NewProjectOptions([]string{path}, fns...)
	if err != nil {
		return nil, fmt.Errorf("project options: %w", err)
	}

	project, err := cli.ProjectFromOptions(ctx, po)
	if err != nil {
		st, ferr := loadFallback(path, name, opts.EnvFile)
		if ferr != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		return st, nil
	}

	return projectToStack(project, path, name), nil
}

func projectToStack(project *composetypes.Project, path, name string) *Stack {
	st := &Stack{
		Name:     name,
		Source:   path,
		Services: map[string]*Service{},
		Volumes:  map[string]Volume{},
		Networks: map[string]Network{},
	}

	for svcName, svc := range project.Services {
		service := &Service{
			Name:    svcName,
			Image:   svc.Image,
			Restart: svc.Restart,
			Env:     map[string]string{},
		}

		if svc.Build != nil {
			service.Build = &Build{
				Context:    svc.Build.Context,
				Dockerfile: svc.Build.Dockerfile,
			}
		}

		for _, p := range svc.Ports {
			hostPort, _ := strconv.Atoi(p.Published)
			proto := p.Protocol
			if proto == "" {
				proto = "tcp"
			}
			service.Ports = append(service.Ports, PortMapping{
				HostIP:        p.HostIP,
				HostPort:      hostPort,
				ContainerPort: int(p.Target),
				Protocol:      proto,
			})
		}

		for _, v := range svc.Volumes {
			service.Mounts = append(service.Mounts, Mount{
				Source:   v.Source,
				Target:   v.Target,
				ReadOnly: v.ReadOnly,
			})
		}

		// Nil values are pass-through entries resolved from the load
		// environment; unset ones are dropped.
		for key, val := range svc.Environment {
			if val != nil {
				service.Env[key] = *val
				continue
			}
			if v, ok := project.Environment[key]; ok {
				service.Env[key] = v
			}
		}

		for netName := range svc.Networks {
			service.Networks = append(service.Networks, netName)
		}
		sort.Strings(service.Networks)

		for depName := range svc.DependsOn {
			service.DependsOn = append(service.DependsOn, depName)
		}
		sort.Strings(service.DependsOn)

		st.Services[svcName] = service
	}

	for volName, vol := range project.Volumes {
		st.Volumes[volName] = Volume{
			Name:     volName,
			Driver:   vol.Driver,
			External: bool(vol.External),
		}
	}

	for netName, net := range project.Networks {
		st.Networks[netName] = Network{
			Name:     netName,
			Driver:   net.Driver,
			External: bool(net.External),
		}
	}

	return st
}

// Environment returns the process environment merged with the given env
// file. Process values take precedence, as compose does.
func Environment(envFile string) (map[string]string, error) {
	env := map[string]string{}
	for _, kv := range os.Environ() {
		k, v, _ := strings.Cut(kv, "=")
		env[k] = v
	}
	if envFile == "" {
		return env, nil
	}
	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return env, nil
		}
		return nil, err
	}
	merged, err := dotenv.GetEnvFromFile(env, []string{envFile})
	if err != nil {
		return nil, fmt.Errorf("env file %s: %w", envFile, err)
	}
	return merged, nil
}
