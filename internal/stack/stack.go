package stack

import "sort"

// Stack is a parsed deployment descriptor: the services to run plus the
// volumes and networks they share.
type Stack struct {
	Name     string
	Source   string // descriptor path this stack was loaded from
	Services map[string]*Service
	Volumes  map[string]Volume
	Networks map[string]Network
}

// Service represents one container of the stack. A service is either pulled
// (Image set) or built from local sources (Build set).
type Service struct {
	Name      string
	Image     string
	Build     *Build
	Ports     []PortMapping
	Mounts    []Mount
	Env       map[string]string
	Networks  []string
	DependsOn []string
	Restart   string // always, unless-stopped, on-failure, no
}

// Build points at a local build context.
type Build struct {
	Context    string
	Dockerfile string // relative to Context, default "Dockerfile"
}

// Volume is a top-level volume declaration. External volumes are managed
// outside the stack and must exist before deployment.
type Volume struct {
	Name     string
	Driver   string
	External bool
}

// Network is a top-level network declaration.
type Network struct {
	Name     string
	Driver   string // default "bridge"
	External bool
}

// ServiceNames returns the service names in stable order.
func (s *Stack) ServiceNames() []string {
	names := make([]string, 0, len(s.Services))
	for name := range s.Services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PublicURL returns the externally reachable URL a service advertises
// through its environment, or "" when it advertises none. WEBHOOK_URL is
// not consulted: on the ticket service it names a forwarding target, not
// an address of its own.
func (svc *Service) PublicURL() string {
	host := svc.Env["N8N_HOST"]
	if host == "" {
		return ""
	}
	proto := svc.Env["N8N_PROTOCOL"]
	if proto == "" {
		proto = "https"
	}
	return proto + "://" + host + "/"
}

// DockerfileName returns the Dockerfile path relative to the build context.
func (b *Build) DockerfileName() string {
	if b.Dockerfile != "" {
		return b.Dockerfile
	}
	return "Dockerfile"
}
