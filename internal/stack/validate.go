package stack

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidationError describes a single descriptor problem.
type ValidationError struct {
	Field      string
	Message    string
	Suggestion string
}

// Validate checks the stack's structure: every service declares exactly one
// of image or build, published host ports are unique, named mounts and
// network references resolve to declarations, and depends_on chains are
// acyclic. Build contexts are checked on disk.
func (s *Stack) Validate() []ValidationError {
	var errs []ValidationError

	if len(s.Services) == 0 {
		return []ValidationError{{
			Field:      "services",
			Message:    "descriptor declares no services",
			Suggestion: "add at least one service to " + s.Source,
		}}
	}

	hostPorts := map[int]string{}

	for _, name := range s.ServiceNames() {
		svc := s.Services[name]
		field := "services." + name

		switch {
		case svc.Image == "" && svc.Build == nil:
			errs = append(errs, ValidationError{
				Field:      field,
				Message:    "neither image nor build is set",
				Suggestion: "pulled services need an image reference, local services a build context",
			})
		case svc.Image != "" && svc.Build != nil:
			errs = append(errs, ValidationError{
				Field:      field,
				Message:    "both image and build are set",
				Suggestion: "declare one or the other",
			})
		}

		if svc.Build != nil {
			if info, err := os.Stat(svc.Build.Context); err != nil || !info.IsDir() {
				errs = append(errs, ValidationError{
					Field:      field + ".build",
					Message:    fmt.Sprintf("build context not found: %s", svc.Build.Context),
					Suggestion: "check the path",
				})
			} else if _, err := os.Stat(filepath.Join(svc.Build.Context, svc.Build.DockerfileName())); err != nil {
				errs = append(errs, ValidationError{
					Field:      field + ".build",
					Message:    fmt.Sprintf("no %s in %s", svc.Build.DockerfileName(), svc.Build.Context),
					Suggestion: "add a Dockerfile to the build context",
				})
			}
		}

		for _, p := range svc.Ports {
			if p.HostPort <= 0 || p.ContainerPort <= 0 {
				errs = append(errs, ValidationError{
					Field:   field + ".ports",
					Message: fmt.Sprintf("invalid port mapping %q", p.String()),
				})
				continue
			}
			if prev, taken := hostPorts[p.HostPort]; taken && prev != name {
				errs = append(errs, ValidationError{
					Field:      field + ".ports",
					Message:    fmt.Sprintf("host port %d already published by %s", p.HostPort, prev),
					Suggestion: "every host port can be bound once",
				})
			}
			hostPorts[p.HostPort] = name
		}

		for _, m := range svc.Mounts {
			if m.Bind() {
				continue
			}
			if _, ok := s.Volumes[m.Source]; !ok {
				errs = append(errs, ValidationError{
					Field:      field + ".volumes",
					Message:    fmt.Sprintf("undeclared volume %q", m.Source),
					Suggestion: "declare it under the top-level volumes key",
				})
			}
		}

		for _, n := range svc.Networks {
			if _, ok := s.Networks[n]; !ok {
				errs = append(errs, ValidationError{
					Field:      field + ".networks",
					Message:    fmt.Sprintf("undeclared network %q", n),
					Suggestion: "declare it under the top-level networks key",
				})
			}
		}

		for _, dep := range svc.DependsOn {
			if _, ok := s.Services[dep]; !ok {
				errs = append(errs, ValidationError{
					Field:   field + ".depends_on",
					Message: fmt.Sprintf("unknown service %q", dep),
				})
			}
		}
	}

	if cycle := s.dependencyCycle(); len(cycle) > 0 {
		errs = append(errs, ValidationError{
			Field:      "services",
			Message:    "circular depends_on chain: " + strings.Join(cycle, " -> "),
			Suggestion: "break the cycle so services can start in order",
		})
	}

	return errs
}

// dependencyCycle returns one depends_on cycle as a name chain, or nil.
func (s *Stack) dependencyCycle() []string {
	const (
		unvisited = iota
		visiting
		done
	)
	state := map[string]int{}
	var cycle []string

	var visit func(name string, trail []string) bool
	visit = func(name string, trail []string) bool {
		switch state[name] {
		case visiting:
			for i, n := range trail {
				if n == name {
					cycle = append(append([]string{}, trail[i:]...), name)
					return true
				}
			}
			cycle = []string{name, name}
			return true
		case done:
			return false
		}
		state[name] = visiting
		trail = append(trail, name)
		for _, dep := range s.Services[name].DependsOn {
			if _, ok := s.Services[dep]; !ok {
				continue
			}
			if visit(dep, trail) {
				return true
			}
		}
		state[name] = done
		return false
	}

	for _, name := range s.ServiceNames() {
		if state[name] == unvisited && visit(name, nil) {
			return cycle
		}
	}
	return nil
}

// StartOrder returns the service names ordered so that every service
// appears after its dependencies. On a cycle, which Validate reports, the
// remaining services are appended in name order.
func (s *Stack) StartOrder() []string {
	order := make([]string, 0, len(s.Services))
	started := map[string]bool{}

	for len(order) < len(s.Services) {
		progressed := false
		for _, name := range s.ServiceNames() {
			if started[name] {
				continue
			}
			ready := true
			for _, dep := range s.Services[name].DependsOn {
				if _, ok := s.Services[dep]; ok && !started[dep] {
					ready = false
					break
				}
			}
			if ready {
				order = append(order, name)
				started[name] = true
				progressed = true
			}
		}
		if !progressed {
			for _, name := range s.ServiceNames() {
				if !started[name] {
					order = append(order, name)
					started[name] = true
				}
			}
		}
	}
	return order
}
