package stack

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	yamlv3 "gopkg.in/yaml.v3"

	"github.com/mamisoa/lego/internal/util"
)

// loadFallback parses a descriptor with plain YAML when the compose-spec
// loader rejects it. Interpolation is applied manually first.
func loadFallback(path, name, envFile string) (*Stack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	env, err := Environment(envFile)
	if err != nil {
		return nil, err
	}
	content, err := util.ExpandEnvRefs(string(data), env)
	if err != nil {
		return nil, err
	}

	var raw rawCompose
	if err := yamlv3.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("yaml parse: %w", err)
	}

	st := &Stack{
		Name:     name,
		Source:   path,
		Services: map[string]*Service{},
		Volumes:  map[string]Volume{},
		Networks: map[string]Network{},
	}

	dir := filepath.Dir(path)

	for svcName, rs := range raw.Services {
		svc := &Service{
			Name:    svcName,
			Image:   rs.Image,
			Restart: rs.Restart,
			Env:     map[string]string(rs.Environment),
		}
		if svc.Env == nil {
			svc.Env = map[string]string{}
		}
		if rs.Build.Context != "" {
			ctxDir := util.ExpandPath(rs.Build.Context)
			if !filepath.IsAbs(ctxDir) {
				ctxDir = filepath.Join(dir, ctxDir)
			}
			svc.Build = &Build{Context: ctxDir, Dockerfile: rs.Build.Dockerfile}
		}
		for _, p := range rs.Ports {
			svc.Ports = append(svc.Ports, ParsePortMapping(p))
		}
		for _, v := range rs.Volumes {
			m := ParseMount(v)
			// bind sources are resolved against the descriptor directory,
			// as the compose loader does
			if m.Bind() {
				src := util.ExpandPath(m.Source)
				if !filepath.IsAbs(src) {
					src = filepath.Join(dir, src)
				}
				m.Source = src
			}
			svc.Mounts = append(svc.Mounts, m)
		}
		svc.Networks = rs.Networks
		svc.DependsOn = rs.DependsOn
		st.Services[svcName] = svc
	}

	for volName, rv := range raw.Volumes {
		st.Volumes[volName] = Volume{
			Name:     volName,
			Driver:   rv.Driver,
			External: bool(rv.External),
		}
	}
	for netName, rn := range raw.Networks {
		st.Networks[netName] = Network{
			Name:     netName,
			Driver:   rn.Driver,
			External: bool(rn.External),
		}
	}

	return st, nil
}

type rawCompose struct {
	Services map[string]rawService `yaml:"services"`
	Volumes  map[string]rawVolume  `yaml:"volumes"`
	Networks map[string]rawNetwork `yaml:"networks"`
}

type rawService struct {
	Image       string     `yaml:"image"`
	Build       rawBuild   `yaml:"build"`
	Restart     string     `yaml:"restart"`
	Ports       []string   `yaml:"ports"`
	Volumes     []string   `yaml:"volumes"`
	Environment rawEnv     `yaml:"environment"`
	Networks    rawStrings `yaml:"networks"`
	DependsOn   rawStrings `yaml:"depends_on"`
}

type rawVolume struct {
	Driver   string      `yaml:"driver"`
	External rawExternal `yaml:"external"`
}

type rawNetwork struct {
	Driver   string      `yaml:"driver"`
	External rawExternal `yaml:"external"`
}

// rawBuild accepts both the string shorthand and the mapping form.
type rawBuild struct {
	Context    string `yaml:"context"`
	Dockerfile string `yaml:"dockerfile"`
}

func (b *rawBuild) UnmarshalYAML(value *yamlv3.Node) error {
	if value.Kind == yamlv3.ScalarNode {
		b.Context = value.Value
		return nil
	}
	type plain rawBuild
	return value.Decode((*plain)(b))
}

// rawEnv accepts both the "KEY=value" list form and the mapping form.
type rawEnv map[string]string

func (e *rawEnv) UnmarshalYAML(value *yamlv3.Node) error {
	out := map[string]string{}
	switch value.Kind {
	case yamlv3.SequenceNode:
		var list []string
		if err := value.Decode(&list); err != nil {
			return err
		}
		for _, kv := range list {
			k, v, _ := strings.Cut(kv, "=")
			out[k] = v
		}
	case yamlv3.MappingNode:
		m := map[string]any{}
		if err := value.Decode(&m); err != nil {
			return err
		}
		for k, v := range m {
			if v == nil {
				out[k] = ""
				continue
			}
			out[k] = fmt.Sprintf("%v", v)
		}
	}
	*e = out
	return nil
}

// rawStrings accepts both a sequence and the mapping form compose allows
// for networks and depends_on.
type rawStrings []string

func (s *rawStrings) UnmarshalYAML(value *yamlv3.Node) error {
	switch value.Kind {
	case yamlv3.SequenceNode:
		var list []string
		if err := value.Decode(&list); err != nil {
			return err
		}
		*s = list
	case yamlv3.MappingNode:
		m := map[string]any{}
		if err := value.Decode(&m); err != nil {
			return err
		}
		for k := range m {
			*s = append(*s, k)
		}
		sort.Strings(*s)
	}
	return nil
}

// rawExternal accepts the boolean form and the legacy mapping form, which
// implies true.
type rawExternal bool

func (e *rawExternal) UnmarshalYAML(value *yamlv3.Node) error {
	if value.Kind == yamlv3.ScalarNode {
		var b bool
		if err := value.Decode(&b); err != nil {
			return err
		}
		*e = rawExternal(b)
		return nil
	}
	*e = true
	return nil
}
