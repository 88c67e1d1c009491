package stack

import "strings"

// Mount binds a named volume or a host path into a container.
type Mount struct {
	Source   string // volume name or host path
	Target   string
	ReadOnly bool
}

// Bind reports whether the mount source is a host path rather than a
// named volume.
func (m Mount) Bind() bool {
	return strings.ContainsAny(m.Source, "/\\") ||
		strings.HasPrefix(m.Source, ".") ||
		strings.HasPrefix(m.Source, "~")
}

// String renders the mount in compose short syntax.
func (m Mount) String() string {
	s := m.Target
	if m.Source != "" {
		s = m.Source + ":" + m.Target
	}
	if m.ReadOnly {
		s += ":ro"
	}
	return s
}

// ParseMount parses a compose short-syntax volume string like
// "n8n_data:/home/node/.n8n" or "./scripts:/data/py:ro".
func ParseMount(s string) Mount {
	m := Mount{}
	parts := strings.Split(s, ":")
	switch len(parts) {
	case 1:
		m.Target = parts[0]
	case 2:
		m.Source = parts[0]
		m.Target = parts[1]
	default:
		m.Source = parts[0]
		m.Target = parts[1]
		for _, flag := range strings.Split(parts[2], ",") {
			if flag == "ro" {
				m.ReadOnly = true
			}
		}
	}
	return m
}
