package stack

import (
	"fmt"
	"strconv"
	"strings"
)

// PortMapping represents a published port.
type PortMapping struct {
	HostIP        string
	HostPort      int
	ContainerPort int
	Protocol      string // tcp or udp
}

// String returns the compose short form of the mapping.
func (p PortMapping) String() string {
	proto := ""
	if p.Protocol != "" && p.Protocol != "tcp" {
		proto = "/" + p.Protocol
	}
	s := fmt.Sprintf("%d:%d%s", p.HostPort, p.ContainerPort, proto)
	if p.HostIP != "" {
		s = p.HostIP + ":" + s
	}
	return s
}

// ParsePortMapping parses a compose port string like "8080:80" or
// "127.0.0.1:8080:80/tcp". A single port publishes the same port on the host.
func ParsePortMapping(s string) PortMapping {
	pm := PortMapping{Protocol: "tcp"}

	if idx := strings.Index(s, "/"); idx != -1 {
		pm.Protocol = s[idx+1:]
		s = s[:idx]
	}

	parts := strings.Split(s, ":")
	switch len(parts) {
	case 1:
		port, _ := strconv.Atoi(parts[0])
		pm.HostPort = port
		pm.ContainerPort = port
	case 2:
		pm.HostPort, _ = strconv.Atoi(parts[0])
		pm.ContainerPort, _ = strconv.Atoi(parts[1])
	case 3:
		pm.HostIP = parts[0]
		pm.HostPort, _ = strconv.Atoi(parts[1])
		pm.ContainerPort, _ = strconv.Atoi(parts[2])
	}
	return pm
}
