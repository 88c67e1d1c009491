package wizard

import (
	"os"
	"os/exec"
	"path/filepath"
)

// DetectionResult holds what was auto-detected on the system.
type DetectionResult struct {
	DockerAvailable bool
	EnvFile         string // path if an env file already exists, empty otherwise
	Descriptor      string // path if a compose descriptor was found
	SecretsDir      string // directory holding service.json, if any
}

// Detector abstracts filesystem and path lookups for testing.
type Detector interface {
	LookPath(name string) (string, error)
	Stat(path string) (os.FileInfo, error)
	Glob(pattern string) ([]string, error)
}

// OSDetector uses the real OS for detection.
type OSDetector struct{}

func (OSDetector) LookPath(name string) (string, error)  { return exec.LookPath(name) }
func (OSDetector) Stat(path string) (os.FileInfo, error) { return os.Stat(path) }
func (OSDetector) Glob(pattern string) ([]string, error) { return filepath.Glob(pattern) }

// Detect scans the working directory for the pieces a deployment needs.
func Detect(d Detector) DetectionResult {
	if d == nil {
		d = OSDetector{}
	}

	result := DetectionResult{}

	// Check for the docker binary
	if _, err := d.LookPath("docker"); err == nil {
		result.DockerAvailable = true
	}

	if _, err := d.Stat(".env"); err == nil {
		result.EnvFile = ".env"
	}

	// Look for a compose descriptor, preferring the deploy/ layout
	descriptorPaths := []string{
		"deploy/docker-compose.yml",
		"deploy/docker-compose.yaml",
		"docker-compose.yml",
		"docker-compose.yaml",
		"compose.yml",
		"compose.yaml",
	}
	for _, p := range descriptorPaths {
		if _, err := d.Stat(p); err == nil {
			result.Descriptor = p
			break
		}
	}

	// Look for a directory holding the gmail credential files
	secretsDirs := []string{"secrets", "deploy/secrets"}
	for _, dir := range secretsDirs {
		if _, err := d.Stat(filepath.Join(dir, "service.json")); err == nil {
			result.SecretsDir = "./" + dir
			break
		}
	}
	if result.SecretsDir == "" {
		if matches, err := d.Glob("*/service.json"); err == nil && len(matches) > 0 {
			result.SecretsDir = "./" + filepath.Dir(matches[0])
		}
	}

	return result
}
