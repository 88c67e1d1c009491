package wizard

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// mockDetector implements Detector for testing.
type mockDetector struct {
	binaries map[string]bool
	files    map[string]bool
	globs    map[string][]string
}

func (m *mockDetector) LookPath(name string) (string, error) {
	if m.binaries[name] {
		return "/usr/bin/" + name, nil
	}
	return "", &os.PathError{Op: "lookpath", Path: name, Err: os.ErrNotExist}
}

type fakeFileInfo struct {
	name string
}

func (f fakeFileInfo) Name() string       { return f.name }
func (f fakeFileInfo) Size() int64        { return 0 }
func (f fakeFileInfo) Mode() os.FileMode  { return 0644 }
func (f fakeFileInfo) ModTime() time.Time { return time.Time{} }
func (f fakeFileInfo) IsDir() bool        { return false }
func (f fakeFileInfo) Sys() interface{}   { return nil }

func (m *mockDetector) Stat(path string) (os.FileInfo, error) {
	if m.files[path] {
		return fakeFileInfo{name: path}, nil
	}
	return nil, os.ErrNotExist
}

func (m *mockDetector) Glob(pattern string) ([]string, error) {
	return m.globs[pattern], nil
}

func TestDetectDocker(t *testing.T) {
	d := &mockDetector{binaries: map[string]bool{"docker": true}}
	result := Detect(d)
	assert.True(t, result.DockerAvailable)
}

func TestDetectNoDocker(t *testing.T) {
	d := &mockDetector{binaries: map[string]bool{}}
	result := Detect(d)
	assert.False(t, result.DockerAvailable)
}

func TestDetectEnvFile(t *testing.T) {
	d := &mockDetector{
		binaries: map[string]bool{},
		files:    map[string]bool{".env": true},
	}
	result := Detect(d)
	assert.Equal(t, ".env", result.EnvFile)
}

func TestDetectDescriptorPrefersDeployLayout(t *testing.T) {
	d := &mockDetector{
		binaries: map[string]bool{},
		files: map[string]bool{
			"deploy/docker-compose.yml": true,
			"docker-compose.yml":        true,
		},
	}
	result := Detect(d)
	assert.Equal(t, "deploy/docker-compose.yml", result.Descriptor)
}

func TestDetectDescriptorFallback(t *testing.T) {
	d := &mockDetector{
		binaries: map[string]bool{},
		files:    map[string]bool{"compose.yml": true},
	}
	result := Detect(d)
	assert.Equal(t, "compose.yml", result.Descriptor)
}

func TestDetectSecretsDir(t *testing.T) {
	d := &mockDetector{
		binaries: map[string]bool{},
		files:    map[string]bool{"secrets/service.json": true},
	}
	result := Detect(d)
	assert.Equal(t, "./secrets", result.SecretsDir)
}

func TestDetectSecretsDirViaGlob(t *testing.T) {
	d := &mockDetector{
		binaries: map[string]bool{},
		files:    map[string]bool{},
		globs:    map[string][]string{"*/service.json": {"creds/service.json"}},
	}
	result := Detect(d)
	assert.Equal(t, "./creds", result.SecretsDir)
}

func TestDetectNothing(t *testing.T) {
	d := &mockDetector{binaries: map[string]bool{}, files: map[string]bool{}}
	result := Detect(d)
	assert.False(t, result.DockerAvailable)
	assert.Empty(t, result.EnvFile)
	assert.Empty(t, result.Descriptor)
	assert.Empty(t, result.SecretsDir)
}
