package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/network"
)

// configHash fingerprints everything that defines a container: the exact
// image content plus the create payload. Containers whose stored hash
// matches the desired one are left alone by Up. The hash is computed
// before labels are stamped so the per-run label cannot perturb it.
func configHash(imageID string, cfg *container.Config, hostCfg *container.HostConfig, netCfg *network.NetworkingConfig) string {
	payload := struct {
		ImageID string
		Config  *container.Config
		Host    *container.HostConfig
		Network *network.NetworkingConfig
	}{imageID, cfg, hostCfg, netCfg}

	raw, err := json.Marshal(payload)
	if err != nil {
		// the docker API types always marshal
		return ""
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
