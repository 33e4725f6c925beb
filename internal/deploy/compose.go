package deploy

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Compose is the subset of the compose file format telebio emits.
type Compose struct {
	Services map[string]ComposeService `yaml:"services"`
	Volumes  map[string]*ComposeVolume `yaml:"volumes,omitempty"`
}

// ComposeService describes one service entry.
type ComposeService struct {
	Build           string            `yaml:"build,omitempty"`
	Image           string            `yaml:"image,omitempty"`
	EnvFile         []string          `yaml:"env_file,omitempty"`
	Environment     map[string]string `yaml:"environment,omitempty"`
	Volumes         []string          `yaml:"volumes,omitempty"`
	Restart         string            `yaml:"restart,omitempty"`
	StopGracePeriod string            `yaml:"stop_grace_period,omitempty"`
}

// ComposeVolume is a named volume with the default driver.
type ComposeVolume struct{}

// DefaultCompose returns the telebio service definition. Credentials come
// from an env_file next to the compose file. SESSION_NAME points the
// session file into the named volume so logins survive container
// replacement, and the phrase data is bind-mounted read-only so it can be
// edited without rebuilding the image.
func DefaultCompose() Compose {
	return Compose{
		Services: map[string]ComposeService{
			"telebio": {
				Build:   ".",
				Image:   "telebio:latest",
				EnvFile: []string{".env"},
				Environment: map[string]string{
					"SESSION_NAME": "session/telebio",
				},
				Volumes: []string{
					"telebio-session:/app/session",
					"./data:/app/data:ro",
				},
				Restart:         "unless-stopped",
				StopGracePeriod: "30s",
			},
		},
		Volumes: map[string]*ComposeVolume{
			"telebio-session": nil,
		},
	}
}

// RenderCompose marshals the default service definition.
func RenderCompose() ([]byte, error) {
	out, err := yaml.Marshal(DefaultCompose())
	if err != nil {
		return nil, fmt.Errorf("rendering compose file: %w", err)
	}
	return out, nil
}
