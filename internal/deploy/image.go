package deploy

import (
	"fmt"
	"os"
	"strings"
)

// Artifact file names used by the deploy command.
const (
	DockerfileName   = "Dockerfile"
	DockerignoreName = ".dockerignore"
	ComposeName      = "docker-compose.yaml"
)

const (
	builderImage = "golang:1.24-alpine"
	runtimeImage = "alpine:3.21"
)

// Default returns the telebio image build.
//
// The builder stage pins the build environment before anything is
// fetched, copies the module manifest alone and pre-fetches dependencies
// with the failure swallowed, so the dependency layer caches even while
// go.sum is in flux. The full source copy comes after, and the build
// itself is the one step that is allowed to fail the image.
func Default() Descriptor {
	return Descriptor{
		Header: []string{
			"telebio container image.",
			"Rendered by \"telebio deploy dockerfile\". Edit internal/deploy and",
			"re-render instead of patching this file; a test keeps them in sync.",
			"Log output is unbuffered by default, nothing extra to configure.",
		},
		Stages: []Stage{
			{
				From: builderImage,
				Name: "builder",
				Steps: []Step{
					{Directive: "ENV", Args: []string{"CGO_ENABLED=0", "GOFLAGS=-trimpath"}},
					{Directive: "WORKDIR", Args: []string{"/src"}},
					{Directive: "COPY", Args: []string{"go.mod", "go.sum", "./"}},
					{Directive: "RUN", Args: []string{"go", "mod", "download"}, ContinueOnError: true},
					{Directive: "COPY", Args: []string{".", "."}},
					{Directive: "RUN", Args: []string{"go", "build", "-ldflags", `"-s -w"`, "-o", "/out/telebio", "./cmd/telebio"}},
				},
			},
			{
				From: runtimeImage,
				Steps: []Step{
					{Directive: "RUN", Args: []string{"apk", "add", "--no-cache", "ca-certificates", "tzdata"}},
					{Directive: "WORKDIR", Args: []string{"/app"}},
					{Directive: "COPY", Args: []string{"--from=builder", "/out/telebio", "/usr/local/bin/telebio"}},
					{Directive: "COPY", Args: []string{"--from=builder", "/src/data", "./data"}},
					{Directive: "ENTRYPOINT", Args: []string{"telebio", "run"}},
				},
			},
		},
	}
}

// Dockerignore returns the build context exclusions. Session files carry
// live Telegram credentials and must never end up inside an image.
func Dockerignore() string {
	return strings.Join([]string{
		".git",
		".env",
		"# Session files hold login credentials, keep them out of the build context.",
		"*.session.json",
		"session/",
		"Dockerfile",
		"docker-compose.yaml",
	}, "\n") + "\n"
}

// WriteArtifact writes a rendered artifact to path. Existing files are
// left alone unless force is set.
func WriteArtifact(path string, content []byte, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("refusing to overwrite %s", path)
		}
	}
	// #nosec G306 -- deployment artifacts are not secrets.
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
