package deploy_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cehokocof/telebio/internal/deploy"
)

func TestRender_PreservesDeclaredOrder(t *testing.T) {
	t.Parallel()

	d := deploy.Descriptor{
		Stages: []deploy.Stage{
			{
				From: "alpine:3.21",
				Steps: []deploy.Step{
					{Directive: "WORKDIR", Args: []string{"/app"}},
					{Directive: "COPY", Args: []string{".", "."}},
					{Directive: "RUN", Args: []string{"true"}},
					{Directive: "ENTRYPOINT", Args: []string{"app"}},
				},
			},
		},
	}

	want := strings.Join([]string{
		"FROM alpine:3.21",
		"WORKDIR /app",
		"COPY . .",
		"RUN true",
		`ENTRYPOINT ["app"]`,
		"",
	}, "\n")
	require.Equal(t, want, d.Render())
}

func TestRender_SwallowedAndFatalSteps(t *testing.T) {
	t.Parallel()

	out := deploy.Default().Render()
	lines := strings.Split(out, "\n")

	prefetch := -1
	build := -1
	for i, line := range lines {
		if line == "RUN go mod download || true" {
			prefetch = i
		}
		if strings.HasPrefix(line, "RUN go build") {
			build = i
		}
	}

	require.NotEqual(t, -1, prefetch, "dependency pre-fetch must render with the swallow suffix")
	require.NotEqual(t, -1, build, "build step missing")
	require.Greater(t, build, prefetch, "steps after the swallowed one must survive")
	require.NotContains(t, lines[build], "|| true", "the build step must be allowed to fail the image")
}

func TestDefault_ManifestCopyPrecedesSourceCopy(t *testing.T) {
	t.Parallel()

	out := deploy.Default().Render()
	manifest := strings.Index(out, "COPY go.mod go.sum ./")
	source := strings.Index(out, "COPY . .")

	require.NotEqual(t, -1, manifest)
	require.NotEqual(t, -1, source)
	require.Less(t, manifest, source)
}

func TestDefault_ManifestLayersStableUnderSourceChanges(t *testing.T) {
	t.Parallel()

	before := deploy.Default()
	after := deploy.Default()

	// A source change only affects steps at or after the full copy, here
	// modeled by a different build invocation. Everything the dependency
	// cache is keyed on must render byte-identically.
	last := len(after.Stages[0].Steps) - 1
	after.Stages[0].Steps[last].Args = []string{"go", "build", "-o", "/out/telebio", "./cmd/telebio"}

	a := before.Render()
	b := after.Render()

	cutA := strings.Index(a, "COPY . .")
	cutB := strings.Index(b, "COPY . .")
	require.NotEqual(t, -1, cutA)
	require.NotEqual(t, -1, cutB)
	require.Equal(t, a[:cutA], b[:cutB])
	require.NotEqual(t, a, b)
}

func TestDefault_SingleEntrypoint(t *testing.T) {
	t.Parallel()

	out := deploy.Default().Render()

	count := 0
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "ENTRYPOINT") || strings.HasPrefix(line, "CMD") {
			count++
			require.Equal(t, `ENTRYPOINT ["telebio", "run"]`, line)
		}
	}
	require.Equal(t, 1, count)
}

func TestDefault_EnvStepRemovalOnlyChangesEnvLines(t *testing.T) {
	t.Parallel()

	full := deploy.Default()
	require.Equal(t, "ENV", full.Stages[0].Steps[0].Directive,
		"build environment must be pinned before any dependency step")

	trimmed := deploy.Default()
	trimmed.Stages[0].Steps = trimmed.Stages[0].Steps[1:]

	var kept []string
	for _, line := range strings.Split(full.Render(), "\n") {
		if !strings.HasPrefix(line, "ENV ") {
			kept = append(kept, line)
		}
	}
	require.Equal(t, kept, strings.Split(trimmed.Render(), "\n"))
}

func TestValidate(t *testing.T) {
	t.Parallel()

	entry := deploy.Step{Directive: "ENTRYPOINT", Args: []string{"app"}}

	tests := []struct {
		name    string
		d       deploy.Descriptor
		wantErr string
	}{
		{
			name: "default descriptor is valid",
			d:    deploy.Default(),
		},
		{
			name:    "no stages",
			d:       deploy.Descriptor{},
			wantErr: "no stages",
		},
		{
			name: "stage without base image",
			d: deploy.Descriptor{Stages: []deploy.Stage{
				{Steps: []deploy.Step{entry}},
			}},
			wantErr: "no base image",
		},
		{
			name: "step without arguments",
			d: deploy.Descriptor{Stages: []deploy.Stage{
				{From: "alpine:3.21", Steps: []deploy.Step{
					{Directive: "WORKDIR"},
					entry,
				}},
			}},
			wantErr: "no arguments",
		},
		{
			name: "failure suppression outside RUN",
			d: deploy.Descriptor{Stages: []deploy.Stage{
				{From: "alpine:3.21", Steps: []deploy.Step{
					{Directive: "COPY", Args: []string{".", "."}, ContinueOnError: true},
					entry,
				}},
			}},
			wantErr: "only valid on RUN",
		},
		{
			name: "no entry point",
			d: deploy.Descriptor{Stages: []deploy.Stage{
				{From: "alpine:3.21", Steps: []deploy.Step{
					{Directive: "RUN", Args: []string{"true"}},
				}},
			}},
			wantErr: "no entry point",
		},
		{
			name: "two entry points",
			d: deploy.Descriptor{Stages: []deploy.Stage{
				{From: "alpine:3.21", Steps: []deploy.Step{entry, entry}},
			}},
			wantErr: "expected exactly one",
		},
		{
			name: "entry point before the final stage",
			d: deploy.Descriptor{Stages: []deploy.Stage{
				{From: "golang:1.24-alpine", Steps: []deploy.Step{entry}},
				{From: "alpine:3.21", Steps: []deploy.Step{entry}},
			}},
			wantErr: "belongs in the final stage",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.d.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestDockerfileArtifactInSync(t *testing.T) {
	t.Parallel()

	raw, err := os.ReadFile(filepath.Join("..", "..", deploy.DockerfileName))
	require.NoError(t, err)
	require.Equal(t, deploy.Default().Render(), string(raw),
		"run 'telebio deploy dockerfile --output . --force' after editing the descriptor")
}

func TestDockerignoreArtifactInSync(t *testing.T) {
	t.Parallel()

	raw, err := os.ReadFile(filepath.Join("..", "..", deploy.DockerignoreName))
	require.NoError(t, err)
	require.Equal(t, deploy.Dockerignore(), string(raw))
}

func TestWriteArtifact(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "Dockerfile")

	require.NoError(t, deploy.WriteArtifact(path, []byte("FROM scratch\n"), false))

	err := deploy.WriteArtifact(path, []byte("FROM alpine\n"), false)
	require.ErrorContains(t, err, "refusing to overwrite")

	require.NoError(t, deploy.WriteArtifact(path, []byte("FROM alpine\n"), true))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "FROM alpine\n", string(raw))
}
