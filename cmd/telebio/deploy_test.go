package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cehokocof/telebio/internal/deploy"
)

func TestDeployCommand_HasFlags(t *testing.T) {
	flags := deployCmd.PersistentFlags()

	t.Run("output flag exists", func(t *testing.T) {
		flag := flags.Lookup("output")
		require.NotNil(t, flag)
		assert.Equal(t, ".", flag.DefValue)
	})

	t.Run("force flag exists", func(t *testing.T) {
		flag := flags.Lookup("force")
		require.NotNil(t, flag)
		assert.Equal(t, "false", flag.DefValue)
	})
}

func TestRenderDeploy_WritesArtifacts(t *testing.T) {
	tmp := t.TempDir()

	originalOutput := deployOutput
	originalForce := deployForce
	defer func() {
		deployOutput = originalOutput
		deployForce = originalForce
	}()
	deployOutput = tmp
	deployForce = false

	output := captureStdout(t, func() {
		require.NoError(t, renderDeploy(deployDockerfile))
		require.NoError(t, renderDeploy(deployCompose))
	})

	assert.Contains(t, output, "Wrote "+filepath.Join(tmp, deploy.DockerfileName))
	assert.Contains(t, output, "Wrote "+filepath.Join(tmp, deploy.ComposeName))

	for _, name := range []string{deploy.DockerfileName, deploy.DockerignoreName, deploy.ComposeName} {
		_, err := os.Stat(filepath.Join(tmp, name))
		assert.NoError(t, err, "%s should exist", name)
	}
}

func TestRenderDeploy_RefusesToOverwrite(t *testing.T) {
	tmp := t.TempDir()

	originalOutput := deployOutput
	originalForce := deployForce
	defer func() {
		deployOutput = originalOutput
		deployForce = originalForce
	}()
	deployOutput = tmp
	deployForce = false

	captureStdout(t, func() {
		require.NoError(t, renderDeploy(deployCompose))
	})

	err := renderDeploy(deployCompose)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refusing to overwrite")

	deployForce = true
	captureStdout(t, func() {
		assert.NoError(t, renderDeploy(deployCompose))
	})
}
