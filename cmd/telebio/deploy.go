package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cehokocof/telebio/internal/deploy"
)

var (
	deployOutput string
	deployForce  bool
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Render container deployment files",
	Long: `Render the files for running telebio in a container.

  dockerfile   Dockerfile and .dockerignore
  compose      docker-compose.yaml with session and data volumes
  all          everything above

Examples:
  telebio deploy all                    # Write into the current directory
  telebio deploy compose --output /srv  # Write elsewhere`,
}

var deployDockerfileCmd = &cobra.Command{
	Use:   "dockerfile",
	Short: "Render the Dockerfile and .dockerignore",
	RunE: func(_ *cobra.Command, _ []string) error {
		return renderDeploy(deployDockerfile)
	},
}

var deployComposeCmd = &cobra.Command{
	Use:   "compose",
	Short: "Render docker-compose.yaml",
	RunE: func(_ *cobra.Command, _ []string) error {
		return renderDeploy(deployCompose)
	},
}

var deployAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Render every deployment file",
	RunE: func(_ *cobra.Command, _ []string) error {
		if err := renderDeploy(deployDockerfile); err != nil {
			return err
		}
		return renderDeploy(deployCompose)
	},
}

func init() {
	deployCmd.PersistentFlags().StringVar(&deployOutput, "output", ".", "Directory to write into")
	deployCmd.PersistentFlags().BoolVar(&deployForce, "force", false, "Overwrite existing files")

	deployCmd.AddCommand(deployDockerfileCmd)
	deployCmd.AddCommand(deployComposeCmd)
	deployCmd.AddCommand(deployAllCmd)

	rootCmd.AddCommand(deployCmd)
}

// artifact is one rendered file, named relative to the output directory.
type artifact struct {
	name    string
	content []byte
}

func deployDockerfile() ([]artifact, error) {
	d := deploy.Default()
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("image descriptor: %w", err)
	}
	return []artifact{
		{name: deploy.DockerfileName, content: []byte(d.Render())},
		{name: deploy.DockerignoreName, content: []byte(deploy.Dockerignore())},
	}, nil
}

func deployCompose() ([]artifact, error) {
	out, err := deploy.RenderCompose()
	if err != nil {
		return nil, err
	}
	return []artifact{{name: deploy.ComposeName, content: out}}, nil
}

func renderDeploy(render func() ([]artifact, error)) error {
	files, err := render()
	if err != nil {
		return err
	}

	for _, f := range files {
		path := filepath.Join(deployOutput, f.name)
		if err := deploy.WriteArtifact(path, f.content, deployForce); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
	}
	return nil
}
