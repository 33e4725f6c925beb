// Package deploy models the telebio container build as an ordered list
// of stages and renders the deployment artifacts shipped with the
// repository: the Dockerfile, a compose service and a systemd user unit.
//
// The model is deliberately dumb. Steps render in declared order, a step
// either fails the build or is explicitly allowed to fail, and the entry
// point appears exactly once. Everything the image build guarantees is
// visible in the Descriptor value, which is what the tests assert on.
package deploy

import (
	"fmt"
	"strconv"
	"strings"
)

// Step is a single build instruction.
type Step struct {
	Directive string
	Args      []string

	// ContinueOnError appends "|| true" so a failing RUN still commits
	// its layer. Only valid for RUN steps.
	ContinueOnError bool
}

// Stage is a FROM line followed by its steps.
type Stage struct {
	From string
	// Name is the stage alias referenced by later COPY --from steps.
	Name  string
	Steps []Step
}

// Descriptor is a complete multi-stage image build.
type Descriptor struct {
	// Header lines are rendered as leading comments.
	Header []string
	Stages []Stage
}

// Render produces the Dockerfile text for the descriptor. Stages and
// steps appear in declared order; Render never reorders or merges.
func (d Descriptor) Render() string {
	var b strings.Builder
	for _, line := range d.Header {
		b.WriteString("# ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	for i, stage := range d.Stages {
		if i > 0 || len(d.Header) > 0 {
			b.WriteString("\n")
		}
		b.WriteString(stage.fromLine())
		b.WriteString("\n")
		for _, step := range stage.Steps {
			b.WriteString(step.render())
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (s Stage) fromLine() string {
	if s.Name != "" {
		return "FROM " + s.From + " AS " + s.Name
	}
	return "FROM " + s.From
}

func (s Step) render() string {
	switch s.Directive {
	case "ENTRYPOINT", "CMD":
		quoted := make([]string, len(s.Args))
		for i, arg := range s.Args {
			quoted[i] = strconv.Quote(arg)
		}
		return s.Directive + " [" + strings.Join(quoted, ", ") + "]"
	case "RUN":
		line := "RUN " + strings.Join(s.Args, " ")
		if s.ContinueOnError {
			line += " || true"
		}
		return line
	default:
		return s.Directive + " " + strings.Join(s.Args, " ")
	}
}

// Validate checks the structural rules every descriptor must satisfy:
// at least one stage, a base image per stage, arguments on every step,
// failure suppression only on RUN steps, and exactly one entry point
// declared in the final stage.
func (d Descriptor) Validate() error {
	if len(d.Stages) == 0 {
		return fmt.Errorf("descriptor has no stages")
	}

	entrypoints := 0
	for si, stage := range d.Stages {
		if stage.From == "" {
			return fmt.Errorf("stage %d has no base image", si)
		}
		for pi, step := range stage.Steps {
			if step.Directive == "" {
				return fmt.Errorf("stage %d step %d has no directive", si, pi)
			}
			if len(step.Args) == 0 {
				return fmt.Errorf("stage %d step %d (%s) has no arguments", si, pi, step.Directive)
			}
			if step.ContinueOnError && step.Directive != "RUN" {
				return fmt.Errorf("stage %d step %d: ContinueOnError is only valid on RUN, not %s", si, pi, step.Directive)
			}
			if step.Directive == "ENTRYPOINT" || step.Directive == "CMD" {
				if si != len(d.Stages)-1 {
					return fmt.Errorf("entry point declared in stage %d, it belongs in the final stage", si)
				}
				entrypoints++
			}
		}
	}

	if entrypoints == 0 {
		return fmt.Errorf("descriptor declares no entry point")
	}
	if entrypoints > 1 {
		return fmt.Errorf("descriptor declares %d entry points, expected exactly one", entrypoints)
	}
	return nil
}
