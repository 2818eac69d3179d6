package shell

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/flanksource/commons/logger"
)

// semverRegex pulls the first x.y.z out of arbitrary version-command output.
var semverRegex = regexp.MustCompile(`v?(\d+\.\d+\.\d+(?:-[0-9A-Za-z.-]+)?)`)

// ToolRequirement declares an external tool a run needs, with an optional
// semver constraint on the version its command reports.
type ToolRequirement struct {
	Name string `json:"name" yaml:"name"`
	// VersionCommand prints the tool version; defaults to "<name> --version".
	VersionCommand string `json:"versionCommand,omitempty" yaml:"versionCommand,omitempty"`
	// Constraint is a semver range like ">= 1.25"; empty means any version.
	Constraint string `json:"constraint,omitempty" yaml:"constraint,omitempty"`
}

// ToolError reports a preflight failure for a single tool.
type ToolError struct {
	Tool  string
	Want  string
	Got   string
	Cause error
}

func (e *ToolError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("tool %s unavailable: %v", e.Tool, e.Cause)
	}
	if e.Got == "" {
		return fmt.Sprintf("tool %s did not report a version (want %s)", e.Tool, e.Want)
	}
	return fmt.Sprintf("tool %s version %s does not satisfy %s", e.Tool, e.Got, e.Want)
}

func (e *ToolError) Unwrap() error { return e.Cause }

// Preflight verifies each tool by running its version command through the
// Commander seam, so fixtures can stand in for the real binaries.
func Preflight(ctx context.Context, c Commander, tools ...ToolRequirement) error {
	for _, tool := range tools {
		if err := checkTool(ctx, c, tool); err != nil {
			return err
		}
	}
	return nil
}

func checkTool(ctx context.Context, c Commander, tool ToolRequirement) error {
	command := tool.VersionCommand
	if command == "" {
		command = tool.Name + " --version"
	}

	result, err := c.Run(ctx, command, Options{})
	if err != nil {
		return &ToolError{Tool: tool.Name, Cause: err}
	}

	if tool.Constraint == "" {
		logger.V(4).Infof("%s present", tool.Name)
		return nil
	}

	constraint, err := semver.NewConstraint(tool.Constraint)
	if err != nil {
		return fmt.Errorf("invalid constraint %q for %s: %w", tool.Constraint, tool.Name, err)
	}

	match := semverRegex.FindStringSubmatch(result.Combined())
	if match == nil {
		return &ToolError{Tool: tool.Name, Want: tool.Constraint, Got: strings.TrimSpace(result.Output())}
	}

	version, err := semver.NewVersion(match[1])
	if err != nil {
		return &ToolError{Tool: tool.Name, Want: tool.Constraint, Got: match[1], Cause: err}
	}

	if !constraint.Check(version) {
		return &ToolError{Tool: tool.Name, Want: tool.Constraint, Got: version.String()}
	}

	logger.V(4).Infof("%s %s satisfies %s", tool.Name, version, tool.Constraint)
	return nil
}
