package playback

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flanksource/understudy/shell"
)

func TestCommanderRun(t *testing.T) {
	doc := mustParse(t, `
deploy:
  - cmd: helm upgrade --install
    rsp: deployed
  - cmd: kubectl get pod -o json
    rsp:
      phase: Running
`)
	session := NewSession(doc)
	cmdr := session.CommanderFor("deploy")

	result, err := cmdr.Run(context.Background(), "helm upgrade --install bl01t-ea-test-01", shell.Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, "deployed", result.Output())
	assert.False(t, result.Failed())

	result, err = cmdr.Run(context.Background(), "kubectl get pod -o json", shell.Options{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"phase":"Running"}`, result.Stdout)
}

func TestCommanderSimulatedFailure(t *testing.T) {
	doc := mustParse(t, `
stop:
  - cmd: kubectl scale --replicas=0
    rsp: false
  - cmd: kubectl scale --replicas=0
    rsp: false
`)
	session := NewSession(doc)
	cmdr := session.CommanderFor("stop")

	result, err := cmdr.Run(context.Background(), "kubectl scale --replicas=0 statefulset/bl01t-ea-test-01", shell.Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCommandFailed)
	require.NotNil(t, result)
	assert.Equal(t, 1, result.ExitCode)

	// TolerateError mirrors shell.Local: the failure lands in the result,
	// not the error.
	result, err = cmdr.Run(context.Background(), "kubectl scale --replicas=0 statefulset/bl01t-ea-test-01", shell.Options{TolerateError: true})
	require.NoError(t, err)
	assert.Equal(t, 1, result.ExitCode)
	assert.True(t, result.Failed())
}

func TestCommanderSequencingErrorsAreNeverTolerated(t *testing.T) {
	doc := mustParse(t, `
stop:
  - cmd: kubectl scale
`)
	session := NewSession(doc)

	_, err := session.CommanderFor("stop").Run(context.Background(), "helm delete bl01t-ea-test-01", shell.Options{TolerateError: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnexpectedCommand)
}

func TestCommanderFollowsSelection(t *testing.T) {
	doc := mustParse(t, `
start:
  - cmd: kubectl scale -n bl01t statefulset bl01t-ea-test-01 --replicas=1
    rsp: statefulset.apps/bl01t-ea-test-01 scaled
stop:
  - cmd: kubectl scale -n bl01t statefulset bl01t-ea-test-01 --replicas=0
    rsp: statefulset.apps/bl01t-ea-test-01 scaled
`)
	session := NewSession(doc)
	cmdr := session.Commander()

	_, err := cmdr.Run(context.Background(), "kubectl scale -n bl01t statefulset bl01t-ea-test-01 --replicas=1", shell.Options{})
	require.Error(t, err)
	assert.ErrorContains(t, err, "no action selected")

	require.NoError(t, session.Select("start"))
	result, err := cmdr.Run(context.Background(), "kubectl scale -n bl01t statefulset bl01t-ea-test-01 --replicas=1", shell.Options{})
	require.NoError(t, err)
	assert.Equal(t, "statefulset.apps/bl01t-ea-test-01 scaled", result.Output())

	require.NoError(t, session.Select("stop"))
	_, err = cmdr.Run(context.Background(), "kubectl scale -n bl01t statefulset bl01t-ea-test-01 --replicas=0", shell.Options{})
	require.NoError(t, err)
	require.NoError(t, session.Verify())
}

func TestCommanderContextCancelled(t *testing.T) {
	session := NewSession(mustParse(t, "stop:\n  - cmd: kubectl scale\n"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := session.CommanderFor("stop").Run(ctx, "kubectl scale --replicas=0", shell.Options{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, session.Remaining("stop"))
}

func TestCommanderPreflight(t *testing.T) {
	doc := mustParse(t, `
checks:
  - cmd: kubectl version --client
    rsp: "Client Version: v1.31.2"
  - cmd: helm version
    rsp: 'version.BuildInfo{Version:"v3.16.1"}'
`)
	session := NewSession(doc)

	err := shell.Preflight(context.Background(), session.CommanderFor("checks"),
		shell.ToolRequirement{Name: "kubectl", VersionCommand: "kubectl version --client", Constraint: ">= 1.30"},
		shell.ToolRequirement{Name: "helm", VersionCommand: "helm version", Constraint: ">= 3.10"},
	)
	require.NoError(t, err)
	require.NoError(t, session.Verify())
}
