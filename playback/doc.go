// Package playback answers the commands a tool runs during a test from a
// fixture document instead of a real shell.
//
// A Session walks each action's rules in call order:
//
//	doc, _ := fixtures.Load("testdata/deploy.yaml")
//	session := playback.NewSession(doc)
//
//	rsp, err := session.Intercept("stop", "kubectl scale -n bl01t statefulset bl01t-ea-test-01 --replicas=0")
//
// The first call to an action is held against its first rule, the second
// against the second, and so on. An out-of-order or unmatched command fails
// immediately with the expected pattern, the actual command and a diff.
//
// Code under test that takes a shell.Commander runs unmodified:
//
//	checker := session.CommanderFor("checks")
//	err := shell.Preflight(ctx, checker, shell.ToolRequirement{Name: "kubectl"})
//
// Recorder does the reverse: it wraps a real Commander and writes what
// happened into a document that Sessions can replay later.
package playback
