// Package fixtures loads command mock tables: ordered YAML documents that
// pair regex command patterns with canned responses, grouped by action.
// Tests use them to stand in for kubectl, helm and git so deployment logic
// can run against a scripted cluster.
//
// # Document Format
//
// A fixture document is a mapping of action names to rule sequences:
//
//	deploy:
//	  - cmd: helm upgrade --install bl01t-ea-test-01
//	    rsp: Release "bl01t-ea-test-01" has been upgraded.
//	  - cmd: kubectl rollout status -n bl01t
//	    rsp: true
//	stop:
//	  - cmd: kubectl scale -n bl01t statefulset bl01t-ea-test-01 --replicas=0
//	    rsp: statefulset.apps/bl01t-ea-test-01 scaled
//
// Rule order is the expected call order: the first intercepted command is
// held against the first rule, the second against the second, and so on.
// Patterns are regular expressions anchored at the start of the command.
//
// # Responses
//
// The rsp value selects one of three shapes:
//
//   - string: returned as the command's stdout
//   - true / false (or omitted, which means true): bare success or a
//     simulated command failure
//   - mapping or sequence: returned as a parsed structured value
//
// # Guards
//
// A rule may carry a CEL expression that must also hold for the call:
//
//	logs:
//	  - cmd: kubectl logs
//	    rsp: pod started
//	    expr: command.contains("--follow") == false
//
// The expression sees command, action and index.
//
// # Markdown Fixtures
//
// Documents can live inside markdown files: every yaml code block is merged
// into one document, and front-matter carries options:
//
//	---
//	normalizeWhitespace: true
//	vars:
//	  namespace: bl01t
//	---
//
//	# Scaling
//
//	```yaml
//	stop:
//	  - cmd: kubectl scale -n {{.namespace}} statefulset
//	    rsp: true
//	```
//
// # Loading
//
// Load one file, or discover a tree of them:
//
//	doc, _ := fixtures.Load("testdata/deploy.yaml")
//	docs, _ := fixtures.LoadAll(fixtures.DefaultPatterns())
//
// Documents are immutable after loading; share one across tests and give
// each test its own playback session. See the playback package for
// intercepting commands against a loaded document.
package fixtures
