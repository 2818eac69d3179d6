package fixtures

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Markdown Fixtures", func() {
	Context("when extracting yaml blocks", func() {
		DescribeTable("should build documents from code blocks",
			func(content string, expectedActions []string, validate func(doc *Document)) {
				doc, err := loadMarkdown([]byte(content), "deploy.md")
				Expect(err).NotTo(HaveOccurred())
				Expect(doc.ActionNames()).To(Equal(expectedActions))
				if validate != nil {
					validate(doc)
				}
			},
			Entry("single block", `
# Deploy

`+"```yaml"+`
deploy:
  - cmd: helm upgrade --install bl01t-ea-test-01
    rsp: deployed
`+"```"+`
`, []string{"deploy"}, func(doc *Document) {
				Expect(doc.Source).To(Equal("deploy.md"))
				Expect(doc.Actions[0].Rules).To(HaveLen(1))
				Expect(doc.Actions[0].Rules[0].Response.Text).To(Equal("deployed"))
			}),

			Entry("blocks merge in document order", `
# Deploy

`+"```yaml"+`
deploy:
  - cmd: helm upgrade --install
`+"```"+`

# Stop

`+"```yaml"+`
stop:
  - cmd: kubectl scale --replicas=0
    rsp: scaled
stop_temp:
  - cmd: kubectl delete pod
`+"```"+`
`, []string{"deploy", "stop", "stop_temp"}, nil),

			Entry("non-yaml blocks are ignored", `
# Logs

`+"```bash"+`
kubectl logs -n bl01t bl01t-ea-test-01-0
`+"```"+`

`+"```yaml"+`
logs:
  - cmd: kubectl logs
    rsp: pod started
`+"```"+`
`, []string{"logs"}, nil),

			Entry("yml info strings also count", `
`+"```yml"+`
restart:
  - cmd: kubectl rollout restart
`+"```"+`
`, []string{"restart"}, nil),

			Entry("prose-only files yield an empty document", `
# Notes

Nothing to mock here yet.
`, []string{}, func(doc *Document) {
				Expect(doc.Len()).To(BeZero())
			}),
		)

		It("should reject duplicate actions across blocks", func() {
			content := `
# Deploy

` + "```yaml" + `
deploy:
  - cmd: helm upgrade
` + "```" + `

## Rollback

` + "```yaml" + `
deploy:
  - cmd: helm rollback
` + "```" + `
`
			_, err := loadMarkdown([]byte(content), "deploy.md")
			Expect(err).To(MatchError(ErrMalformed))
			Expect(err.Error()).To(ContainSubstring(`duplicate action "deploy"`))
			Expect(err.Error()).To(ContainSubstring("Rollback"))
		})

		It("should surface malformed rules with their section", func() {
			content := `
## Scaling

` + "```yaml" + `
stop:
  - rsp: scaled
` + "```" + `
`
			_, err := loadMarkdown([]byte(content), "scale.md")
			Expect(err).To(MatchError(ErrMalformed))
			Expect(err.Error()).To(ContainSubstring("scale.md (Scaling)"))
			Expect(err.Error()).To(ContainSubstring("missing cmd"))
		})
	})

	Context("when the file carries front-matter", func() {
		It("should apply document options and vars", func() {
			content := `---
normalizeWhitespace: false
vars:
  namespace: bl01t
---

` + "```yaml" + `
stop:
  - cmd: kubectl scale -n {{.namespace}} statefulset --replicas=0
    rsp: true
` + "```" + `
`
			doc, err := loadMarkdown([]byte(content), "stop.md")
			Expect(err).NotTo(HaveOccurred())
			Expect(doc.MatchOptions().NormalizeWhitespace).To(BeFalse())
			Expect(doc.Actions[0].Rules[0].Pattern).To(ContainSubstring("-n bl01t"))
		})

		It("should let load options override front-matter", func() {
			content := `---
normalizeWhitespace: false
---

` + "```yaml" + `
deploy:
  - cmd: helm upgrade
` + "```" + `
`
			doc, err := loadMarkdown([]byte(content), "deploy.md", WithWhitespaceNormalization(true))
			Expect(err).NotTo(HaveOccurred())
			Expect(doc.MatchOptions().NormalizeWhitespace).To(BeTrue())
		})

		It("should reject unparseable front-matter", func() {
			content := "---\nnormalizeWhitespace: [\n---\n"
			_, err := loadMarkdown([]byte(content), "bad.md")
			Expect(err).To(MatchError(ErrMalformed))
			Expect(err.Error()).To(ContainSubstring("front-matter"))
		})
	})
})
