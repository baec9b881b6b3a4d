package mapper_test

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"factlog.app/api/internal/mapper"
	"factlog.app/api/internal/model"
)

var _ = Describe("GitHub", func() {
	var m *mapper.GitHub

	BeforeEach(func() {
		m = mapper.NewGitHub()
	})

	issueBody := func(action, body string) []byte {
		payload := map[string]any{
			"action": action,
			"issue": map[string]any{
				"number":     42,
				"title":      "Login page throws 500",
				"body":       body,
				"html_url":   "https://github.com/acme/webapp/issues/42",
				"user":       map[string]any{"login": "alice"},
				"labels":     []map[string]any{{"name": "bug"}, {"name": "p1"}},
				"created_at": "2026-08-01T10:00:00Z",
				"updated_at": "2026-08-02T15:30:00Z",
			},
			"repository": map[string]any{
				"full_name": "acme/webapp",
				"html_url":  "https://github.com/acme/webapp",
			},
		}
		raw, err := json.Marshal(payload)
		Expect(err).NotTo(HaveOccurred())
		return raw
	}

	Describe("issues events", func() {
		It("maps an issue to a single fact", func() {
			inputs, err := m.Map("issues", issueBody("opened", "It breaks on submit"))
			Expect(err).NotTo(HaveOccurred())
			Expect(inputs).To(HaveLen(1))

			fact := inputs[0]
			Expect(fact.ExternalID).To(Equal("acme/webapp#42"))
			Expect(fact.Source).To(Equal(model.SourceGitHub))
			Expect(fact.Type).To(Equal("issue.opened"))
			Expect(fact.Title).To(Equal("[acme/webapp] Issue #42: Login page throws 500"))
			Expect(*fact.Summary).To(Equal("It breaks on submit"))
			Expect(*fact.SourceURL).To(Equal("https://github.com/acme/webapp/issues/42"))
			Expect(fact.OccurredAt).To(Equal(time.Date(2026, 8, 2, 15, 30, 0, 0, time.UTC)))

			var metadata map[string]any
			Expect(json.Unmarshal(fact.Metadata, &metadata)).To(Succeed())
			Expect(metadata["action"]).To(Equal("opened"))
			Expect(metadata["number"]).To(BeEquivalentTo(42))
			Expect(metadata["author"]).To(Equal("alice"))
			Expect(metadata["labels"]).To(ConsistOf("bug", "p1"))
		})

		It("truncates long bodies to 200 characters with an ellipsis", func() {
			long := strings.Repeat("x", 300)
			inputs, err := m.Map("issues", issueBody("edited", long))
			Expect(err).NotTo(HaveOccurred())

			summary := *inputs[0].Summary
			Expect(summary).To(HaveLen(200))
			Expect(summary).To(HaveSuffix("..."))
			Expect(summary[:197]).To(Equal(long[:197]))
			Expect(*inputs[0].Content).To(Equal(long))
		})

		It("fails when the issue payload is missing", func() {
			_, err := m.Map("issues", []byte(`{"action":"opened","repository":{"full_name":"acme/webapp"}}`))
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("pull_request events", func() {
		It("maps a merged pull request with its flags", func() {
			payload := []byte(`{
				"action": "closed",
				"pull_request": {
					"number": 7,
					"title": "Add retries",
					"body": "Retries transient failures",
					"html_url": "https://github.com/acme/webapp/pull/7",
					"user": {"login": "bob"},
					"merged": true,
					"draft": false,
					"created_at": "2026-08-10T09:00:00Z",
					"updated_at": "2026-08-11T11:00:00Z"
				},
				"repository": {"full_name": "acme/webapp", "html_url": "https://github.com/acme/webapp"}
			}`)

			inputs, err := m.Map("pull_request", payload)
			Expect(err).NotTo(HaveOccurred())
			Expect(inputs).To(HaveLen(1))

			fact := inputs[0]
			Expect(fact.ExternalID).To(Equal("acme/webapp#7"))
			Expect(fact.Type).To(Equal("pull_request.closed"))
			Expect(fact.Title).To(Equal("[acme/webapp] PR #7: Add retries"))

			var metadata map[string]any
			Expect(json.Unmarshal(fact.Metadata, &metadata)).To(Succeed())
			Expect(metadata["merged"]).To(Equal(true))
			Expect(metadata["draft"]).To(Equal(false))
		})
	})

	Describe("push events", func() {
		pushBody := func(commitCount int) []byte {
			commits := make([]map[string]any, 0, commitCount)
			for i := 0; i < commitCount; i++ {
				commits = append(commits, map[string]any{
					"id":        fmt.Sprintf("%040d", i),
					"message":   fmt.Sprintf("commit %d\n\nlonger explanation", i),
					"url":       fmt.Sprintf("https://github.com/acme/webapp/commit/%d", i),
					"author":    map[string]any{"name": "carol", "email": "carol@acme.dev"},
					"timestamp": "2026-08-20T08:00:00Z",
				})
			}
			raw, err := json.Marshal(map[string]any{
				"ref":        "refs/heads/feature/retry",
				"commits":    commits,
				"repository": map[string]any{"full_name": "acme/webapp", "html_url": "https://github.com/acme/webapp"},
			})
			Expect(err).NotTo(HaveOccurred())
			return raw
		}

		It("fans out one fact per commit", func() {
			inputs, err := m.Map("push", pushBody(3))
			Expect(err).NotTo(HaveOccurred())
			Expect(inputs).To(HaveLen(3))

			seen := map[string]bool{}
			for _, fact := range inputs {
				Expect(fact.Type).To(Equal("push.commit"))
				Expect(seen[fact.ExternalID]).To(BeFalse(), "external ids must be distinct")
				seen[fact.ExternalID] = true
			}
		})

		It("uses the first 7 sha characters and strips the ref prefix", func() {
			inputs, err := m.Map("push", pushBody(1))
			Expect(err).NotTo(HaveOccurred())

			fact := inputs[0]
			Expect(fact.ExternalID).To(Equal("acme/webapp@0000000"))
			Expect(fact.Title).To(Equal("[acme/webapp] commit 0"))

			var metadata map[string]any
			Expect(json.Unmarshal(fact.Metadata, &metadata)).To(Succeed())
			Expect(metadata["branch"]).To(Equal("feature/retry"))
			Expect(metadata["sha"]).To(Equal(fmt.Sprintf("%040d", 0)))
		})

		It("yields zero facts for an empty commit list", func() {
			raw := []byte(`{"ref":"refs/heads/main","commits":[],"repository":{"full_name":"acme/webapp"}}`)
			inputs, err := m.Map("push", raw)
			Expect(err).NotTo(HaveOccurred())
			Expect(inputs).To(BeEmpty())
		})
	})

	Describe("other events", func() {
		It("ignores ping events", func() {
			inputs, err := m.Map("ping", []byte(`{"zen":"Keep it logically awesome.","repository":{"full_name":"acme/webapp"}}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(inputs).To(BeEmpty())
		})

		It("ignores unrecognized event types", func() {
			inputs, err := m.Map("workflow_run", []byte(`{"repository":{"full_name":"acme/webapp"}}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(inputs).To(BeEmpty())
		})

		It("fails on malformed JSON", func() {
			_, err := m.Map("issues", []byte(`{not json`))
			Expect(err).To(HaveOccurred())
		})
	})
})
