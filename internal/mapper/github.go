// Package mapper normalizes provider webhook payloads into canonical fact
// inputs. Mapping is pure so it can be tested without a database.
package mapper

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"factlog.app/api/internal/model"
)

const summaryMaxLength = 200

type githubPayload struct {
	Action string `json:"action"`
	Issue  *struct {
		Number    int    `json:"number"`
		Title     string `json:"title"`
		Body      string `json:"body"`
		HTMLURL   string `json:"html_url"`
		User      struct {
			Login string `json:"login"`
		} `json:"user"`
		Labels []struct {
			Name string `json:"name"`
		} `json:"labels"`
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	} `json:"issue"`
	PullRequest *struct {
		Number    int    `json:"number"`
		Title     string `json:"title"`
		Body      string `json:"body"`
		HTMLURL   string `json:"html_url"`
		User      struct {
			Login string `json:"login"`
		} `json:"user"`
		Merged    bool      `json:"merged"`
		Draft     bool      `json:"draft"`
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	} `json:"pull_request"`
	Commits []githubCommit `json:"commits"`
	Ref     string         `json:"ref"`
	Repository struct {
		FullName string `json:"full_name"`
		HTMLURL  string `json:"html_url"`
	} `json:"repository"`
}

type githubCommit struct {
	ID      string `json:"id"`
	Message string `json:"message"`
	URL     string `json:"url"`
	Author  struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"author"`
	Timestamp time.Time `json:"timestamp"`
}

// GitHub maps a webhook event into zero or more fact inputs. Ping and
// unrecognized event types map to an empty result, not an error. Push
// events fan out to one fact per commit.
type GitHub struct{}

func NewGitHub() *GitHub {
	return &GitHub{}
}

func (m *GitHub) Map(eventType string, body []byte) ([]model.FactInput, error) {
	var payload githubPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("parse github payload: %w", err)
	}

	switch eventType {
	case "issues":
		return m.mapIssue(payload, body)
	case "pull_request":
		return m.mapPullRequest(payload, body)
	case "push":
		return m.mapPush(payload)
	default:
		// ping and anything we do not recognize are acknowledged but
		// produce no facts.
		return nil, nil
	}
}

func (m *GitHub) mapIssue(payload githubPayload, raw []byte) ([]model.FactInput, error) {
	issue := payload.Issue
	if issue == nil {
		return nil, fmt.Errorf("issues event without issue payload")
	}

	repo := payload.Repository.FullName
	metadata, err := json.Marshal(map[string]any{
		"action":     payload.Action,
		"repository": repo,
		"number":     issue.Number,
		"author":     issue.User.Login,
		"labels":     labelNames(issue.Labels),
	})
	if err != nil {
		return nil, err
	}

	return []model.FactInput{{
		ExternalID: fmt.Sprintf("%s#%d", repo, issue.Number),
		Source:     model.SourceGitHub,
		SourceURL:  &issue.HTMLURL,
		Type:       "issue." + payload.Action,
		Title:      fmt.Sprintf("[%s] Issue #%d: %s", repo, issue.Number, issue.Title),
		Summary:    truncatePtr(issue.Body, summaryMaxLength),
		Content:    nilIfEmpty(issue.Body),
		Metadata:   metadata,
		Raw:        json.RawMessage(raw),
		OccurredAt: coalesceTime(issue.UpdatedAt, issue.CreatedAt),
	}}, nil
}

func (m *GitHub) mapPullRequest(payload githubPayload, raw []byte) ([]model.FactInput, error) {
	pr := payload.PullRequest
	if pr == nil {
		return nil, fmt.Errorf("pull_request event without pull_request payload")
	}

	repo := payload.Repository.FullName
	metadata, err := json.Marshal(map[string]any{
		"action":     payload.Action,
		"repository": repo,
		"number":     pr.Number,
		"author":     pr.User.Login,
		"merged":     pr.Merged,
		"draft":      pr.Draft,
	})
	if err != nil {
		return nil, err
	}

	return []model.FactInput{{
		ExternalID: fmt.Sprintf("%s#%d", repo, pr.Number),
		Source:     model.SourceGitHub,
		SourceURL:  &pr.HTMLURL,
		Type:       "pull_request." + payload.Action,
		Title:      fmt.Sprintf("[%s] PR #%d: %s", repo, pr.Number, pr.Title),
		Summary:    truncatePtr(pr.Body, summaryMaxLength),
		Content:    nilIfEmpty(pr.Body),
		Metadata:   metadata,
		Raw:        json.RawMessage(raw),
		OccurredAt: coalesceTime(pr.UpdatedAt, pr.CreatedAt),
	}}, nil
}

func (m *GitHub) mapPush(payload githubPayload) ([]model.FactInput, error) {
	if len(payload.Commits) == 0 {
		return nil, nil
	}

	repo := payload.Repository.FullName
	branch := strings.TrimPrefix(payload.Ref, "refs/heads/")
	if branch == "" {
		branch = "unknown"
	}

	inputs := make([]model.FactInput, 0, len(payload.Commits))
	for _, commit := range payload.Commits {
		sha := commit.ID
		if len(sha) > 7 {
			sha = sha[:7]
		}

		metadata, err := json.Marshal(map[string]any{
			"repository":  repo,
			"branch":      branch,
			"sha":         commit.ID,
			"author":      commit.Author.Name,
			"authorEmail": commit.Author.Email,
		})
		if err != nil {
			return nil, err
		}
		rawCommit, err := json.Marshal(commit)
		if err != nil {
			return nil, err
		}

		url := commit.URL
		inputs = append(inputs, model.FactInput{
			ExternalID: fmt.Sprintf("%s@%s", repo, sha),
			Source:     model.SourceGitHub,
			SourceURL:  &url,
			Type:       "push.commit",
			Title:      fmt.Sprintf("[%s] %s", repo, firstLine(commit.Message)),
			Summary:    truncatePtr(commit.Message, summaryMaxLength),
			Content:    nilIfEmpty(commit.Message),
			Metadata:   metadata,
			Raw:        rawCommit,
			OccurredAt: commit.Timestamp,
		})
	}
	return inputs, nil
}

func labelNames(labels []struct {
	Name string `json:"name"`
}) []string {
	names := make([]string, 0, len(labels))
	for _, l := range labels {
		names = append(names, l.Name)
	}
	return names
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// truncate shortens s to maxLength characters, replacing the tail with an
// ellipsis when it does not fit.
func truncate(s string, maxLength int) string {
	runes := []rune(s)
	if len(runes) <= maxLength {
		return s
	}
	return string(runes[:maxLength-3]) + "..."
}

func truncatePtr(s string, maxLength int) *string {
	t := truncate(s, maxLength)
	return &t
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func coalesceTime(primary, fallback time.Time) time.Time {
	if primary.IsZero() {
		return fallback
	}
	return primary
}
