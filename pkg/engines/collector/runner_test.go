package collector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vulnsentinel/vulnsentinel/pkg/githubapi"
)

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "fix: heap overflow", firstLine("fix: heap overflow\n\nSigned-off-by: dev"))
	assert.Equal(t, "one liner", firstLine("one liner"))
	assert.Equal(t, "", firstLine(""))
}

func TestBuildEventRequestsSkipsMergeCommitsAndHandlesNilAuthors(t *testing.T) {
	now := time.Now()

	regular := githubapi.Commit{SHA: "abc123"}
	regular.Commit.Message = "merge pr #4"
	regular.Commit.Author.Date = now

	merge := githubapi.Commit{SHA: "def456"}
	merge.Commit.Message = "merge commit, should be skipped"
	merge.Author = &struct {
		Login string `json:"login"`
	}{Login: "alice"}
	merge.Parents = []struct {
		SHA string `json:"sha"`
	}{{SHA: "p1"}, {SHA: "p2"}}

	reqs := buildEventRequests("lib-1", "acme", "widget", []githubapi.Commit{regular, merge}, nil, nil, nil)

	if assert.Len(t, reqs, 1) {
		assert.Equal(t, "commit", reqs[0].Type)
		assert.Equal(t, "abc123", reqs[0].Ref)
		assert.Equal(t, "", reqs[0].Author)
		assert.Equal(t, "merge pr #4", reqs[0].Title)
	}
}

func TestBuildEventRequestsPullRequestsAndIssues(t *testing.T) {
	mergedAt := time.Now()
	prs := []githubapi.PullRequest{
		{
			Number: 7, HTMLURL: "https://github.com/acme/widget/pull/7",
			User: &struct {
				Login string `json:"login"`
			}{Login: "bob"},
			Title: "Fix SSRF", Body: "details", MergedAt: &mergedAt, MergeCommitSHA: "mc1",
		},
		{Number: 8, HTMLURL: "https://github.com/acme/widget/pull/8", User: nil, Title: "anon pr", Body: ""},
	}
	issues := []githubapi.Issue{
		{
			Number: 9, HTMLURL: "https://github.com/acme/widget/issues/9",
			User: &struct {
				Login string `json:"login"`
			}{Login: "carol"},
			Title: "crash on input", Body: "repro steps", UpdatedAt: mergedAt,
		},
	}

	reqs := buildEventRequests("lib-1", "acme", "widget", nil, prs, nil, issues)
	assert.Len(t, reqs, 3)

	assert.Equal(t, "pr_merge", reqs[0].Type)
	assert.Equal(t, "bob", reqs[0].Author)
	assert.Equal(t, "mc1", reqs[0].RelatedCommitSHA)

	assert.Equal(t, "", reqs[1].Author)

	assert.Equal(t, "bug_issue", reqs[2].Type)
	assert.Equal(t, "carol", reqs[2].Author)
}

func TestExtractRefsPrefersClosingVerbOverBareMention(t *testing.T) {
	ref, url := extractRefs("fixes #42, see also #7 for context", "acme", "widget")
	assert.Equal(t, "42", ref)
	assert.Equal(t, "https://github.com/acme/widget/issues/42", url)
}

func TestExtractRefsAcceptsClosingVerbVariants(t *testing.T) {
	cases := map[string]string{
		"fix #1":      "1",
		"fixes #2":    "2",
		"fixed #3":    "3",
		"close #4":    "4",
		"closes #5":   "5",
		"closed #6":   "6",
		"resolve #7":  "7",
		"resolves #8": "8",
		"resolved #9": "9",
	}
	for msg, want := range cases {
		ref, _ := extractRefs(msg, "acme", "widget")
		assert.Equal(t, want, ref, "message=%q", msg)
	}
}

func TestExtractRefsFallsBackToBareMentionWhenNoClosingVerb(t *testing.T) {
	ref, url := extractRefs("see #123 for the original report", "acme", "widget")
	assert.Equal(t, "123", ref)
	assert.Equal(t, "https://github.com/acme/widget/issues/123", url)
}

func TestExtractRefsReturnsEmptyWithoutAnyReference(t *testing.T) {
	ref, url := extractRefs("just a plain commit message", "acme", "widget")
	assert.Equal(t, "", ref)
	assert.Equal(t, "", url)
}

// formatMessage builds a commit message embedding a single closing-verb
// reference, the inverse of extractRefs for the round-trip law in spec.md §8.
func formatMessage(ref string) string {
	return "fix: patch the bug\n\nFixes #" + ref
}

func TestExtractRefsRoundTripsWithFormatMessage(t *testing.T) {
	for _, ref := range []string{"1", "42", "9001"} {
		got, _ := extractRefs(formatMessage(ref), "acme", "widget")
		assert.Equal(t, ref, got)
	}
}

func TestBuildEventRequestsPopulatesRelatedRefsForCommits(t *testing.T) {
	c := githubapi.Commit{SHA: "abc123"}
	c.Commit.Message = "fix: patch the parser\n\nFixes #314"
	c.Commit.Author.Date = time.Now()

	reqs := buildEventRequests("lib-1", "acme", "widget", []githubapi.Commit{c}, nil, nil, nil)
	if assert.Len(t, reqs, 1) {
		assert.Equal(t, "314", reqs[0].RelatedIssueRef)
		assert.Equal(t, "https://github.com/acme/widget/issues/314", reqs[0].RelatedURL)
	}
}

func TestBuildEventRequestsTags(t *testing.T) {
	tags := []githubapi.Tag{{Name: "v1.2.3"}}
	reqs := buildEventRequests("lib-1", "acme", "widget", nil, nil, tags, nil)
	if assert.Len(t, reqs, 1) {
		assert.Equal(t, "tag", reqs[0].Type)
		assert.Equal(t, "v1.2.3", reqs[0].Ref)
	}
}
