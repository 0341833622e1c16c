// Package collector implements the Event Collector engine: for each
// monitored library due for a pass, fetch commits/merged-PRs/tags/bug-issues
// in parallel and write them as Events (spec.md §4.3).
package collector

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vulnsentinel/vulnsentinel/ent"
	"github.com/vulnsentinel/vulnsentinel/pkg/githubapi"
	"github.com/vulnsentinel/vulnsentinel/pkg/models"
	"github.com/vulnsentinel/vulnsentinel/pkg/services"
	"golang.org/x/sync/semaphore"
)

// DefaultFreshnessWindow is the per-library staleness threshold (spec.md
// §4.3: "75 min"), used when the caller passes freshnessWindow <= 0.
const DefaultFreshnessWindow = 75 * time.Minute

// defaultParallelism is the per-library fetch concurrency when GitHub's
// rate-limit quota is healthy; Client.Parallelism reduces it to 1 when
// quota runs low.
const defaultParallelism = 4

// DefaultLibraryConcurrency bounds simultaneous per-library collection
// passes (spec.md §5: "Collector: 5 libraries"), used when the caller
// passes concurrency <= 0.
const DefaultLibraryConcurrency = 5

// Runner drives the Event Collector engine.
type Runner struct {
	libraries       *services.LibraryService
	events          *services.EventService
	gh              *githubapi.Client
	concurrency     int64
	freshnessWindow time.Duration
}

// NewRunner builds an Event Collector runner. concurrency and
// freshnessWindow are the operator-configured
// CollectorConcurrency/CollectFreshnessWindow; values <= 0 fall back to the
// package defaults.
func NewRunner(libraries *services.LibraryService, events *services.EventService, gh *githubapi.Client, concurrency int64, freshnessWindow time.Duration) *Runner {
	if concurrency <= 0 {
		concurrency = DefaultLibraryConcurrency
	}
	if freshnessWindow <= 0 {
		freshnessWindow = DefaultFreshnessWindow
	}
	return &Runner{libraries: libraries, events: events, gh: gh, concurrency: concurrency, freshnessWindow: freshnessWindow}
}

// Run implements the scheduler's run_fn contract: every library due for
// collection is processed; processed counts libraries with at least one
// newly inserted event.
func (r *Runner) Run(ctx context.Context) (int, error) {
	libs, err := r.libraries.ListDueForCollection(ctx, r.freshnessWindow)
	if err != nil {
		return 0, fmt.Errorf("list libraries due for collection: %w", err)
	}

	var processed int64
	var wg sync.WaitGroup
	sem := semaphore.NewWeighted(r.concurrency)

	for _, lib := range libs {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(lib *ent.Library) {
			defer wg.Done()
			defer sem.Release(1)

			inserted, err := r.collectOne(ctx, lib)
			if err != nil {
				slog.Error("collector failed for library", "library_id", lib.ID, "error", err)
				return
			}
			if inserted > 0 {
				atomic.AddInt64(&processed, 1)
			}
		}(lib)
	}
	wg.Wait()
	return int(processed), nil
}

// collectOne runs the four GitHub fetches in parallel (spec.md §4.3:
// "parallelize four fetches"), batch-inserts whatever came back, and
// advances the library's pointers regardless of how many events were new —
// the pass itself, not its yield, drives freshness (spec.md §4.9's
// MarkScanned-equivalent semantics).
func (r *Runner) collectOne(ctx context.Context, lib *ent.Library) (int, error) {
	owner, repo, err := githubapi.ParseRepoURL(lib.RepoURL)
	if err != nil {
		return 0, fmt.Errorf("parse repo url: %w", err)
	}

	since := time.Now().Add(-r.freshnessWindow * 4)
	if lib.LastActivityAt != nil {
		since = *lib.LastActivityAt
	}

	var (
		wg                               sync.WaitGroup
		commits                          []githubapi.Commit
		prs                              []githubapi.PullRequest
		tags                             []githubapi.Tag
		issues                           []githubapi.Issue
		commitsErr, prsErr, tagsErr, issuesErr error
	)

	branch := lib.DefaultBranch
	knownLatestTag := ""
	if lib.LatestTagVersion != nil {
		knownLatestTag = *lib.LatestTagVersion
	}

	limit := make(chan struct{}, r.gh.Parallelism(defaultParallelism))
	wg.Add(4)
	go func() { defer wg.Done(); limit <- struct{}{}; defer func() { <-limit }(); commits, commitsErr = r.gh.ListCommits(ctx, owner, repo, branch, since) }()
	go func() { defer wg.Done(); limit <- struct{}{}; defer func() { <-limit }(); prs, prsErr = r.gh.ListMergedPullRequests(ctx, owner, repo, since) }()
	go func() { defer wg.Done(); limit <- struct{}{}; defer func() { <-limit }(); tags, tagsErr = r.gh.ListTags(ctx, owner, repo, knownLatestTag) }()
	go func() { defer wg.Done(); limit <- struct{}{}; defer func() { <-limit }(); issues, issuesErr = r.gh.ListBugIssues(ctx, owner, repo, since) }()
	wg.Wait()

	for _, err := range []error{commitsErr, prsErr, tagsErr, issuesErr} {
		if err != nil {
			slog.Warn("one collector fetch failed, continuing with the rest", "library_id", lib.ID, "error", err)
		}
	}

	reqs := buildEventRequests(lib.ID, owner, repo, commits, prs, tags, issues)
	inserted, err := r.events.BatchInsert(ctx, reqs)
	if err != nil {
		return 0, fmt.Errorf("batch insert events: %w", err)
	}

	latestCommitSHA := ""
	if len(commits) > 0 {
		latestCommitSHA = commits[0].SHA
	}
	latestTag := knownLatestTag
	if len(tags) > 0 {
		latestTag = tags[0].Name
	}
	if err := r.libraries.AdvancePointers(ctx, lib.ID, latestCommitSHA, latestTag); err != nil {
		return inserted, fmt.Errorf("advance library pointers: %w", err)
	}
	return inserted, nil
}

func buildEventRequests(libraryID, owner, repo string, commits []githubapi.Commit, prs []githubapi.PullRequest, tags []githubapi.Tag, issues []githubapi.Issue) []models.CreateEventRequest {
	var reqs []models.CreateEventRequest

	for _, c := range commits {
		if len(c.Parents) > 1 {
			continue // merge commits are collection noise, not individual fixes
		}
		author := ""
		if c.Author != nil {
			author = c.Author.Login
		}
		ref, relatedURL := extractRefs(c.Commit.Message, owner, repo)
		reqs = append(reqs, models.CreateEventRequest{
			LibraryID:       libraryID,
			Type:            "commit",
			Ref:             c.SHA,
			SourceURL:       fmt.Sprintf("https://github.com/%s/%s/commit/%s", owner, repo, c.SHA),
			Author:          author,
			Title:           firstLine(c.Commit.Message),
			Message:         c.Commit.Message,
			RelatedIssueRef: ref,
			RelatedURL:      relatedURL,
			EventAt:         c.Commit.Author.Date,
		})
	}

	for _, pr := range prs {
		author := ""
		if pr.User != nil {
			author = pr.User.Login
		}
		req := models.CreateEventRequest{
			LibraryID: libraryID,
			Type:      "pr_merge",
			Ref:       fmt.Sprintf("%d", pr.Number),
			SourceURL: pr.HTMLURL,
			Author:    author,
			Title:     pr.Title,
			Message:   pr.Body,
		}
		if pr.MergedAt != nil {
			req.EventAt = *pr.MergedAt
		}
		if pr.MergeCommitSHA != "" {
			req.RelatedCommitSHA = pr.MergeCommitSHA
		}
		reqs = append(reqs, req)
	}

	for _, t := range tags {
		reqs = append(reqs, models.CreateEventRequest{
			LibraryID: libraryID,
			Type:      "tag",
			Ref:       t.Name,
			SourceURL: fmt.Sprintf("https://github.com/%s/%s/releases/tag/%s", owner, repo, t.Name),
			Title:     t.Name,
			EventAt:   time.Now(),
		})
	}

	for _, iss := range issues {
		author := ""
		if iss.User != nil {
			author = iss.User.Login
		}
		req := models.CreateEventRequest{
			LibraryID: libraryID,
			Type:      "bug_issue",
			Ref:       fmt.Sprintf("%d", iss.Number),
			SourceURL: iss.HTMLURL,
			Author:    author,
			Title:     iss.Title,
			Message:   iss.Body,
			EventAt:   iss.UpdatedAt,
		}
		reqs = append(reqs, req)
	}

	return reqs
}

// closingRefPattern and bareRefPattern implement spec.md §4.3's commit
// cross-reference extraction: a closing verb ("fix"/"close"/"resolve",
// optionally "-es"/"-ed") followed by an issue number takes precedence over
// a bare "#N" mention anywhere else in the message.
var (
	closingRefPattern = regexp.MustCompile(`(?i)(?:fix|close|resolve)(?:e[sd])?\s+#(\d+)`)
	bareRefPattern    = regexp.MustCompile(`#(\d+)`)
)

// extractRefs returns the first issue/PR reference found in a commit
// message and the URL built from it (spec.md §4.3: "build related-url
// fields from the first match"). Returns ("", "") when the message matches
// neither pattern.
func extractRefs(message, owner, repo string) (ref string, relatedURL string) {
	m := closingRefPattern.FindStringSubmatch(message)
	if m == nil {
		m = bareRefPattern.FindStringSubmatch(message)
	}
	if m == nil {
		return "", ""
	}
	ref = m[1]
	return ref, fmt.Sprintf("https://github.com/%s/%s/issues/%s", owner, repo, ref)
}

func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i]
		}
	}
	return s
}
