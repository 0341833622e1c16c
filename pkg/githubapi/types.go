package githubapi

import "time"

// Commit is the subset of GitHub's commit list/detail response the
// Collector and the commit-diff tool need. Author is the GitHub user who
// authored the commit (nil for commits with no linked account); its Login
// is what the Classifier's bot-author pre-filter rule matches against.
type Commit struct {
	SHA     string `json:"sha"`
	HTMLURL string `json:"html_url"`
	Commit  struct {
		Message string `json:"message"`
		Author  struct {
			Date time.Time `json:"date"`
		} `json:"author"`
	} `json:"commit"`
	Author *struct {
		Login string `json:"login"`
	} `json:"author"`
	Parents []struct {
		SHA string `json:"sha"`
	} `json:"parents"`
	Files []CommitFile `json:"files"`
}

// CommitFile is one changed file within a commit or PR diff.
type CommitFile struct {
	Filename  string `json:"filename"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	Changes   int    `json:"changes"`
	Patch     string `json:"patch"`
}

// PullRequest is the subset of GitHub's pulls list/detail response used for
// both merge-event collection and the PR-body/PR-diff tools.
type PullRequest struct {
	Number         int        `json:"number"`
	Title          string     `json:"title"`
	Body           string     `json:"body"`
	HTMLURL        string     `json:"html_url"`
	UpdatedAt      time.Time  `json:"updated_at"`
	MergedAt       *time.Time `json:"merged_at"`
	MergeCommitSHA string     `json:"merge_commit_sha"`
	User           *struct {
		Login string `json:"login"`
	} `json:"user"`
}

// Tag is one entry from the repository tags list.
type Tag struct {
	Name   string `json:"name"`
	Commit struct {
		SHA string `json:"sha"`
	} `json:"commit"`
}

// Issue is the subset of GitHub's issues list/detail response used for
// bug-issue collection and the issue-body tool. PullRequest is non-nil when
// the API has conflated this entry with a pull request, which callers must
// filter out for bug-issue collection.
type Issue struct {
	Number      int       `json:"number"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	UpdatedAt   time.Time `json:"updated_at"`
	PullRequest *struct{} `json:"pull_request,omitempty"`
	User        *struct {
		Login string `json:"login"`
	} `json:"user"`
}

// contentItem is one entry in the GitHub Contents API response.
type contentItem struct {
	Type     string `json:"type"` // "file" or "dir"
	Encoding string `json:"encoding"`
	Content  string `json:"content"`
	Name     string `json:"name"`
}
