package githubapi

import (
	"github.com/vulnsentinel/vulnsentinel/pkg/agent"
)

// RegisterRepoTools wires all five read-only repo tools into a fresh
// ToolServer — the shared MCP factory both the Classifier and the Analyzer
// call (spec.md §4.5: "the same five GitHub tools used by the classifier,
// reused via the shared MCP factory").
func RegisterRepoTools(server *agent.ToolServer, tools *RepoTools) {
	agent.RegisterTool(server, "fetch_commit_diff",
		"Fetch the diffstat (no file_path) or full patch (with file_path) for a commit.",
		tools.FetchCommitDiff)
	agent.RegisterTool(server, "fetch_pr_diff",
		"Fetch the diffstat (no file_path) or full patch (with file_path) for a pull request.",
		tools.FetchPRDiff)
	agent.RegisterTool(server, "fetch_file_content",
		"Fetch the content of a file at a given ref (default HEAD).",
		tools.FetchFileContent)
	agent.RegisterTool(server, "fetch_issue_body",
		"Fetch the title and body of an issue.",
		tools.FetchIssueBody)
	agent.RegisterTool(server, "fetch_pr_body",
		"Fetch the title and body of a pull request.",
		tools.FetchPRBody)
}
