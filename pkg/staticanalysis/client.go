// Package staticanalysis defines the Reachability Analyzer's collaborator
// contract: an opaque client over the external static-analysis/graph-search
// subsystem (spec.md §4.7). That subsystem's internals — snapshot
// lookup/build, target-function extraction, graph search — are out of
// scope here; this package only shapes the boundary call.
package staticanalysis

import "context"

// VulnDescriptor is the subset of UpstreamVuln fields the collaborator
// needs to resolve target functions and search for reachable paths.
type VulnDescriptor struct {
	VulnType          string
	AffectedFunctions []string
	CommitSHA         string
	RepoURL           string
}

// ReachabilityResult is the collaborator's verdict for one (client vuln,
// vuln descriptor) pair.
type ReachabilityResult struct {
	IsReachable bool
	Paths       [][]string
	// NotReady and NoTargetFunctions distinguish the two retryable error
	// conditions named in spec.md §4.7 from a terminal "not reachable"
	// verdict — both leave pipeline_status at 'pending' for a later tick.
	NotReady          bool
	NoTargetFunctions bool
}

// Client is the single call this runner makes into the collaborator
// (spec.md §4.7: "delegates to the external static-analysis collaborator
// via a single call"). A real implementation talks to the graph-search
// service over gRPC or HTTP; this package only declares the boundary.
type Client interface {
	CheckReachability(ctx context.Context, repoURL, version string, descriptor VulnDescriptor) (ReachabilityResult, error)
}
