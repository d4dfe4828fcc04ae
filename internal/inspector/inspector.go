package inspector

import "context"

// Request carries everything needed for one content inspection call.
// BuildRequest is the only constructor; the value is not mutated afterwards.
type Request struct {
	Project      string
	InfoTypes    []string
	IncludeQuote bool
	ImageBytes   []byte
}

// Parent returns the project-scoped parent resource the inspection service expects.
func (r *Request) Parent() string {
	return "projects/" + r.Project
}

// Likelihood is the confidence level the service assigns to a finding.
type Likelihood string

const (
	LikelihoodUnspecified  Likelihood = "LIKELIHOOD_UNSPECIFIED"
	LikelihoodVeryUnlikely Likelihood = "VERY_UNLIKELY"
	LikelihoodUnlikely     Likelihood = "UNLIKELY"
	LikelihoodPossible     Likelihood = "POSSIBLE"
	LikelihoodLikely       Likelihood = "LIKELY"
	LikelihoodVeryLikely   Likelihood = "VERY_LIKELY"
)

// Finding is one detected instance of an info type in the inspected content.
// Quote is empty unless the request asked for quotes and the service matched a snippet.
type Finding struct {
	InfoType   string     `json:"info_type"`
	Quote      string     `json:"quote,omitempty"`
	Likelihood Likelihood `json:"likelihood"`
}

// Result holds the findings of a single inspection in the order received.
type Result struct {
	Findings []Finding `json:"findings"`
}

// Client exposes the subset of the inspection service used by this program.
type Client interface {
	Inspect(ctx context.Context, req *Request) (*Result, error)
}
