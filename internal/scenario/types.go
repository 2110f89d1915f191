// Package scenario loads practice scenarios: a starting local repository, an
// optional origin, hints, and checks that decide when the exercise is solved.
package scenario

// Scenario is one exercise, loaded from YAML.
type Scenario struct {
	ID            string       `yaml:"id" json:"id"`
	Title         string       `yaml:"title" json:"title"`
	Description   string       `yaml:"description" json:"description"`
	CurrentBranch string       `yaml:"currentBranch" json:"currentBranch,omitempty"`
	Commits       []CommitSpec `yaml:"commits" json:"-"`
	Origin        []CommitSpec `yaml:"origin" json:"-"`
	OriginBranch  string       `yaml:"originBranch" json:"-"`
	Hints         []string     `yaml:"hints" json:"hints"`
	Checks        []Check      `yaml:"checks" json:"checks,omitempty"`
}

// HasOrigin reports whether the scenario starts with a remote.
func (s *Scenario) HasOrigin() bool { return len(s.Origin) > 0 }

// CommitSpec is a fixture commit. Branches listed as origin/<name> become
// remote-tracking branches.
type CommitSpec struct {
	ID       string   `yaml:"id"`
	Parent   string   `yaml:"parent"`
	Parent2  string   `yaml:"parent2"`
	Message  string   `yaml:"message"`
	Branches []string `yaml:"branches"`
	Tags     []string `yaml:"tags"`
}

// CheckType names a verification rule.
type CheckType string

const (
	CheckBranchExists  CheckType = "branch_exists"
	CheckCurrentBranch CheckType = "current_branch"
	CheckHeadDetached  CheckType = "head_detached"
	CheckRefAtMessage  CheckType = "ref_at_message"
	CheckCommitExists  CheckType = "commit_exists"
	CheckIsAncestor    CheckType = "is_ancestor"
	CheckInSync        CheckType = "in_sync"
	CheckLinear        CheckType = "linear"
)

var knownChecks = map[CheckType]bool{
	CheckBranchExists:  true,
	CheckCurrentBranch: true,
	CheckHeadDetached:  true,
	CheckRefAtMessage:  true,
	CheckCommitExists:  true,
	CheckIsAncestor:    true,
	CheckInSync:        true,
	CheckLinear:        true,
}

type Check struct {
	Type        CheckType `yaml:"type" json:"type"`
	Description string    `yaml:"description" json:"description"`
	Name        string    `yaml:"name" json:"name,omitempty"`       // ref for branch/ref checks
	Message     string    `yaml:"message" json:"message,omitempty"` // ref_at_message, commit_exists
	Ancestor    string    `yaml:"ancestor" json:"ancestor,omitempty"`
	Descendant  string    `yaml:"descendant" json:"descendant,omitempty"`
	Negate      bool      `yaml:"negate" json:"negate,omitempty"`
}

type VerificationResult struct {
	Success    bool          `json:"success"`
	ScenarioID string        `json:"scenarioId"`
	Progress   []CheckResult `json:"progress"`
}

type CheckResult struct {
	Description string `json:"description"`
	Passed      bool   `json:"passed"`
}
