package state

// GraphState represents the serialized state for the frontend
type GraphState struct {
	Commits        []Commit          `json:"commits"`
	Branches       map[string]string `json:"branches"`
	RemoteBranches map[string]string `json:"remoteBranches"`
	Tags           map[string]string `json:"tags"`
	// Refs lists every ref in display order: branches, then tags.
	Refs        []Ref  `json:"refs"`
	HEAD        Head   `json:"HEAD"`
	ScenarioID  string `json:"scenarioId,omitempty"`
	HasRemote   bool   `json:"hasRemote"`
	Version     uint64 `json:"version"`
	Initialized bool   `json:"initialized"`
}

type Commit struct {
	ID             string `json:"id"`
	Message        string `json:"message"`
	ParentID       string `json:"parentId"`
	SecondParentID string `json:"secondParentId"`
	Reverted       bool   `json:"reverted,omitempty"`
	Reverts        string `json:"reverts,omitempty"`
	Rebased        bool   `json:"rebased,omitempty"`
	RebasedFrom    string `json:"rebasedFrom,omitempty"`
	// Reachable is false for commits no ref or HEAD can reach; they only
	// appear when all commits are requested.
	Reachable  bool `json:"reachable"`
	Branchless bool `json:"branchless"` // not reachable from any local branch
}

type Ref struct {
	Name   string `json:"name"`
	Target string `json:"target"`
	Kind   string `json:"kind"` // "branch" or "tag"
	Remote bool   `json:"remote,omitempty"`
}

type Head struct {
	Type string `json:"type"` // "branch", "commit" or "none"
	Ref  string `json:"ref,omitempty"`
	ID   string `json:"id,omitempty"`
}
