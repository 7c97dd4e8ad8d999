package models

// CreateCommandExecutionRequest is the body of a workbench execution.
type CreateCommandExecutionRequest struct {
	Command     string       `json:"command"`
	Role        string       `json:"role,omitempty"`
	NodeOptions *NodeOptions `json:"nodeOptions,omitempty"`
}

// ScanKeysRequest carries the query parameters of a key scan.
type ScanKeysRequest struct {
	Cursor string `query:"cursor"`
	Count  int    `query:"count"`
	Match  string `query:"match"`
	Type   string `query:"type"`
}
