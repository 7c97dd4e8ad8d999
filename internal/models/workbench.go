package models

import "time"

// CommandExecutionStatus is the outcome of running a command on one node.
type CommandExecutionStatus string

const (
	StatusSuccess CommandExecutionStatus = "success"
	StatusFail    CommandExecutionStatus = "fail"
)

// ResultNode tags a result with the node that produced it.
type ResultNode struct {
	Host string `json:"host"`
	Port int    `json:"port"`
	Slot *int   `json:"slot,omitempty"`
}

// CommandExecutionResult is one node's reply. Response is the decoded reply
// on success and the error text on failure.
type CommandExecutionResult struct {
	Status   CommandExecutionStatus `json:"status"`
	Response interface{}            `json:"response"`
	Node     *ResultNode            `json:"node,omitempty"`
}

// NodeOptions pins a command to one node.
type NodeOptions struct {
	Host              string `json:"host"`
	Port              int    `json:"port"`
	EnableRedirection bool   `json:"enableRedirection"`
}

// Address returns the pinned node address.
func (o NodeOptions) Address() NodeAddress {
	return NodeAddress{Host: o.Host, Port: o.Port}
}

// CommandExecution is a recorded command run. It is never modified after
// it has been stored.
type CommandExecution struct {
	ID          string                   `json:"id"`
	DatabaseID  string                   `json:"databaseId"`
	Command     string                   `json:"command"`
	Role        NodeRole                 `json:"role,omitempty"`
	NodeOptions *NodeOptions             `json:"nodeOptions,omitempty"`
	CreatedAt   time.Time                `json:"createdAt"`
	Result      []CommandExecutionResult `json:"result,omitempty"`
}

// Short returns a copy without results, as served by history listings.
func (e *CommandExecution) Short() *CommandExecution {
	short := *e
	short.Result = nil
	return &short
}

// Failed counts Fail results.
func (e *CommandExecution) Failed() int {
	n := 0
	for _, r := range e.Result {
		if r.Status == StatusFail {
			n++
		}
	}
	return n
}

// CommandExecutedEvent is published after an execution has been recorded.
type CommandExecutedEvent struct {
	ID         string    `json:"id"`
	DatabaseID string    `json:"databaseId"`
	Verb       string    `json:"verb"`
	Role       NodeRole  `json:"role,omitempty"`
	Nodes      int       `json:"nodes"`
	Failed     int       `json:"failed"`
	CreatedAt  time.Time `json:"createdAt"`
}
