package models

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// NodeAddress identifies one store node.
type NodeAddress struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// String returns host:port.
func (n NodeAddress) String() string {
	return net.JoinHostPort(n.Host, strconv.Itoa(n.Port))
}

// ParseNodeAddress parses host:port.
func ParseNodeAddress(s string) (NodeAddress, error) {
	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		return NodeAddress{}, fmt.Errorf("invalid node address %q: %w", s, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 || host == "" {
		return NodeAddress{}, fmt.Errorf("invalid node address %q", s)
	}
	return NodeAddress{Host: host, Port: port}, nil
}

// NodeRole selects which cluster nodes a command is sent to.
type NodeRole string

const (
	RoleAll     NodeRole = "ALL"
	RoleMaster  NodeRole = "MASTER"
	RoleReplica NodeRole = "REPLICA"
)

// ParseNodeRole accepts role names case-insensitively. SLAVE is an alias of
// REPLICA and the empty string selects ALL.
func ParseNodeRole(s string) (NodeRole, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "ALL":
		return RoleAll, nil
	case "MASTER":
		return RoleMaster, nil
	case "REPLICA", "SLAVE":
		return RoleReplica, nil
	default:
		return "", fmt.Errorf("unknown node role %q", s)
	}
}
