package coordinator

import (
	"errors"
	"net"
	"strconv"
	"strings"

	"github.com/keyscope/keyscope/internal/models"
)

// RedirectKind distinguishes permanent and one-shot redirects.
type RedirectKind string

const (
	RedirectMoved RedirectKind = "MOVED"
	RedirectAsk   RedirectKind = "ASK"
)

// Redirect is a parsed MOVED or ASK reply. Node.Host is empty when the
// reply named only a port, meaning the host of the node that replied.
type Redirect struct {
	Kind RedirectKind
	Slot int
	Node models.NodeAddress
}

// ParseRedirect recognizes "MOVED <slot> <host:port>" and
// "ASK <slot> <host:port>" error replies anywhere in err's chain.
func ParseRedirect(err error) (*Redirect, bool) {
	for ; err != nil; err = errors.Unwrap(err) {
		if rd, ok := parseRedirectText(err.Error()); ok {
			return rd, true
		}
	}
	return nil, false
}

// Target returns the node to retry on; an empty host is taken from the
// node that sent the redirect.
func (r *Redirect) Target(from models.NodeAddress) models.NodeAddress {
	if r.Node.Host == "" {
		return models.NodeAddress{Host: from.Host, Port: r.Node.Port}
	}
	return r.Node
}

func parseRedirectText(text string) (*Redirect, bool) {
	fields := strings.Fields(text)
	if len(fields) != 3 {
		return nil, false
	}
	kind := RedirectKind(fields[0])
	if kind != RedirectMoved && kind != RedirectAsk {
		return nil, false
	}
	slot, err := strconv.Atoi(fields[1])
	if err != nil || slot < 0 || slot >= SlotCount {
		return nil, false
	}
	node, ok := parseRedirectNode(fields[2])
	if !ok {
		return nil, false
	}
	return &Redirect{Kind: kind, Slot: slot, Node: node}, true
}

// IsRedirect reports whether err is a MOVED or ASK reply.
func IsRedirect(err error) bool {
	_, ok := ParseRedirect(err)
	return ok
}

// parseRedirectNode accepts host:port and the hostless ":port" form.
func parseRedirectNode(s string) (models.NodeAddress, bool) {
	if node, err := models.ParseNodeAddress(s); err == nil {
		return node, true
	}
	host, portStr, err := net.SplitHostPort(s)
	if err != nil || host != "" {
		return models.NodeAddress{}, false
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return models.NodeAddress{}, false
	}
	return models.NodeAddress{Port: port}, true
}
