package coordinator

import (
	"strconv"
	"strings"

	"github.com/keyscope/keyscope/internal/models"
)

const (
	cursorTupleSeparator = "||"
	cursorNodeSeparator  = "@"

	// CursorDone is the composite cursor of a finished (or fresh) scan.
	CursorDone = "0"
)

// ShardCursor is the scan position on one shard. Cursor 0 after a page
// means the shard is exhausted.
type ShardCursor struct {
	Node   models.NodeAddress
	Cursor uint64
}

// CursorSet multiplexes one logical cursor over several shards. Its wire
// form is host:port@cursor tuples joined by "||".
type CursorSet []ShardCursor

// NewCursorSet starts a scan on every member.
func NewCursorSet(members []models.NodeAddress) CursorSet {
	set := make(CursorSet, len(members))
	for i, m := range members {
		set[i] = ShardCursor{Node: m}
	}
	return set
}

// ParseCursor decodes raw against the current topology. An empty or "0"
// cursor starts a fresh scan over every member. Tuples naming nodes that
// are no longer members are dropped, as are exhausted shards. A bare
// integer is accepted when the deployment is standalone.
func ParseCursor(raw string, members []models.NodeAddress, standalone bool) (CursorSet, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == CursorDone {
		return NewCursorSet(members), true, nil
	}

	if !strings.Contains(raw, cursorNodeSeparator) {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, false, inputErrorf(ErrMalformedCursor, "%q", raw)
		}
		if !standalone || len(members) != 1 {
			return nil, false, inputErrorf(ErrMalformedCursor, "bare cursor %q requires a standalone deployment", raw)
		}
		return CursorSet{{Node: members[0], Cursor: n}}, false, nil
	}

	positions := make(map[models.NodeAddress]uint64)
	for _, tuple := range strings.Split(raw, cursorTupleSeparator) {
		tuple = strings.TrimSpace(tuple)
		if tuple == "" {
			continue
		}
		at := strings.LastIndex(tuple, cursorNodeSeparator)
		if at <= 0 {
			return nil, false, inputErrorf(ErrMalformedCursor, "tuple %q", tuple)
		}
		node, err := models.ParseNodeAddress(tuple[:at])
		if err != nil {
			return nil, false, inputErrorf(ErrMalformedCursor, "tuple %q", tuple)
		}
		n, err := strconv.ParseUint(tuple[at+1:], 10, 64)
		if err != nil {
			return nil, false, inputErrorf(ErrMalformedCursor, "tuple %q", tuple)
		}
		positions[node] = n
	}

	// keep topology order; stale and finished shards fall out here
	set := make(CursorSet, 0, len(positions))
	for _, m := range members {
		if n, ok := positions[m]; ok && n != 0 {
			set = append(set, ShardCursor{Node: m, Cursor: n})
		}
	}
	return set, false, nil
}

// Encode returns the wire form, omitting exhausted shards. A set with no
// live shard encodes as CursorDone.
func (s CursorSet) Encode() string {
	parts := make([]string, 0, len(s))
	for _, c := range s {
		if c.Cursor == 0 {
			continue
		}
		parts = append(parts, c.Node.String()+cursorNodeSeparator+strconv.FormatUint(c.Cursor, 10))
	}
	if len(parts) == 0 {
		return CursorDone
	}
	return strings.Join(parts, cursorTupleSeparator)
}

// Done reports whether every shard is exhausted.
func (s CursorSet) Done() bool {
	for _, c := range s {
		if c.Cursor != 0 {
			return false
		}
	}
	return true
}
