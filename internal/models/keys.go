package models

// KeyDescriptor describes one key returned by a scan.
type KeyDescriptor struct {
	Name string `json:"name"`
	Type string `json:"type"`
	// TTL in seconds: -1 no expiry, -2 key does not exist.
	TTL  int64  `json:"ttl"`
	Size *int64 `json:"size,omitempty"`
}

// ShardPage is the per-node portion of one scan page.
type ShardPage struct {
	Total   int64           `json:"total"`
	Scanned int64           `json:"scanned"`
	Cursor  uint64          `json:"cursor"`
	Host    string          `json:"host"`
	Port    int             `json:"port"`
	Keys    []KeyDescriptor `json:"keys"`
}

// Node returns the address the page was read from.
func (p ShardPage) Node() NodeAddress {
	return NodeAddress{Host: p.Host, Port: p.Port}
}
