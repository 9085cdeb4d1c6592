// Copyright (c) 2026 Voltora Energy. All rights reserved.
// Author: platform@voltora.energy

package schema

// SessionRecordTable represents the 'sessions.record' table
type SessionRecordTable struct {
	Table     string
	Domain    string
	Blob      string
	UpdatedAt string
}

// SessionRecord is the schema definition for sessions.record
var SessionRecord = SessionRecordTable{
	Table:     "sessions.record",
	Domain:    "domain",
	Blob:      "blob",
	UpdatedAt: "updatedat",
}

func (t SessionRecordTable) Columns() []string {
	return []string{t.Domain, t.Blob, t.UpdatedAt}
}
