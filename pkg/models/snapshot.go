package models

// Snapshot is a point-in-time copy of every entity collection. Tasks are
// listed in display order.
type Snapshot struct {
	Version      string        `yaml:"version" json:"version"`
	Users        []User        `yaml:"users" json:"users"`
	Tags         []Tag         `yaml:"tags" json:"tags"`
	CustomFields []CustomField `yaml:"custom_fields" json:"custom_fields"`
	Tasks        []Task        `yaml:"tasks" json:"tasks"`
}

// SnapshotVersion is the current snapshot format version.
const SnapshotVersion = "1.0"
