package models

// User is a person who can be assigned tasks or add them.
type User struct {
	ID        string `yaml:"id" json:"id"`
	Name      string `yaml:"name" json:"name"`
	JobTitle  string `yaml:"job_title" json:"job_title"`
	AvatarURL string `yaml:"avatar_url,omitempty" json:"avatar_url,omitempty"`
}

// Tag is a named, colored label attachable to any number of tasks.
type Tag struct {
	ID    string `yaml:"id" json:"id"`
	Name  string `yaml:"name" json:"name"`
	Color string `yaml:"color" json:"color"`
}

// CustomField defines a free-text column of per-task data.
type CustomField struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}
