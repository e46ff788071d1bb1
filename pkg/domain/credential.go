package domain

// Credential is what `login` stores locally and what a session authenticates with.
type Credential struct {
	User     string `yaml:"user" json:"user"`
	Token    string `yaml:"token" json:"token"`
	Endpoint string `yaml:"endpoint,omitempty" json:"endpoint,omitempty"`
}
