package models

// Provider is a backend analysis worker identified by a stable id.
type Provider struct {
	ProviderID  string `json:"provider_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ProviderHealth maps provider id to reachability as reported by the
// backend health endpoint.
type ProviderHealth struct {
	Providers map[string]bool `json:"providers"`
}
