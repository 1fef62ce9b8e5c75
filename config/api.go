package config

// APIConfig enables the read-only HTTP API. An empty Addr disables it.
type APIConfig struct {
	Addr  string `json:"addr"`
	Token string `json:"token"`
}
