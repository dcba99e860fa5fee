package sustech

import "time"

// Config is the serialized form of ClientOptions, as it appears in the
// config files of the binaries.
type Config struct {
	CasBaseUrl       string `json:"cas_base_url"`
	PortalBaseUrl    string `json:"portal_base_url"`
	TimeoutSeconds   int    `json:"timeout_seconds"`
	BypassCloudflare bool   `json:"bypass_cloudflare"`
}

func (c Config) Options() ClientOptions {
	return ClientOptions{
		CasBaseUrl:       c.CasBaseUrl,
		PortalBaseUrl:    c.PortalBaseUrl,
		Timeout:          time.Duration(c.TimeoutSeconds) * time.Second,
		BypassCloudflare: c.BypassCloudflare,
	}
}
