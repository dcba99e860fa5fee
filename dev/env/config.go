package devenv

// SustechTestConfig holds the credentials the live tests log in with, it is
// read from `dev/.state/sustech_config.json5`.
type SustechTestConfig struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	CasBaseUrl    string `json:"cas_base_url"`
	PortalBaseUrl string `json:"portal_base_url"`
	// a term known to have grades, ex. "2018-1"
	Term string `json:"term"`
}
