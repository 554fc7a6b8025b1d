package devenv

// LivePortalConfig points the live tests at a portal. Known values are
// taxpayers expected to exist there.
type LivePortalConfig struct {
	BaseUrl       string `json:"base_url"`
	TwoCaptchaKey string `json:"twocaptcha_key"`
	KnownRuc      string `json:"known_ruc"`
	KnownName     string `json:"known_name"`
}
