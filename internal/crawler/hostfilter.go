package crawler

// hostFilter applies the optional deny and allow lists. Both checks feed the
// same skip decision and neither takes precedence.
type hostFilter struct {
	deny  HostList
	allow HostList
}

func newHostFilter(cfg *Config) hostFilter {
	return hostFilter{deny: cfg.DenyList, allow: cfg.AllowList}
}

// Skip returns true and a reason when host must not be crawled.
func (f hostFilter) Skip(host string) (bool, string) {
	skip := false
	reason := ""
	if f.deny.Enabled && f.deny.Matches(host) {
		skip = true
		reason = "host matches deny list"
	}
	if f.allow.Enabled && !f.allow.Matches(host) {
		skip = true
		if reason == "" {
			reason = "host not in allow list"
		}
	}
	return skip, reason
}
