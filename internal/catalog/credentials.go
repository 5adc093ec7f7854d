package catalog

import "os"

// Credentials is the key material available to one aggregation call.
// All maps are keyed by credential key name, e.g. OPENROUTER_API_KEY.
type Credentials struct {
	// Environment holds process-wide keys.
	Environment map[string]string
	// User holds keys the caller supplied with the request.
	User map[string]string
	// Overrides take precedence over everything else.
	Overrides map[string]string
}

// ResolveCredential picks the effective key: override, then user-supplied,
// then environment. Empty values count as absent.
func ResolveCredential(name, override string, user, env map[string]string) (string, bool) {
	if override != "" {
		return override, true
	}
	if v := user[name]; v != "" {
		return v, true
	}
	if v := env[name]; v != "" {
		return v, true
	}
	return "", false
}

func (c Credentials) Resolve(name string) (string, bool) {
	return ResolveCredential(name, c.Overrides[name], c.User, c.Environment)
}

// CallerSupplied reports whether the caller, rather than the process
// environment, provided a key for name.
func (c Credentials) CallerSupplied(name string) bool {
	return c.Overrides[name] != "" || c.User[name] != ""
}

// EnvironmentKeys reads the credential key of every provider through lookup.
// A nil lookup reads the process environment.
func EnvironmentKeys(providers []Provider, lookup func(string) (string, bool)) map[string]string {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	keys := make(map[string]string, len(providers))
	for _, p := range providers {
		if v, ok := lookup(p.CredentialKey); ok && v != "" {
			keys[p.CredentialKey] = v
		}
	}
	return keys
}
