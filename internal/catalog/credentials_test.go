package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveCredential_Precedence(t *testing.T) {
	env := map[string]string{"K": "E"}
	user := map[string]string{"K": "U"}

	tests := []struct {
		name     string
		override string
		user     map[string]string
		env      map[string]string
		want     string
		found    bool
	}{
		{"override wins", "O", user, env, "O", true},
		{"user beats environment", "", user, env, "U", true},
		{"environment fallback", "", nil, env, "E", true},
		{"empty user value is absent", "", map[string]string{"K": ""}, env, "E", true},
		{"nothing present", "", nil, nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveCredential("K", tt.override, tt.user, tt.env)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCredentials_ResolveAndCallerSupplied(t *testing.T) {
	c := Credentials{
		Environment: map[string]string{"A": "E", "B": "E"},
		User:        map[string]string{"B": "U"},
		Overrides:   map[string]string{"C": "O"},
	}

	key, ok := c.Resolve("A")
	assert.True(t, ok)
	assert.Equal(t, "E", key)
	assert.False(t, c.CallerSupplied("A"))

	key, _ = c.Resolve("B")
	assert.Equal(t, "U", key)
	assert.True(t, c.CallerSupplied("B"))

	key, _ = c.Resolve("C")
	assert.Equal(t, "O", key)
	assert.True(t, c.CallerSupplied("C"))

	_, ok = c.Resolve("D")
	assert.False(t, ok)
}

func TestEnvironmentKeys(t *testing.T) {
	providers := []Provider{{CredentialKey: "A_KEY"}, {CredentialKey: "B_KEY"}, {CredentialKey: "C_KEY"}}
	env := map[string]string{"A_KEY": "a", "B_KEY": ""}

	keys := EnvironmentKeys(providers, func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})

	assert.Equal(t, map[string]string{"A_KEY": "a"}, keys)
}

func TestEnvironmentKeys_ProcessEnvironment(t *testing.T) {
	t.Setenv("CATALOG_TEST_KEY", "from-env")
	keys := EnvironmentKeys([]Provider{{CredentialKey: "CATALOG_TEST_KEY"}}, nil)
	assert.Equal(t, "from-env", keys["CATALOG_TEST_KEY"])
}
