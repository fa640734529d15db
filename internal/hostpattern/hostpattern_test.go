package hostpattern_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leynos/netsuke-go/internal/hostpattern"
)

func TestParseDetectsWildcard(t *testing.T) {
	cases := []struct {
		pattern  string
		wildcard bool
	}{
		{"example.com", false},
		{"*.example.com", true},
	}
	for _, tc := range cases {
		p, err := hostpattern.Parse(tc.pattern)
		require.NoError(t, err)
		assert.Equal(t, tc.wildcard, p.Wildcard())
	}
}

func TestMatchesExpected(t *testing.T) {
	cases := []struct {
		pattern  string
		host     string
		expected bool
	}{
		{"example.com", "example.com", true},
		{"example.com", "sub.example.com", false},
		{"*.example.com", "sub.example.com", true},
		{"*.example.com", "example.com", false},
		{"*.example.com", "deep.sub.example.com", true},
		{"*.example.com", "other.com", false},
	}
	for _, tc := range cases {
		p, err := hostpattern.Parse(tc.pattern)
		require.NoError(t, err)
		assert.Equal(t, tc.expected, p.Matches(tc.host), "pattern=%s host=%s", tc.pattern, tc.host)
	}
}

func TestRejectsInvalidShapes(t *testing.T) {
	for _, pattern := range []string{"-example.com", "example-.com", "exa mple.com", "*.bad-.test"} {
		_, err := hostpattern.Parse(pattern)
		assert.Error(t, err, "pattern %q should be rejected", pattern)
	}
}

func TestParseRejectsSchemeAndSlash(t *testing.T) {
	_, err := hostpattern.Parse("https://example.com")
	assert.Error(t, err)

	_, err = hostpattern.Parse("example.com/path")
	assert.Error(t, err)
}

func TestExactPatternMatchesItself(t *testing.T) {
	// HostPattern::parse(p)?.matches(strip-prefix) is true for an exact
	// pattern matching its own body.
	p, err := hostpattern.Parse("example.com")
	require.NoError(t, err)
	assert.True(t, p.Matches("example.com"))
}

func TestWildcardPatternDoesNotMatchBareSuffix(t *testing.T) {
	p, err := hostpattern.Parse("*.example.com")
	require.NoError(t, err)
	assert.False(t, p.Matches("example.com"))
}

func TestPolicyPrecedenceBlockedOverridesAllowed(t *testing.T) {
	allowed, err := hostpattern.Parse("example.com")
	require.NoError(t, err)
	blocked, err := hostpattern.Parse("example.com")
	require.NoError(t, err)

	policy := hostpattern.DefaultPolicy().AllowHost(allowed).BlockHost(blocked)

	u, err := url.Parse("https://example.com/resource")
	require.NoError(t, err)

	err = policy.Evaluate(u)
	require.Error(t, err)
	var asErr interface{ Code() string }
	require.ErrorAs(t, err, &asErr)
	assert.Equal(t, "NETWORK_HOST_BLOCKED", asErr.Code())
}

func TestPolicyDefaultAllowsAnyHttpsHost(t *testing.T) {
	policy := hostpattern.DefaultPolicy()
	u, err := url.Parse("https://anything.example")
	require.NoError(t, err)
	assert.NoError(t, policy.Evaluate(u))
}

func TestPolicyRejectsDisallowedScheme(t *testing.T) {
	policy := hostpattern.DefaultPolicy()
	u, err := url.Parse("http://anything.example")
	require.NoError(t, err)
	err = policy.Evaluate(u)
	require.Error(t, err)
}

func TestDenyAllHostsForcesExplicitAllowlist(t *testing.T) {
	policy := hostpattern.DefaultPolicy().DenyAllHosts()
	u, err := url.Parse("https://example.com")
	require.NoError(t, err)
	err = policy.Evaluate(u)
	require.Error(t, err)
}

func TestMissingHostIsRejected(t *testing.T) {
	policy := hostpattern.DefaultPolicy()
	u := &url.URL{Scheme: "https"}
	err := policy.Evaluate(u)
	require.Error(t, err)
}
