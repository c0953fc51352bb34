package semantic

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltin_Plugins(t *testing.T) {
	tests := []struct {
		id      string
		valid   []string
		invalid []string
	}{
		{"EMAIL.EMAIL", []string{"alice@example.com", "bob.smith@mail.example.org"}, []string{"alice", "alice@", "@example.com"}},
		{"URI.URL", []string{"https://example.com/a?b=c", "http://localhost:8080"}, []string{"example", "not a url"}},
		{"IPADDRESS.IPV4", []string{"10.0.0.1", "255.255.255.255"}, []string{"256.1.1.1", "::1"}},
		{"IPADDRESS.IPV6", []string{"::1", "2001:db8::ff00:42:8329"}, []string{"10.0.0.1", "gggg::1"}},
		{"GUID", []string{"123e4567-e89b-12d3-a456-426614174000"}, []string{"123e4567", "xyz"}},
		{"COUNTRY.ISO-3166-2", []string{"US", "FR"}, []string{"USA", "ZZ"}},
		{"COUNTRY.ISO-3166-3", []string{"USA", "FRA"}, []string{"US", "ZZZ"}},
		{"CURRENCY_CODE.ISO-4217", []string{"USD", "EUR"}, []string{"US", "XYZQ"}},
		{"MACADDRESS", []string{"00:1a:2b:3c:4d:5e"}, []string{"00:1a:2b", "hello"}},
		{"POSTAL_CODE.ZIP5_US", []string{"02139", "90210"}, []string{"2139", "021390", "-1234", "abcde"}},
		{"LATITUDE.DECIMAL", []string{"42.36", "-90"}, []string{"91", "abc"}},
		{"LONGITUDE.DECIMAL", []string{"-71.06", "180"}, []string{"181", "abc"}},
		{"HASH.MD5_HEX", []string{"d41d8cd98f00b204e9800998ecf8427e"}, []string{"d41d8cd9", "zz1d8cd98f00b204e9800998ecf8427e"}},
		{"HASH.SHA1_HEX", []string{"da39a3ee5e6b4b0d3255bfef95601890afd80709"}, []string{"da39a3ee", "d41d8cd98f00b204e9800998ecf8427e"}},
		{"HASH.SHA256_HEX", []string{"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"}, []string{"e3b0c442"}},
		{"COLOR.HEX", []string{"#fff", "#A0B1C2"}, []string{"fff", "#ggg"}},
	}

	cat := Builtin()
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			p, ok := cat.Lookup(tt.id)
			require.True(t, ok)
			assert.Equal(t, tt.id, p.Qualifier())
			for _, v := range tt.valid {
				assert.True(t, p.IsValid(v), "expected %q valid", v)
			}
			for _, v := range tt.invalid {
				assert.False(t, p.IsValid(v), "expected %q invalid", v)
			}
		})
	}
}

func TestBuiltin_LookupIsCaseInsensitive(t *testing.T) {
	p, ok := Builtin().Lookup("email.email")
	require.True(t, ok)
	assert.Equal(t, "EMAIL.EMAIL", p.Qualifier())
}

func TestBuiltin_Aliases(t *testing.T) {
	p, ok := Builtin().Lookup("EMAIL")
	require.True(t, ok)
	assert.Equal(t, "EMAIL.EMAIL", p.Qualifier())

	p, ok = Builtin().Lookup("uuid")
	require.True(t, ok)
	assert.Equal(t, "GUID", p.Qualifier())
}

func TestBuiltin_UnknownQualifier(t *testing.T) {
	_, ok := Builtin().Lookup("NAME.FIRST")
	assert.False(t, ok)
}

func TestMap_Register(t *testing.T) {
	m := NewMap()
	m.Register(Func{ID: "CODE.UPPER", Check: func(s string) bool { return s == strings.ToUpper(s) }})

	p, ok := m.Lookup("code.upper")
	require.True(t, ok)
	assert.True(t, p.IsValid("ABC"))
	assert.False(t, p.IsValid("abc"))

	assert.False(t, m.Alias("X", "MISSING"))
	assert.True(t, m.Alias("UPPER", "CODE.UPPER"))
	assert.Equal(t, []string{"CODE.UPPER"}, m.Qualifiers())
}

func TestMap_NilLookup(t *testing.T) {
	var m *Map
	_, ok := m.Lookup("EMAIL")
	assert.False(t, ok)

	_, ok = None().Lookup("EMAIL")
	assert.False(t, ok)
}
