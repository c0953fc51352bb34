package semantic

import (
	"regexp"
	"sync"

	"github.com/go-playground/validator/v10"
)

// tagPlugin delegates membership to a validator tag expression.
type tagPlugin struct {
	qualifier string
	tag       string
	validate  *validator.Validate
}

func (p *tagPlugin) Qualifier() string { return p.qualifier }

func (p *tagPlugin) IsValid(value string) bool {
	return p.validate.Var(value, p.tag) == nil
}

var zip5 = regexp.MustCompile(`^[0-9]{5}$`)

// validateZip5 accepts exactly five ASCII digits.
func validateZip5(fl validator.FieldLevel) bool {
	return zip5.MatchString(fl.Field().String())
}

// builtinTags maps qualifiers to validator tag expressions.
var builtinTags = []struct {
	qualifier string
	tag       string
}{
	{"EMAIL.EMAIL", "email"},
	{"URI.URL", "url"},
	{"IPADDRESS.IPV4", "ipv4"},
	{"IPADDRESS.IPV6", "ipv6"},
	{"GUID", "uuid"},
	{"COUNTRY.ISO-3166-2", "iso3166_1_alpha2"},
	{"COUNTRY.ISO-3166-3", "iso3166_1_alpha3"},
	{"CURRENCY_CODE.ISO-4217", "iso4217"},
	{"MACADDRESS", "mac"},
	{"POSTAL_CODE.ZIP5_US", "zip5"},
	{"LATITUDE.DECIMAL", "latitude"},
	{"LONGITUDE.DECIMAL", "longitude"},
	{"HASH.MD5_HEX", "md5"},
	{"HASH.SHA1_HEX", "hexadecimal,len=40"},
	{"HASH.SHA256_HEX", "sha256"},
	{"COLOR.HEX", "hexcolor"},
}

var builtinAliases = map[string]string{
	"EMAIL": "EMAIL.EMAIL",
	"UUID":  "GUID",
}

var (
	builtinOnce sync.Once
	builtin     *Map
)

// Builtin returns the shared catalog of built-in plugins.
func Builtin() *Map {
	builtinOnce.Do(func() {
		builtin = newBuiltin()
	})
	return builtin
}

func newBuiltin() *Map {
	v := validator.New()
	_ = v.RegisterValidation("zip5", validateZip5)

	m := NewMap()
	for _, b := range builtinTags {
		m.Register(&tagPlugin{qualifier: b.qualifier, tag: b.tag, validate: v})
	}
	for alias, target := range builtinAliases {
		m.Alias(alias, target)
	}
	return m
}
