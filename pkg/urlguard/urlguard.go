// Package urlguard validates link and image URLs found in Markdown.
//
// Validation runs in fixed layers and stops at the first failure:
//  1. control, zero-width, joiner and bidi-control characters; this layer
//     also rejects ASCII and Unicode whitespace
//  2. fragment-only URLs ("#anchor") are accepted as they are
//  3. protocol-relative URLs ("//host") are rejected
//  4. the scheme must be allow-listed (relative references only by policy)
//  5. the host must survive IDNA lookup encoding, be NFC and not mix scripts
//  6. percent escapes must be well formed and must not encode control bytes
//  7. the result must parse with net/url
//
// A rejected URL is a normal outcome, not an error.
package urlguard

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	"golang.org/x/net/idna"
)

// Layer identifies the validation layer that decided a verdict.
type Layer uint8

// Layers, in evaluation order. LayerNone means every layer passed.
const (
	LayerNone Layer = iota
	LayerCharacters
	LayerFragment
	LayerProtocolRelative
	LayerScheme
	LayerHost
	LayerPercent
	LayerParse
)

//nolint:gochecknoglobals // Static lookup table.
var layerNames = [...]string{
	LayerNone:             "none",
	LayerCharacters:       "characters",
	LayerFragment:         "fragment",
	LayerProtocolRelative: "protocol-relative",
	LayerScheme:           "scheme",
	LayerHost:             "host",
	LayerPercent:          "percent-encoding",
	LayerParse:            "parse",
}

func (l Layer) String() string {
	if int(l) < len(layerNames) {
		return layerNames[l]
	}
	return fmt.Sprintf("layer(%d)", l)
}

// DefaultSchemes is the scheme allow-list used when a Policy names none.
//
//nolint:gochecknoglobals // Read-only default.
var DefaultSchemes = []string{"http", "https", "mailto"}

// Policy configures a Validator.
type Policy struct {
	// AllowedSchemes lists accepted schemes, compared case-insensitively.
	// Empty means DefaultSchemes.
	AllowedSchemes []string

	// AllowRelative accepts scheme-less relative references with a warning.
	AllowRelative bool
}

// Verdict is the outcome of validating one URL.
type Verdict struct {
	// Valid is true when the URL passed every layer.
	Valid bool

	// Normalized is the input with the host replaced by its IDNA ASCII form.
	// Empty when the URL was rejected.
	Normalized string

	// Warnings are non-fatal observations (relative reference, userinfo,
	// IDN host converted).
	Warnings []string

	// Layer is the layer that rejected the URL, LayerFragment for accepted
	// fragment-only URLs, and LayerNone otherwise.
	Layer Layer

	// Reason explains a rejection.
	Reason string
}

// Validator applies a Policy. It is safe for concurrent use.
type Validator struct {
	schemes       map[string]struct{}
	allowRelative bool
	profile       *idna.Profile
}

// New creates a Validator for the given policy.
func New(policy Policy) *Validator {
	schemes := policy.AllowedSchemes
	if len(schemes) == 0 {
		schemes = DefaultSchemes
	}

	allowed := make(map[string]struct{}, len(schemes))
	for _, s := range schemes {
		allowed[strings.ToLower(strings.TrimSuffix(strings.TrimSpace(s), ":"))] = struct{}{}
	}

	return &Validator{
		schemes:       allowed,
		allowRelative: policy.AllowRelative,
		profile: idna.New(
			idna.MapForLookup(),
			idna.BidiRule(),
			idna.StrictDomainName(true),
			idna.VerifyDNSLength(true),
			idna.Transitional(false),
		),
	}
}

// Default returns a Validator for the default policy.
func Default() *Validator {
	return New(Policy{})
}

// Schemes returns the allow-listed schemes, sorted.
func (v *Validator) Schemes() []string {
	out := make([]string, 0, len(v.schemes))
	for s := range v.schemes {
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}

func reject(layer Layer, format string, args ...any) Verdict {
	return Verdict{Layer: layer, Reason: fmt.Sprintf(format, args...)}
}

// Validate runs every layer over raw.
func (v *Validator) Validate(raw string) Verdict {
	if reason, bad := badCharacter(raw); bad {
		return reject(LayerCharacters, "%s", reason)
	}

	if strings.HasPrefix(raw, "#") {
		return Verdict{Valid: true, Normalized: raw, Layer: LayerFragment}
	}

	if isProtocolRelative(raw) {
		return reject(LayerProtocolRelative, "protocol-relative URL")
	}

	if raw == "" {
		return reject(LayerScheme, "empty URL")
	}

	var warnings []string

	scheme, hasScheme, err := splitScheme(raw)
	switch {
	case err != nil:
		return reject(LayerScheme, "%v", err)
	case !hasScheme:
		if !v.allowRelative {
			return reject(LayerScheme, "relative reference not allowed")
		}
		warnings = append(warnings, "relative reference")
	default:
		if _, ok := v.schemes[strings.ToLower(scheme)]; !ok {
			return reject(LayerScheme, "scheme %q not allowed", scheme)
		}
	}

	normalized := raw
	if hasScheme {
		var hostWarnings []string
		normalized, hostWarnings, err = v.checkHosts(raw, scheme)
		if err != nil {
			return reject(LayerHost, "%v", err)
		}
		warnings = append(warnings, hostWarnings...)
	}

	if err := checkPercent(normalized); err != nil {
		return reject(LayerPercent, "%v", err)
	}

	if _, err := url.Parse(normalized); err != nil {
		return reject(LayerParse, "%v", err)
	}

	return Verdict{Valid: true, Normalized: normalized, Warnings: warnings, Layer: LayerNone}
}

// Valid is shorthand for Validate(raw).Valid.
func (v *Validator) Valid(raw string) bool {
	return v.Validate(raw).Valid
}

func isProtocolRelative(raw string) bool {
	if len(raw) < 2 {
		return false
	}
	isSlash := func(b byte) bool { return b == '/' || b == '\\' }
	return isSlash(raw[0]) && isSlash(raw[1])
}

// splitScheme extracts an RFC 3986 scheme. A colon before any '/', '?' or '#'
// must terminate a well-formed scheme, otherwise the reference is ambiguous
// and rejected.
func splitScheme(raw string) (string, bool, error) {
	end := strings.IndexAny(raw, ":/?#")
	if end < 0 || raw[end] != ':' {
		return "", false, nil
	}

	scheme := raw[:end]
	if scheme == "" {
		return "", false, fmt.Errorf("missing scheme before ':'")
	}
	for i := range len(scheme) {
		c := scheme[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case i > 0 && (c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return "", false, fmt.Errorf("invalid scheme %q", scheme)
		}
	}
	return scheme, true, nil
}

// checkPercent verifies every escape is %XX and does not encode a control
// byte.
func checkPercent(s string) error {
	for i := 0; i < len(s); i++ {
		if s[i] != '%' {
			continue
		}
		if i+2 >= len(s) || !isHex(s[i+1]) || !isHex(s[i+2]) {
			end := min(i+3, len(s))
			return fmt.Errorf("malformed percent escape %q", s[i:end])
		}
		b := unhex(s[i+1])<<4 | unhex(s[i+2])
		if b < 0x20 || b == 0x7f {
			return fmt.Errorf("percent escape %q encodes a control byte", s[i:i+3])
		}
		i += 2
	}
	return nil
}

func isHex(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
