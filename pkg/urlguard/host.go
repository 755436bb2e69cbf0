package urlguard

import (
	"errors"
	"fmt"
	"net/netip"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var (
	errEmptyHost    = errors.New("missing host")
	errMissingEmail = errors.New("mailto address without domain")
)

// badCharacter reports the first character that is never acceptable in a
// URL: invalid UTF-8, controls, whitespace, zero-width and joiner characters,
// and bidi controls.
func badCharacter(raw string) (string, bool) {
	for i, r := range raw {
		switch {
		case r == utf8.RuneError:
			if _, size := utf8.DecodeRuneInString(raw[i:]); size <= 1 {
				return fmt.Sprintf("invalid UTF-8 at byte %d", i), true
			}
		case unicode.IsControl(r):
			return fmt.Sprintf("control character %U at byte %d", r, i), true
		case unicode.IsSpace(r):
			return fmt.Sprintf("whitespace %U at byte %d", r, i), true
		case isInvisible(r):
			return fmt.Sprintf("invisible character %U at byte %d", r, i), true
		}
	}
	return "", false
}

// isInvisible matches zero-width, joiner and bidi-control code points.
func isInvisible(r rune) bool {
	switch r {
	case '\u00AD', '\u034F', '\u180E', '\u200B', '\u200C', '\u200D', '\u2060', '\uFEFF':
		return true
	case '\u061C', '\u200E', '\u200F':
		return true
	}
	return r >= '\u202A' && r <= '\u202E' || r >= '\u2066' && r <= '\u2069'
}

// hostSpan is the byte range of a host inside the raw URL.
type hostSpan struct {
	start int
	end   int
}

// checkHosts validates every host in raw and returns raw with the hosts
// replaced by their ASCII encoding.
func (v *Validator) checkHosts(raw, scheme string) (string, []string, error) {
	var spans []hostSpan
	var warnings []string

	if strings.EqualFold(scheme, "mailto") {
		var err error
		spans, err = mailtoDomains(raw, len(scheme)+1)
		if err != nil {
			return "", nil, err
		}
	} else {
		span, ok, userinfo := authorityHost(raw, len(scheme)+1)
		if userinfo {
			warnings = append(warnings, "URL carries userinfo")
		}
		switch {
		case ok && span.start == span.end:
			return "", nil, errEmptyHost
		case ok:
			spans = append(spans, span)
		case needsAuthority(scheme):
			return "", nil, errEmptyHost
		}
	}

	var out strings.Builder
	last := 0
	for _, span := range spans {
		host := raw[span.start:span.end]
		ascii, err := v.encodeHost(host)
		if err != nil {
			return "", nil, err
		}
		if ascii != host {
			warnings = append(warnings, fmt.Sprintf("host %q encoded as %q", host, ascii))
		}
		out.WriteString(raw[last:span.start])
		out.WriteString(ascii)
		last = span.end
	}
	out.WriteString(raw[last:])

	return out.String(), warnings, nil
}

func needsAuthority(scheme string) bool {
	switch strings.ToLower(scheme) {
	case "http", "https", "ftp", "ftps", "ws", "wss":
		return true
	}
	return false
}

// authorityHost locates the host of "scheme://[userinfo@]host[:port]...".
// ok is false when the URL has no authority.
func authorityHost(raw string, afterScheme int) (hostSpan, bool, bool) {
	rest := raw[afterScheme:]
	if !strings.HasPrefix(rest, "//") {
		return hostSpan{}, false, false
	}
	start := afterScheme + 2
	end := len(raw)
	if i := strings.IndexAny(raw[start:], "/?#\\"); i >= 0 {
		end = start + i
	}

	userinfo := false
	if at := strings.LastIndexByte(raw[start:end], '@'); at >= 0 {
		start += at + 1
		userinfo = true
	}

	authority := raw[start:end]
	if strings.HasPrefix(authority, "[") {
		if rb := strings.IndexByte(authority, ']'); rb >= 0 {
			return hostSpan{start: start, end: start + rb + 1}, true, userinfo
		}
		return hostSpan{start: start, end: end}, true, userinfo
	}
	if colon := strings.LastIndexByte(authority, ':'); colon >= 0 {
		end = start + colon
	}
	return hostSpan{start: start, end: end}, true, userinfo
}

// mailtoDomains locates the domain of every address in a mailto URL.
func mailtoDomains(raw string, afterScheme int) ([]hostSpan, error) {
	end := len(raw)
	if q := strings.IndexAny(raw[afterScheme:], "?#"); q >= 0 {
		end = afterScheme + q
	}

	var spans []hostSpan
	pos := afterScheme
	for pos <= end {
		next := strings.IndexByte(raw[pos:end], ',')
		addrEnd := end
		if next >= 0 {
			addrEnd = pos + next
		}
		addr := raw[pos:addrEnd]
		at := strings.LastIndexByte(addr, '@')
		if at <= 0 || at == len(addr)-1 {
			return nil, fmt.Errorf("%w: %q", errMissingEmail, addr)
		}
		spans = append(spans, hostSpan{start: pos + at + 1, end: addrEnd})
		if next < 0 {
			break
		}
		pos = addrEnd + 1
	}
	return spans, nil
}

// encodeHost returns the ASCII form of host. ASCII hosts are returned
// unchanged when valid; IP literals skip IDNA.
func (v *Validator) encodeHost(host string) (string, error) {
	if strings.HasPrefix(host, "[") {
		if !strings.HasSuffix(host, "]") {
			return "", fmt.Errorf("unterminated IP literal %q", host)
		}
		addr, err := netip.ParseAddr(strings.Trim(host, "[]"))
		if err != nil || !addr.Is6() {
			return "", fmt.Errorf("invalid IPv6 literal %q", host)
		}
		return host, nil
	}
	if _, err := netip.ParseAddr(host); err == nil {
		return host, nil
	}
	if strings.ContainsRune(host, '%') {
		return "", fmt.Errorf("percent-encoded host %q", host)
	}
	if !norm.NFC.IsNormalString(host) {
		return "", fmt.Errorf("host %q is not NFC normalized", host)
	}

	ascii, err := v.profile.ToASCII(host)
	if err != nil {
		return "", fmt.Errorf("host %q: %w", host, err)
	}

	// Decode punycode input too, so "xn--" labels cannot hide a homograph.
	unicodeHost, err := v.profile.ToUnicode(ascii)
	if err != nil {
		return "", fmt.Errorf("host %q: %w", host, err)
	}
	for _, label := range strings.Split(unicodeHost, ".") {
		if scripts := labelScripts(label); mixedScripts(scripts) {
			return "", fmt.Errorf("host label %q mixes scripts %s", label, strings.Join(scripts, "+"))
		}
	}

	if isASCII(host) && strings.EqualFold(ascii, host) {
		return host, nil
	}
	return ascii, nil
}

func isASCII(s string) bool {
	for i := range len(s) {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

//nolint:gochecknoglobals // Static lookup table.
var hostScripts = []struct {
	name  string
	table *unicode.RangeTable
}{
	{"Latin", unicode.Latin},
	{"Cyrillic", unicode.Cyrillic},
	{"Greek", unicode.Greek},
	{"Armenian", unicode.Armenian},
	{"Georgian", unicode.Georgian},
	{"Hebrew", unicode.Hebrew},
	{"Arabic", unicode.Arabic},
	{"Devanagari", unicode.Devanagari},
	{"Thai", unicode.Thai},
	{"Han", unicode.Han},
	{"Hiragana", unicode.Hiragana},
	{"Katakana", unicode.Katakana},
	{"Hangul", unicode.Hangul},
	{"Cherokee", unicode.Cherokee},
}

// labelScripts lists the scripts of the letters in label, in table order.
// Digits, hyphens and other common characters carry no script.
func labelScripts(label string) []string {
	seen := make([]bool, len(hostScripts))
	other := false
	for _, r := range label {
		if !unicode.IsLetter(r) {
			continue
		}
		found := false
		for i, s := range hostScripts {
			if unicode.Is(s.table, r) {
				seen[i] = true
				found = true
				break
			}
		}
		if !found {
			other = true
		}
	}

	var out []string
	for i, ok := range seen {
		if ok {
			out = append(out, hostScripts[i].name)
		}
	}
	if other {
		out = append(out, "Other")
	}
	return out
}

// mixedScripts reports whether a set of scripts is a homograph risk. Japanese
// (Han, Hiragana, Katakana) and Korean (Han, Hangul) combinations are allowed.
func mixedScripts(scripts []string) bool {
	if len(scripts) <= 1 {
		return false
	}
	japanese := map[string]bool{"Han": true, "Hiragana": true, "Katakana": true}
	korean := map[string]bool{"Han": true, "Hangul": true}
	allIn := func(set map[string]bool) bool {
		for _, s := range scripts {
			if !set[s] {
				return false
			}
		}
		return true
	}
	return !allIn(japanese) && !allIn(korean)
}
