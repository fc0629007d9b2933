package scheme

import (
	"regexp"
	"strconv"
	"strings"
)

const pep440Body = `(?:(?:[0-9]+)!)?` +
	`(?:[0-9]+(?:\.[0-9]+)*)` +
	`(?:[-_\.]?(?:alpha|beta|preview|pre|rc|a|b|c)[-_\.]?(?:[0-9]+)?)?` +
	`(?:(?:-(?:[0-9]+))|(?:[-_\.]?(?:post|rev|r)[-_\.]?(?:[0-9]+)?))?` +
	`(?:[-_\.]?(?:dev)[-_\.]?(?:[0-9]+)?)?` +
	`(?:\+(?:[a-z0-9]+(?:[-_\.][a-z0-9]+)*))?`

// PEP440Grammar matches a PEP 440 version anywhere in a line, without the
// optional leading "v". It has no capture groups.
const PEP440Grammar = `(?i:` + pep440Body + `)`

var pep440RE = regexp.MustCompile(`(?i)^\s*v?` +
	`(?:(?P<epoch>[0-9]+)!)?` +
	`(?P<release>[0-9]+(?:\.[0-9]+)*)` +
	`(?P<pre>[-_\.]?(?P<pre_l>alpha|beta|preview|pre|rc|a|b|c)[-_\.]?(?P<pre_n>[0-9]+)?)?` +
	`(?P<post>(?:-(?P<post_n1>[0-9]+))|(?:[-_\.]?(?P<post_l>post|rev|r)[-_\.]?(?P<post_n2>[0-9]+)?))?` +
	`(?P<dev>[-_\.]?(?P<dev_l>dev)[-_\.]?(?P<dev_n>[0-9]+)?)?` +
	`(?:\+(?P<local>[a-z0-9]+(?:[-_\.][a-z0-9]+)*))?` +
	`\s*$`)

var localSeparators = strings.NewReplacer("-", ".", "_", ".")

// PEP440 is a parsed PEP 440 release version in normalized form.
type PEP440 struct {
	Epoch          int
	Release        []int
	PrereleaseType string
	Prerelease     int
	Post           int
	Dev            int
	Local          string

	base string
}

// ParsePEP440 parses and normalizes base.
func ParsePEP440(base string) (*PEP440, error) {
	m := pep440RE.FindStringSubmatch(base)
	if m == nil {
		return nil, parseError("pep440", base, nil)
	}
	group := func(name string) string {
		return m[pep440RE.SubexpIndex(name)]
	}

	v := &PEP440{base: base}
	var err error
	if e := group("epoch"); e != "" {
		if v.Epoch, err = strconv.Atoi(e); err != nil {
			return nil, parseError("pep440", base, err)
		}
	}
	for _, part := range strings.Split(group("release"), ".") {
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, parseError("pep440", base, err)
		}
		v.Release = append(v.Release, n)
	}

	if group("pre") != "" {
		v.PrereleaseType = normalizePreType(group("pre_l"))
		if v.Prerelease, err = optionalInt(group("pre_n")); err != nil {
			return nil, parseError("pep440", base, err)
		}
	}
	if group("post") != "" {
		n := group("post_n1")
		if n == "" {
			n = group("post_n2")
		}
		if v.Post, err = optionalInt(n); err != nil {
			return nil, parseError("pep440", base, err)
		}
	}
	if group("dev") != "" {
		if v.Dev, err = optionalInt(group("dev_n")); err != nil {
			return nil, parseError("pep440", base, err)
		}
	}
	if l := group("local"); l != "" {
		v.Local = strings.ToLower(localSeparators.Replace(l))
	}
	return v, nil
}

func normalizePreType(l string) string {
	switch strings.ToLower(l) {
	case "a", "alpha":
		return "a"
	case "b", "beta":
		return "b"
	default:
		return "rc"
	}
}

func optionalInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func (v *PEP440) Scheme() string { return "pep440" }
func (v *PEP440) Base() string { return v.base }

// Major returns the first release component.
func (v *PEP440) Major() int { return v.releaseAt(0) }

// Minor returns the second release component, or 0.
func (v *PEP440) Minor() int { return v.releaseAt(1) }

// Patch returns the third release component, or 0.
func (v *PEP440) Patch() int { return v.releaseAt(2) }

func (v *PEP440) releaseAt(i int) int {
	if i < len(v.Release) {
		return v.Release[i]
	}
	return 0
}

// Full is the canonical rendering: zero post and dev segments are omitted.
func (v *PEP440) Full() string {
	return v.render(v.Dev, v.Local, false)
}

// Maximum renders every segment, including zero post and dev.
func (v *PEP440) Maximum() string {
	return v.render(v.Dev, v.Local, true)
}

func (v *PEP440) render(dev int, local string, maximum bool) string {
	var b strings.Builder
	if v.Epoch != 0 {
		b.WriteString(strconv.Itoa(v.Epoch))
		b.WriteByte('!')
	}
	for i, n := range v.Release {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(strconv.Itoa(n))
	}
	if v.PrereleaseType != "" {
		b.WriteString(v.PrereleaseType)
		b.WriteString(strconv.Itoa(v.Prerelease))
	}
	if maximum || v.Post > 0 {
		b.WriteString(".post")
		b.WriteString(strconv.Itoa(v.Post))
	}
	if maximum || dev > 0 {
		b.WriteString(".dev")
		b.WriteString(strconv.Itoa(dev))
	}
	if local != "" {
		b.WriteByte('+')
		b.WriteString(local)
	}
	return b.String()
}

func (v *PEP440) Context() *Context {
	return pep440Context(v, v.Full(), v.Maximum(), v.Dev, v.Local)
}

func pep440Context(v *PEP440, full, maximum string, dev int, local string) *Context {
	c := NewContext()
	c.Set("base", v.base)
	c.Set("full", full)
	c.Set("maximum", maximum)
	setInt(c, "epoch", v.Epoch)
	setInt(c, "major", v.Major())
	setInt(c, "minor", v.Minor())
	setInt(c, "patch", v.Patch())
	c.Set("prerelease_type", v.PrereleaseType)
	setInt(c, "prerelease", v.Prerelease)
	setInt(c, "post", v.Post)
	setInt(c, "dev", dev)
	c.Set("local", local)
	return c
}
