package boreas

import (
	"errors"
	"strings"

	"github.com/grafana/regexp"
)

// Pattern represents a route path in matchable form. A literal pattern is
// the path string itself, used verbatim as a lookup key. A compiled pattern
// supports named single-segment parameters ('{id}') and a trailing wildcard
// ('*') and is matched with an anchored regular expression. Use
// NewLiteralPattern or NewPattern to create patterns.
type Pattern struct {
	str        string
	literal    bool
	regExp     *regexp.Regexp
	paramNames []string
}

// NewLiteralPattern creates a pattern that matches the given path exactly.
// The path must not contain pattern metacharacters ('{', '}', or '*');
// templates using them are only valid on tables with pattern routing
// enabled.
func NewLiteralPattern(path string) (*Pattern, error) {
	if !strings.HasPrefix(path, "/") {
		return nil, errors.New("path must start with a leading slash")
	}
	if strings.ContainsAny(path, "{}*") {
		return nil, errors.New("path contains pattern metacharacters but pattern routing is disabled")
	}
	return &Pattern{str: path, literal: true}, nil
}

// NewPattern compiles a path template. '{name}' matches exactly one path
// segment and captures it under the given name. '*' matches the remainder
// of the path, zero or more segments, and captures nothing. The compiled
// expression is anchored to the full path. Compilation happens once per
// route at registration time.
//
// A duplicate parameter name within one template is tolerated: the second
// occurrence still matches a segment but captures nothing.
func NewPattern(patternStr string) (*Pattern, error) {
	if !strings.HasPrefix(patternStr, "/") {
		return nil, errors.New("pattern must start with a leading slash")
	}

	if patternStr == "/" {
		regExp, err := regexp.Compile("^/$")
		if err != nil {
			return nil, err
		}
		return &Pattern{str: patternStr, regExp: regExp}, nil
	}

	paramNames := []string{}
	seenNames := map[string]bool{}
	regExpStr := "^"

	for _, segment := range strings.Split(patternStr[1:], "/") {
		if segment == "" {
			return nil, errors.New("pattern contains an empty path segment")
		}

		if segment == "*" {
			// The wildcard swallows the slash before it so that zero
			// remaining segments still match.
			regExpStr += "(?:/.*)?"
			continue
		}

		segmentExpr, names, err := compileSegment(segment, seenNames)
		if err != nil {
			return nil, err
		}
		regExpStr += "/" + segmentExpr
		paramNames = append(paramNames, names...)
	}

	regExpStr += "/?$"

	regExp, err := regexp.Compile(regExpStr)
	if err != nil {
		return nil, err
	}

	return &Pattern{
		str:        patternStr,
		regExp:     regExp,
		paramNames: paramNames,
	}, nil
}

// Match compares a path to the pattern. For compiled patterns the returned
// map holds the named parameter values captured from the path. The second
// return value reports whether the path matched.
func (p *Pattern) Match(path string) (PathParams, bool) {
	if p.literal {
		if path != p.str {
			return nil, false
		}
		return nil, true
	}

	matches := p.regExp.FindStringSubmatch(path)
	if len(matches) == 0 {
		return nil, false
	}

	keys := p.regExp.SubexpNames()

	params := make(PathParams, len(p.paramNames))
	for i := 1; i < len(keys); i += 1 {
		if keys[i] != "" {
			params[keys[i]] = matches[i]
		}
	}

	return params, true
}

// IsLiteral reports whether the pattern is a verbatim path rather than a
// compiled template.
func (p *Pattern) IsLiteral() bool {
	return p.literal
}

// ParamNames returns the named parameters captured by the pattern in the
// order they appear in the template. The returned slice must not be
// modified.
func (p *Pattern) ParamNames() []string {
	return p.paramNames
}

// String returns the string representation of the pattern.
func (p *Pattern) String() string {
	return p.str
}

// compileSegment converts one path segment of a template to a regular
// expression fragment, collecting any new parameter names it declares.
// '{name}' may appear anywhere within the segment; the surrounding text is
// matched literally.
func compileSegment(segment string, seenNames map[string]bool) (string, []string, error) {
	names := []string{}
	expr := ""

	rest := segment
	for rest != "" {
		openIdx := strings.IndexByte(rest, '{')
		if openIdx == -1 {
			expr += regexp.QuoteMeta(rest)
			break
		}

		closeIdx := strings.IndexByte(rest, '}')
		if closeIdx < openIdx {
			return "", nil, errors.New("unbalanced braces in pattern segment " + segment)
		}

		name := rest[openIdx+1 : closeIdx]
		if name == "" {
			return "", nil, errors.New("pattern parameters must have a name")
		}

		expr += regexp.QuoteMeta(rest[:openIdx])
		if seenNames[name] {
			expr += "[^/]+"
		} else {
			seenNames[name] = true
			names = append(names, name)
			expr += "(?P<" + name + ">[^/]+)"
		}

		rest = rest[closeIdx+1:]
	}

	return expr, names, nil
}
