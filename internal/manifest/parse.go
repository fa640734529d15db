package manifest

import (
	"fmt"
	"io"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/leynos/netsuke-go/internal/errs"
)

// Document is the result of the structural parse stage: a generic node tree
// retaining line/column spans, plus the path the document was loaded from
// (for diagnostics) and the raw bytes (for hint heuristics).
type Document struct {
	Path string
	Root *yaml.Node
	Raw  []byte
}

// Load reads a manifest file from path and structurally parses it.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.New(errs.KindManifestNotFound, "manifest file not found").
				WithDetail("path", path).WithCause(err)
		}
		return nil, errs.New(errs.KindManifestParse, "failed to read manifest").
			WithDetail("path", path).WithCause(err)
	}
	return ParseDocument(data, path)
}

// LoadReader structurally parses a manifest read from r; path is used only
// for diagnostics (pass "-" or "<stdin>" when there is no real path).
func LoadReader(r io.Reader, path string) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errs.New(errs.KindManifestParse, "failed to read manifest stream").
			WithDetail("path", path).WithCause(err)
	}
	return ParseDocument(data, path)
}

// ParseDocument decodes raw YAML bytes into a generic node tree, attaching a
// hint to the resulting error when the underlying message matches a known
// authoring mistake.
func ParseDocument(data []byte, path string) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		parseErr := errs.New(errs.KindManifestParse, "manifest is not valid YAML").
			WithDetail("path", path).WithCause(err)
		if line, ok := errorLine(err.Error()); ok {
			parseErr.WithDetail("line", line)
		}
		if hint := hintFor(err.Error(), data); hint != "" {
			parseErr.WithDetail("hint", hint)
		}
		return nil, parseErr
	}
	// An empty document decodes to a nil-kind node; normalise it to a
	// document node with no content, which Decode reads as an empty
	// manifest.
	if root.Kind == 0 {
		root.Kind = yaml.DocumentNode
	}
	return &Document{Path: path, Root: &root, Raw: data}, nil
}

var lineRe = regexp.MustCompile(`line (\d+)`)

func errorLine(msg string) (int, bool) {
	m := lineRe.FindStringSubmatch(msg)
	if m == nil {
		return 0, false
	}
	var n int
	if _, err := fmt.Sscanf(m[1], "%d", &n); err != nil {
		return 0, false
	}
	return n, true
}

// hintFor matches the underlying yaml.v3 error text against a small set of
// known authoring mistakes and returns an actionable hint, or "" when
// nothing matches. The hints are fixed English strings; they are not looked
// up in the localisation catalogue.
func hintFor(msg string, raw []byte) string {
	switch {
	case containsAny(msg, "found character that cannot start any token"):
		return "check for a stray or unescaped character such as a tab or backtick"
	case containsAny(msg, "did not find expected key"):
		return "check indentation - mapping keys at the same level must align"
	case containsAny(msg, "mapping values are not allowed"):
		return "a value after ':' was not expected here - check for a missing quote or an extra colon"
	case containsAny(msg, "found unexpected end of stream"):
		return "the document ended unexpectedly - check for an unclosed quote or bracket"
	case containsAny(msg, "found unknown escape character"):
		return "check for a bad backslash escape inside a quoted string"
	}
	if hasLeadingTab(raw) {
		return "YAML does not allow tab characters for indentation - use spaces"
	}
	return ""
}

func containsAny(haystack string, needle string) bool {
	return len(haystack) >= len(needle) && indexOf(haystack, needle) >= 0
}

func indexOf(haystack, needle string) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}
	return -1
}

func hasLeadingTab(raw []byte) bool {
	lineStart := true
	for _, b := range raw {
		switch {
		case lineStart && b == '\t':
			return true
		case b == '\n':
			lineStart = true
			continue
		case b == ' ':
			// still possibly leading
		default:
			lineStart = false
		}
	}
	return false
}
