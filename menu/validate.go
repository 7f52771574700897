package menu

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// ValidationError a violated invariant at a node
type ValidationError struct {
	Path    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return e.Path + ": " + e.Message
}

// Validate checks all invariants of a menu and reports every violation
func Validate(m *Menu) error {
	if m == nil {
		return errors.New("menu must not be nil")
	}
	if len(m.Children) == 0 {
		return &ValidationError{Message: "root children must not be empty"}
	}
	v := &validator{visited: map[*Node]struct{}{}}
	v.nodes(m.Children, nil, 0)
	return v.err
}

// ValidationErrors unpacks the single violations of an error returned by Validate
func ValidationErrors(err error) []*ValidationError {
	var ret []*ValidationError
	for _, e := range multierr.Errors(err) {
		var ve *ValidationError
		if errors.As(e, &ve) {
			ret = append(ret, ve)
		}
	}
	return ret
}

type validator struct {
	visited map[*Node]struct{}
	err     error
}

func (v *validator) nodes(nodes []*Node, path []string, depth int) {
	for i, n := range nodes {
		segment := fmt.Sprintf("[%d]", i)
		if n != nil && n.Text != "" {
			segment = n.Text
		}
		nodePath := append(path[:len(path):len(path)], segment)
		if n == nil {
			v.add(nodePath, "node must not be null")
			continue
		}
		if _, ok := v.visited[n]; ok {
			v.add(nodePath, "node is referenced more than once (cycle or shared subtree)")
			continue
		}
		v.visited[n] = struct{}{}
		if depth >= MaxDepth {
			v.add(nodePath, fmt.Sprintf("nesting deeper than %d levels", MaxDepth))
			continue
		}
		if strings.TrimSpace(n.Text) == "" {
			v.add(nodePath, "empty text")
		} else if !utf8.ValidString(n.Text) {
			v.add(nodePath, "text is not valid utf-8")
		}
		if !utf8.ValidString(n.URL) {
			v.add(nodePath, "url is not valid utf-8")
		} else if _, err := ParseLocator(n.URL); err != nil {
			v.add(nodePath, err.Error())
		}
		v.nodes(n.Children, nodePath, depth+1)
	}
}

func (v *validator) add(path []string, msg string) {
	v.err = multierr.Append(v.err, &ValidationError{
		Path:    strings.Join(path, PathSeparator),
		Message: msg,
	})
}
