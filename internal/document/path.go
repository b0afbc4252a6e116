package document

import (
	"strconv"
	"strings"
)

// Path addresses a node inside a Document as a run of bracketed segments,
// for example `[services][0][port]`. The zero value is the root.
type Path string

// Key returns the path of the mapping value stored under k.
func (p Path) Key(k string) Path {
	return p + Path("["+k+"]")
}

// Index returns the path of the i-th sequence item.
func (p Path) Index(i int) Path {
	return p + Path("["+strconv.Itoa(i)+"]")
}

func (p Path) String() string { return string(p) }

var nameReplacer = strings.NewReplacer("[", "_", "]", "", "'", "", `"`, "")

// ParamName derives the parameter name used inside placeholder references.
// Segment openers become underscores, closers and quotes are dropped and any
// leading underscores are trimmed, so `[db][password]` becomes `db_password`.
//
// Distinct paths can derive the same name (`[a_b]` and `[a][b]`); callers
// must check for collisions.
func (p Path) ParamName() string {
	return strings.TrimLeft(nameReplacer.Replace(string(p)), "_")
}
