package classify

import (
	"fmt"
)

// secretWords is the sensitive vocabulary. It must appear as a whole
// underscore-delimited word of the parameter name.
const secretWords = `(pas+wo?r?d|pass(phrase)?|pwd|token|secrete?|api(\W|_)?key)`

// DefaultSecretPattern anchors secretWords on word boundaries of the
// underscore naming convention: exact, leading, trailing or inner word.
var DefaultSecretPattern = fmt.Sprintf(`(^%[1]s$|_%[1]s_|^%[1]s_|_%[1]s$)`, secretWords)

// DefaultSecretMatcher returns the matcher used when no patterns are given.
func DefaultSecretMatcher() *PatternMatcher {
	m, err := NewPatternMatcher(DefaultSecretPattern)
	if err != nil {
		panic(err)
	}
	return m
}
