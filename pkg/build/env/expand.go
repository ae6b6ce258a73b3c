package env

import "strings"

// expand replaces ${var} and $var in the input using the lookup function.
// Unlike os.Expand, a reference which the lookup cannot resolve is left
// in the output verbatim. Shell sub-expressions like $(command) are
// never treated as references.
func expand(input string, lookup func(string) (string, bool)) string {
	var buf strings.Builder
	i := 0
	for j := 0; j < len(input); j++ {
		if input[j] == '$' && j+1 < len(input) {
			if input[j+1] == '(' {
				continue
			}
			name, w := extractName(input[j+1:])
			if name == "" {
				continue
			}
			if value, ok := lookup(name); ok {
				buf.WriteString(input[i:j])
				buf.WriteString(value)
				j += w
				i = j + 1
			}
		}
	}
	buf.WriteString(input[i:])
	return buf.String()
}

// extractName reads the reference name from the input following the $.
// Returns the name and the number of consumed bytes.
func extractName(input string) (string, int) {
	if input[0] == '{' {
		for k := 1; k < len(input); k++ {
			if input[k] == '}' {
				return input[1:k], k + 1
			}
			if !isNameByte(input[k]) {
				return "", 0
			}
		}
		return "", 0
	}
	k := 0
	for k < len(input) && isNameByte(input[k]) {
		k++
	}
	return input[:k], k
}

func isNameByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}
