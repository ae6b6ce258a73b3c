package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/appship-labs/appship/pkg/build/commands"
)

// Lines renders the parsed commands back to Dockerfile-syntax lines.
// Commands parsed from one source line share the OriginalCommand value,
// consecutive duplicates are collapsed back into a single line.
func Lines(inputs []interface{}) []string {
	lines := []string{}
	for _, input := range inputs {
		line := lineFor(input)
		if line == "" {
			continue
		}
		if len(lines) > 0 && lines[len(lines)-1] == line {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// WithEnvDefaults renders the commands and appends an ENV line for every
// default whose key the recipe does not set itself. The recipe always wins.
func WithEnvDefaults(inputs []interface{}, defaults map[string]string) []string {
	lines := Lines(inputs)

	declared := map[string]bool{}
	for _, input := range inputs {
		if tcmd, ok := input.(commands.Env); ok {
			declared[tcmd.Name] = true
		}
	}

	keys := []string{}
	for k := range defaults {
		if !declared[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		lines = append(lines, lineFor(commands.EnvWithDefaults(k, defaults[k])))
	}
	return lines
}

// Render renders the lines into the final Dockerfile content.
func Render(lines []string) []byte {
	return []byte(strings.Join(lines, "\n") + "\n")
}

func lineFor(input interface{}) string {
	switch tcmd := input.(type) {
	case commands.Add:
		return originalOr(tcmd.OriginalCommand, fmt.Sprintf("ADD %s %s", tcmd.Source, tcmd.Target))
	case commands.Arg:
		if tcmd.HasValue() {
			return originalOr(tcmd.OriginalCommand, fmt.Sprintf("ARG %s=%q", tcmd.Name, tcmd.Value))
		}
		return originalOr(tcmd.OriginalCommand, fmt.Sprintf("ARG %s", tcmd.Name))
	case commands.Cmd:
		return originalOr(tcmd.OriginalCommand, fmt.Sprintf("CMD [%s]", quoteJoin(tcmd.Values)))
	case commands.Copy:
		return originalOr(tcmd.OriginalCommand, fmt.Sprintf("COPY %s %s", tcmd.Source, tcmd.Target))
	case commands.Entrypoint:
		return originalOr(tcmd.OriginalCommand, fmt.Sprintf("ENTRYPOINT [%s]", quoteJoin(tcmd.Values)))
	case commands.Env:
		return originalOr(tcmd.OriginalCommand, fmt.Sprintf("ENV %s=%q", tcmd.Name, tcmd.Value))
	case commands.Expose:
		return originalOr(tcmd.OriginalCommand, fmt.Sprintf("EXPOSE %s", tcmd.RawValue))
	case commands.From:
		if tcmd.StageName != "" {
			return originalOr(tcmd.OriginalCommand, fmt.Sprintf("FROM %s as %s", tcmd.BaseImage, tcmd.StageName))
		}
		return originalOr(tcmd.OriginalCommand, fmt.Sprintf("FROM %s", tcmd.BaseImage))
	case commands.Label:
		return originalOr(tcmd.OriginalCommand, fmt.Sprintf("LABEL %q=%q", tcmd.Key, tcmd.Value))
	case commands.Run:
		return originalOr(tcmd.OriginalCommand, fmt.Sprintf("RUN %s", tcmd.Command))
	case commands.Shell:
		return originalOr(tcmd.OriginalCommand, fmt.Sprintf("SHELL [%s]", quoteJoin(tcmd.Commands)))
	case commands.User:
		return originalOr(tcmd.OriginalCommand, fmt.Sprintf("USER %s", tcmd.Value))
	case commands.Volume:
		return originalOr(tcmd.OriginalCommand, fmt.Sprintf("VOLUME [%s]", quoteJoin(tcmd.Values)))
	case commands.Workdir:
		return originalOr(tcmd.OriginalCommand, fmt.Sprintf("WORKDIR %s", tcmd.Value))
	}
	return ""
}

func originalOr(original, fallback string) string {
	if original != "" {
		return original
	}
	return fallback
}

func quoteJoin(values []string) string {
	quoted := []string{}
	for _, v := range values {
		quoted = append(quoted, fmt.Sprintf("%q", v))
	}
	return strings.Join(quoted, ",")
}
