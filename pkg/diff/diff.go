// Package diff renders readable differences for test failure messages.
package diff

import (
	"strings"

	"github.com/k0kubun/pp/v3"
	"github.com/kylelemons/godebug/diff"
	"github.com/kylelemons/godebug/pretty"
)

// Tokens diffs two token trees by their exported fields
func Tokens[T any](want T, got T) string {
	printer := pp.New()
	printer.SetExportedOnly(true)
	printer.SetColoringEnabled(false)
	return decorate(diff.Diff(printer.Sprint(got), printer.Sprint(want)))
}

// Data diffs two extracted values. Map keys are compared in sorted order.
func Data(want, got any) string {
	return decorate(pretty.Compare(got, want))
}

func decorate(abc string) string {
	if abc == "" {
		return ""
	}
	str := "\n\n"
	str += "to convert ACTUAL ⏩️ EXPECTED:\n\n"
	str += "add:    ➕\n"
	str += "remove: ➖\n"
	str += "\n"
	str += strings.ReplaceAll(strings.ReplaceAll("\n"+abc, "\n-", "\n➖"), "\n+", "\n➕")

	return str
}
