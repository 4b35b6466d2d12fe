// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package builtin

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/jeranaias/commander/internal/commands"
	"github.com/jeranaias/commander/internal/util"
)

// Column widths keep tables inside an 80 column console.
const (
	nameWidth        = 28
	descriptionWidth = 44
)

// newTable creates a borderless table; the console colors lines itself.
func newTable(header ...interface{}) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateColumns = true
	t.Style().Options.SeparateHeader = true
	if len(header) > 0 {
		t.AppendHeader(table.Row(header))
	}
	return t
}

// emit writes a rendered table as info lines.
func emit(inv *commands.Invocation, t table.Writer) {
	for _, line := range util.SplitLines(t.Render()) {
		inv.Infof("%s", line)
	}
}

func formatScale(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
