package ux

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimpleTable_Empty(t *testing.T) {
	assert.Empty(t, NewSimpleTable("x", []string{"a"}).View(PlainStyles()))
}

func TestSimpleTable_AlignsWideCharacters(t *testing.T) {
	tbl := NewSimpleTable("Publish summary", []string{"Platform", "Status"})
	tbl.AddRow("掘金", "ok")
	tbl.AddRow("微信公众号", "ok")
	tbl.AddRow("CSDN", "failed")

	out := tbl.View(PlainStyles())
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "Publish summary", lines[0])

	width := lipgloss.Width(lines[1])
	for _, l := range lines[2:] {
		assert.Equal(t, width, lipgloss.Width(l), "line %q", l)
	}
	assert.True(t, strings.HasPrefix(lines[2], "---"))
}
