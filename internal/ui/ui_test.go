package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "█████░░░░░  50%", ProgressBar(1, 2, 10))
	assert.Equal(t, "░░░░░   0%", ProgressBar(0, 0, 2), "width and total are clamped")
	assert.Equal(t, "█████ 100%", ProgressBar(7, 7, 5))
}

func TestPanelMono(t *testing.T) {
	SetTheme("mono")
	t.Cleanup(func() { SetTheme("classic") })

	var buf bytes.Buffer
	Panel(&buf, []string{"Todos", "[ ] Buy milk longer"})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "+---------------------+", lines[0])
	assert.Equal(t, "| Todos               |", lines[1])
	assert.Equal(t, "| [ ] Buy milk longer |", lines[2])
	assert.Equal(t, lines[0], lines[3])
}

func TestMonoDisablesColor(t *testing.T) {
	SetTheme("mono")
	t.Cleanup(func() { SetTheme("classic") })

	assert.Equal(t, "plain", C(fgRed, "plain"))

	var buf bytes.Buffer
	OK(&buf, "added")
	assert.Equal(t, symCheck+" added\n", buf.String())
}

func TestForcedColor(t *testing.T) {
	SetColorForcing(true, false)
	t.Cleanup(func() { SetColorForcing(false, false) })

	assert.Equal(t, fgGreen+"ok"+reset, C(fgGreen, "ok"))
	assert.Equal(t, "ok", C("", "ok"))
}

func TestUnknownThemeFallsBackToClassic(t *testing.T) {
	SetTheme("mono")
	SetTheme("sparkly")
	assert.Equal(t, classic(), Current())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcdefg...", Truncate("abcdefghijklmnop", 10))
}
