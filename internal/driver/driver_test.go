package driver

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fsracer/fsracer/internal/trace/parser"
)

func TestScenarioIndependentProducersRace(t *testing.T) {
	d := New()
	p := parser.New(strings.NewReader(`
newTask A W 1
newTask B W 1
execTask A {
1, hpath AT_FDCWD "/tmp/x" produced
}
execTask B {
1, hpath AT_FDCWD "/tmp/x" produced
}
`))
	faults, _, err := d.Run(p)
	require.NoError(t, err)

	total := 0
	for _, fs := range faults {
		total += len(fs)
	}
	assert.Equal(t, 1, total)
}

func TestScenarioOrderedProducerConsumerNoRace(t *testing.T) {
	d := New()
	p := parser.New(strings.NewReader(`
newTask A W 1
newTask B W 1
dependsOn B A
execTask A {
1, hpath AT_FDCWD "/tmp/x" produced
}
execTask B {
1, hpath AT_FDCWD "/tmp/x" consumed
}
`))
	faults, _, err := d.Run(p)
	require.NoError(t, err)
	assert.Empty(t, faults)
}

func TestScenarioReadReadNoRace(t *testing.T) {
	d := New()
	p := parser.New(strings.NewReader(`
newTask A W 1
newTask B W 1
execTask A {
1, hpath AT_FDCWD "/etc/motd" consumed
}
execTask B {
1, hpath AT_FDCWD "/etc/motd" consumed
}
`))
	faults, _, err := d.Run(p)
	require.NoError(t, err)
	assert.Empty(t, faults)
}

func TestScenarioProducedThenExpungedCancels(t *testing.T) {
	d := New()
	p := parser.New(strings.NewReader(`
newTask A W 1
newTask B W 1
execTask A {
1, hpath AT_FDCWD "/t/f" produced
1, hpath AT_FDCWD "/t/f" expunged
}
execTask B {
1, hpath AT_FDCWD "/t/f" produced
}
`))
	faults, _, err := d.Run(p)
	require.NoError(t, err)
	assert.Empty(t, faults)
}

func TestScenarioSymlinkIndirection(t *testing.T) {
	d := New()
	p := parser.New(strings.NewReader(`
newTask A W 1
execTask A {
1, symlink AT_FDCWD "/l" "/real"
1, hpath AT_FDCWD "/l" consumed
}
`))
	_, _, err := d.Run(p)
	require.NoError(t, err)

	_, ok := d.FS.Accesses.Get("/real", "A")
	assert.True(t, ok)
	_, ok = d.FS.Accesses.Get("/l", "A")
	assert.False(t, ok)
}

func TestScenarioCrossProcessFdInheritance(t *testing.T) {
	d := New()
	p := parser.New(strings.NewReader(`
newTask A W 1
execTask A {
1, newfd AT_FDCWD "/a/b" 3
1, newproc fdfs 2
2, hpath 3 "c" produced
}
`))
	_, _, err := d.Run(p)
	require.NoError(t, err)

	_, ok := d.FS.Accesses.Get("/a/b/c", "A")
	assert.True(t, ok)
}
