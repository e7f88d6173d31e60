package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docmerge/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docmerge/internal/adapters/driving/tui/styles"
)

func TestNewBar(t *testing.T) {
	bar := NewBar(styles.DefaultStyles(), keymap.DefaultKeyMap())

	require.NotNil(t, bar)
	assert.Equal(t, StateReady, bar.State())
	assert.Equal(t, "", bar.Message())
	assert.Equal(t, 0, bar.Count())
	assert.Equal(t, 80, bar.Width())
}

func TestNewBar_NilStyles(t *testing.T) {
	bar := NewBar(nil, nil)

	require.NotNil(t, bar)
	assert.NotNil(t, bar.styles)
	assert.NotNil(t, bar.keymap)
}

func TestStatusBar_View(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(b *Bar)
		contains []string
	}{
		{
			name:     "ready",
			setup:    func(_ *Bar) {},
			contains: []string{"Ready", "q: quit", "?: help"},
		},
		{
			name:     "loading",
			setup:    func(b *Bar) { b.SetState(StateLoading) },
			contains: []string{"Loading..."},
		},
		{
			name: "error with message",
			setup: func(b *Bar) {
				b.SetState(StateError)
				b.SetMessage("boom")
			},
			contains: []string{"Error: boom"},
		},
		{
			name:     "error without message",
			setup:    func(b *Bar) { b.SetState(StateError) },
			contains: []string{"Error"},
		},
		{
			name: "groups of sections",
			setup: func(b *Bar) {
				b.SetState(StateGroups)
				b.SetCount(3)
			},
			contains: []string{"3 groups (sections)", "p: pop", "R: resolve group"},
		},
		{
			name: "unique terms with message",
			setup: func(b *Bar) {
				b.SetState(StateUnique)
				b.SetTerms(true)
				b.SetCount(2)
				b.SetMessage("Resolved 1")
			},
			contains: []string{"2 items (terms)", "Resolved 1", "/: filter"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := NewBar(nil, nil)
			bar.SetWidth(160)
			tt.setup(bar)

			view := bar.View()

			for _, s := range tt.contains {
				assert.Contains(t, view, s)
			}
		})
	}
}

func TestStatusBar_NarrowWidth(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(5)

	assert.NotEmpty(t, bar.View())
}

func TestStatusBar_Clear(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetState(StateGroups)
	bar.SetMessage("msg")
	bar.SetCount(4)
	bar.SetTerms(true)

	bar.Clear()

	assert.Equal(t, StateReady, bar.State())
	assert.Equal(t, "", bar.Message())
	assert.Equal(t, 0, bar.Count())
	assert.False(t, bar.terms)
}
