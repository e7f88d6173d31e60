package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docmerge/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docmerge/internal/core/domain"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	svc := &MockReviewService{
		Groups: []domain.SimilarityGroup{{
			ID: "g1",
			Members: []domain.SourceSection{
				{ID: "s1", SourceID: "a.md", Content: "A cache stores data."},
				{ID: "s2", SourceID: "b.md", Content: "A cache keeps data."},
			},
		}},
		Unique: []domain.SourceSection{{ID: "s3", SourceID: "a.md", Content: "Deploy on Tuesday."}},
	}
	app, err := NewApp(&Ports{Review: svc})
	require.NoError(t, err)
	return app
}

// send updates the app with msg and then with whatever its command returns.
func send(app *App, msg tea.Msg) {
	_, cmd := app.Update(msg)
	if cmd == nil {
		return
	}
	if next := cmd(); next != nil {
		if _, isBatch := next.(tea.BatchMsg); !isBatch {
			app.Update(next)
		}
	}
}

func TestNewApp_Success(t *testing.T) {
	app := newTestApp(t)

	assert.Equal(t, messages.ViewMenu, app.CurrentView())
	assert.False(t, app.Ready())
	assert.Equal(t, "Initialising...", app.View())
}

func TestNewApp_InvalidPorts(t *testing.T) {
	app, err := NewApp(&Ports{})

	assert.ErrorIs(t, err, ErrMissingReviewService)
	assert.Nil(t, app)
}

func TestApp_WithContext(t *testing.T) {
	app := newTestApp(t)

	type contextKey string
	ctx := context.WithValue(context.Background(), contextKey("key"), "value")
	result := app.WithContext(ctx)

	assert.Same(t, app, result)
	assert.Equal(t, ctx, app.ctx)
}

func TestApp_Init(t *testing.T) {
	app := newTestApp(t)

	assert.NotNil(t, app.Init())
}

func TestApp_WindowSize(t *testing.T) {
	app := newTestApp(t)

	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	assert.True(t, app.Ready())
	assert.Contains(t, app.View(), "docmerge")
}

func TestApp_MenuToGroups(t *testing.T) {
	app := newTestApp(t)
	app.SetDimensions(140, 40)

	send(app, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, messages.ViewGroups, app.CurrentView())
	send(app, messages.ViewChanged{View: messages.ViewGroups})
	view := app.View()
	assert.Contains(t, view, "Similar sections")
	assert.Contains(t, view, "A cache keeps data.")
}

func TestApp_UniqueView(t *testing.T) {
	app := newTestApp(t)
	app.SetDimensions(140, 40)

	send(app, messages.ViewChanged{View: messages.ViewUnique})

	assert.Equal(t, messages.ViewUnique, app.CurrentView())
	assert.Contains(t, app.View(), "Deploy on Tuesday.")
}

func TestApp_EscFromReviewReturnsToMenu(t *testing.T) {
	app := newTestApp(t)
	app.SetDimensions(140, 40)
	send(app, messages.ViewChanged{View: messages.ViewGroups})

	send(app, tea.KeyMsg{Type: tea.KeyEsc})

	assert.Equal(t, messages.ViewMenu, app.CurrentView())
}

func TestApp_Help(t *testing.T) {
	app := newTestApp(t)
	app.SetDimensions(140, 40)

	send(app, messages.ViewChanged{View: messages.ViewHelp})
	assert.Contains(t, app.View(), "resolve group")

	send(app, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, messages.ViewMenu, app.CurrentView())
}

func TestApp_CtrlCQuits(t *testing.T) {
	app := newTestApp(t)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestApp_QuitMessage(t *testing.T) {
	app := newTestApp(t)

	_, cmd := app.Update(messages.Quit{})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestApp_LoadErrorIsRecorded(t *testing.T) {
	app, err := NewApp(&Ports{Review: &MockReviewService{Err: assert.AnError}})
	require.NoError(t, err)
	app.SetDimensions(140, 40)

	send(app, messages.ViewChanged{View: messages.ViewGroups})

	assert.ErrorIs(t, app.Err(), assert.AnError)
	assert.Contains(t, app.View(), "Error:")
}

func TestApp_ErrorOccurred(t *testing.T) {
	app := newTestApp(t)

	app.Update(messages.ErrorOccurred{Err: assert.AnError})

	assert.ErrorIs(t, app.Err(), assert.AnError)
}
