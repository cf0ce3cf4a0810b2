package termview

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/plus3/blockfall/render"
)

const DefaultFrameInterval = 16 * time.Millisecond

const helpLine = "q pattern  space pause  esc back/quit"

// App runs a render.Host on a tcell screen.
//
// Keys: q builds the pattern for Code, space pauses free-fall, Esc leaves the
// pattern view or quits from free-fall, Ctrl-C always quits.
type App struct {
	Host          *render.Host
	Code          string
	Screen        tcell.Screen
	FrameInterval time.Duration

	canvas *Canvas
	text   tcell.Style
}

func NewApp(screen tcell.Screen, host *render.Host, code string) *App {
	return &App{
		Host:          host,
		Code:          code,
		Screen:        screen,
		FrameInterval: DefaultFrameInterval,
		canvas:        NewCanvas(screen),
		text:          tcell.StyleDefault,
	}
}

// HandleEvent reacts to one terminal event and reports whether to keep going.
func (a *App) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyCtrlC:
			return false
		case ev.Key() == tcell.KeyEscape:
			if a.Host.Mode() == render.ModeFreeFall {
				return false
			}
			a.Host.ShowFreeFall()
		case ev.Key() == tcell.KeyRune && ev.Rune() == 'q':
			if a.Code != "" {
				a.Host.RequestPattern(a.Code)
			}
		case ev.Key() == tcell.KeyRune && ev.Rune() == ' ':
			if a.Host.Mode() == render.ModeFreeFall {
				a.Host.TogglePause()
			}
		}
	case *tcell.EventResize:
		a.Screen.Sync()
	}
	return true
}

// Draw paints the board with the caption and key help below it.
func (a *App) Draw() {
	a.Screen.Clear()

	w, h := a.Host.Size()
	a.canvas.Resize(w, h, a.Host.CellSize())
	a.Host.Draw(a.canvas)

	width, _ := a.Screen.Size()
	a.canvas.Text(0, a.canvas.Rows+1, width, a.Host.Caption(), a.text)
	a.canvas.Text(0, a.canvas.Rows+2, width, helpLine, a.text.Dim(true))

	a.Screen.Show()
}

// Run polls events and advances the host once per frame until ctx ends or a
// quit key is pressed.
func (a *App) Run(ctx context.Context) error {
	ticker := time.NewTicker(a.FrameInterval)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := a.Screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok || !a.HandleEvent(ev) {
				return nil
			}
		case <-ticker.C:
			a.Host.Update()
			a.Draw()
		}
	}
}
