package ebitenview

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/plus3/blockfall/render"
)

// CaptionHeight is the strip below the board holding the status line.
const CaptionHeight = 16

// Overlay draws on top of the board, e.g. the imgui debug windows. Update runs
// after the host has advanced.
type Overlay interface {
	Update()
	Draw(screen *ebiten.Image)
	Layout(outsideWidth, outsideHeight int)
	// WantsKeyboard reports whether key presses belong to the overlay.
	WantsKeyboard() bool
}

// Game implements ebiten.Game for a render.Host.
//
// Keys: Q builds the pattern for Code, Esc returns to free-fall, Space pauses
// the free-fall simulation.
type Game struct {
	Host    *render.Host
	Code    string
	Palette Palette
	Overlay Overlay

	board *ebiten.Image
}

func NewGame(host *render.Host, code string) *Game {
	return &Game{Host: host, Code: code, Palette: DefaultPalette}
}

func (g *Game) Update() error {
	if g.Overlay == nil || !g.Overlay.WantsKeyboard() {
		g.handleKeys()
	}
	g.Host.Update()
	if g.Overlay != nil {
		g.Overlay.Update()
	}
	return nil
}

func (g *Game) handleKeys() {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) && g.Code != "" {
		g.Host.RequestPattern(g.Code)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) && g.Host.Mode() == render.ModePattern {
		g.Host.ShowFreeFall()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) && g.Host.Mode() == render.ModeFreeFall {
		g.Host.TogglePause()
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	w, h := g.Host.Size()
	if g.board == nil || g.board.Bounds().Dx() != w || g.board.Bounds().Dy() != h {
		if g.board != nil {
			g.board.Deallocate()
		}
		g.board = ebiten.NewImage(w, h)
	}

	screen.Fill(g.Palette.Background)
	g.Host.Draw(Canvas{Image: g.board, Palette: g.Palette})
	screen.DrawImage(g.board, nil)

	ebitenutil.DebugPrintAt(screen, g.Host.Caption(), 2, h)

	if g.Overlay != nil {
		g.Overlay.Draw(screen)
	}
}

// Layout sizes the screen to the visible board plus the caption strip. With an
// overlay the screen follows the window instead.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if g.Overlay != nil {
		g.Overlay.Layout(outsideWidth, outsideHeight)
		return outsideWidth, outsideHeight
	}
	w, h := g.Host.Size()
	return w, h + CaptionHeight
}
