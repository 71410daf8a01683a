// Package terminal runs a maze session in a terminal using tcell.
//
// Every grid cell is two terminal columns wide so cells look square. The HUD
// takes the first row and the grid starts below it.
package terminal

import (
	"context"
	"image/color"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/a3mckagu/a3mckagu-sidequest-w4/game/engine"
	"github.com/a3mckagu/a3mckagu-sidequest-w4/render"
)

const (
	cellWidth = 2
	gridTop   = 1

	DefaultFPS = 30
)

type action int

const (
	actionNone action = iota
	actionMove
	actionRestart
	actionQuit
)

// box is a rectangle in terminal cells
type box struct {
	x, y, w, h int
}

func (b box) contains(x, y int) bool {
	return x >= b.x && x < b.x+b.w && y >= b.y && y < b.y+b.h
}

// Game draws a GameEngine into a tcell screen and feeds it key and mouse input
type Game struct {
	engine *engine.GameEngine
	screen tcell.Screen
	now    func() time.Time
	fps    int

	width, height int
	button        box
	buttonShown   bool
}

// Option customizes a Game
type Option func(*Game)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(g *Game) {
		g.now = now
	}
}

// WithFPS sets the frame rate of Run
func WithFPS(fps int) Option {
	return func(g *Game) {
		if fps > 0 {
			g.fps = fps
		}
	}
}

// New attaches screen to e. The screen must already be initialized.
func New(e *engine.GameEngine, screen tcell.Screen, opts ...Option) *Game {
	g := &Game{
		engine: e,
		screen: screen,
		now:    time.Now,
		fps:    DefaultFPS,
	}
	for _, opt := range opts {
		opt(g)
	}
	screen.EnableMouse()
	screen.HideCursor()
	e.SetSurface(g)
	return g
}

// Resize implements engine.Surface. A terminal cannot be resized from the
// program, so the previous level's cells are cleared instead.
func (g *Game) Resize(width, height int) {
	g.width, g.height = width, height
	g.screen.Clear()
}

// Run polls input and draws frames until ctx is done or the player quits
func (g *Game) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := g.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(time.Second / time.Duration(g.fps))
	defer ticker.Stop()

	g.Render(g.now())
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok || !g.HandleEvent(ev, g.now()) {
				return nil
			}

		case <-ticker.C:
			now := g.now()
			g.engine.Tick(now)
			g.Render(now)
		}
	}
}

// HandleEvent applies one input event. It returns false when the player quits.
func (g *Game) HandleEvent(ev tcell.Event, now time.Time) bool {
	if ev == nil {
		return false
	}
	switch ev := ev.(type) {
	case *tcell.EventKey:
		act, dir := decodeKey(ev.Key(), ev.Rune())
		return g.apply(act, dir, now)

	case *tcell.EventMouse:
		if ev.Buttons()&tcell.Button1 != 0 {
			x, y := ev.Position()
			g.Click(x, y, now)
		}

	case *tcell.EventResize:
		g.screen.Sync()
	}
	return true
}

func (g *Game) apply(act action, dir engine.Direction, now time.Time) bool {
	switch act {
	case actionQuit:
		return false
	case actionMove:
		g.engine.Move(dir, now)
	case actionRestart:
		if g.engine.IsGameOver() {
			g.engine.Restart(now)
		}
	}
	return true
}

// decodeKey maps a key press to an action: arrows and WASD move, r restarts,
// q, Esc and Ctrl-C quit.
func decodeKey(key tcell.Key, r rune) (action, engine.Direction) {
	switch key {
	case tcell.KeyUp:
		return actionMove, engine.Up
	case tcell.KeyDown:
		return actionMove, engine.Down
	case tcell.KeyLeft:
		return actionMove, engine.Left
	case tcell.KeyRight:
		return actionMove, engine.Right
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return actionQuit, 0
	case tcell.KeyEnter:
		return actionRestart, 0
	case tcell.KeyRune:
	default:
		return actionNone, 0
	}

	switch r {
	case 'q', 'Q':
		return actionQuit, 0
	case 'r', 'R':
		return actionRestart, 0
	}
	if dir, err := engine.ParseDirection(string(r)); err == nil {
		return actionMove, dir
	}
	return actionNone, 0
}

// Click restarts the game when (x, y) hits the restart button of the overlay
func (g *Game) Click(x, y int, now time.Time) bool {
	if !g.engine.IsGameOver() || !g.buttonShown || !g.button.contains(x, y) {
		return false
	}
	return g.engine.Restart(now) == nil
}

// Render draws one frame
func (g *Game) Render(now time.Time) {
	g.screen.Clear()
	g.buttonShown = false
	g.engine.Draw(g, now)
	g.screen.Show()
}

// Renderer

func (g *Game) cell(x, y, size int) (int, int) {
	return (x / size) * cellWidth, y/size + gridTop
}

func (g *Game) paint(x, y int, glyph rune, fg, bg color.NRGBA) {
	style := tcell.StyleDefault.Foreground(rgb(fg)).Background(rgb(bg))
	g.screen.SetContent(x, y, glyph, nil, style)
	for i := 1; i < cellWidth; i++ {
		g.screen.SetContent(x+i, y, ' ', nil, style)
	}
}

func rgb(c color.NRGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

func (g *Game) Tile(x, y, size int, kind engine.TileKind) {
	cx, cy := g.cell(x, y, size)
	bg := render.TileColor(kind)
	glyph := ' '
	if kind == engine.Goal {
		bg = render.Blend(bg, render.GoalColor)
		glyph = '*'
	}
	g.paint(cx, cy, glyph, render.TitleColor, bg)
}

func (g *Game) Trail(kind engine.ActorKind, x, y, size int, opacity float64) {
	cx, cy := g.cell(x, y, size)
	g.paint(cx, cy, ' ', render.TitleColor, render.Blend(render.FloorColor, render.Faded(render.ActorColor(kind), opacity)))
}

func (g *Game) Actor(kind engine.ActorKind, x, y, size int) {
	cx, cy := g.cell(x, y, size)
	glyph := '@'
	if kind == engine.EnemyActor {
		glyph = '&'
	}
	g.paint(cx, cy, glyph, render.TitleColor, render.ActorColor(kind))
}

// Overlay centers a popup over the grid. The pixel layout does not fit a
// terminal, so only the texts are taken from the engine.
func (g *Game) Overlay(layout engine.OverlayLayout, title, button string) {
	size := g.engine.GetConfig().Tile()
	gridW := layout.Backdrop.W / size * cellWidth
	gridH := layout.Backdrop.H / size

	label := "[ " + button + " ]"
	w := len([]rune(title))
	if n := len([]rune(label)); n > w {
		w = n
	}
	popup := box{w: w + 6, h: 5}
	popup.x = max((gridW-popup.w)/2, 0)
	popup.y = gridTop + max((gridH-popup.h)/2, 0)

	popupStyle := tcell.StyleDefault.Foreground(rgb(render.TitleColor)).Background(rgb(render.PopupColor))
	for dy := 0; dy < popup.h; dy++ {
		for dx := 0; dx < popup.w; dx++ {
			g.screen.SetContent(popup.x+dx, popup.y+dy, ' ', nil, popupStyle)
		}
	}
	g.text(popup.x+(popup.w-len([]rune(title)))/2, popup.y+1, title, popupStyle.Bold(true))

	g.button = box{x: popup.x + (popup.w-len([]rune(label)))/2, y: popup.y + 3, w: len([]rune(label)), h: 1}
	g.buttonShown = true
	buttonStyle := tcell.StyleDefault.Foreground(rgb(render.ButtonTextColor)).Background(rgb(render.ButtonColor))
	g.text(g.button.x, g.button.y, label, buttonStyle)
}

func (g *Game) HUD(s string) {
	g.text(0, 0, s, tcell.StyleDefault)
}

func (g *Game) text(x, y int, s string, style tcell.Style) {
	for i, r := range []rune(s) {
		g.screen.SetContent(x+i, y, r, nil, style)
	}
}
