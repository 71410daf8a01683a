// Package desktop runs a maze session in an ebiten window.
package desktop

import (
	"encoding/json"
	"image/color"
	"log"
	"time"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"github.com/a3mckagu/a3mckagu-sidequest-w4/game/engine"
	"github.com/a3mckagu/a3mckagu-sidequest-w4/render"
)

const (
	titleScale = 3
	hudX       = 10
	hudY       = 16
	// titleOffset is the distance from the popup top to the title baseline center
	titleOffset = 60
)

// Input is one frame of decoded keyboard and mouse state
type Input struct {
	Move    engine.Direction
	HasMove bool
	Click   bool
	X, Y    int
	Restart bool
	Copy    bool
	Quit    bool
}

// Game adapts a GameEngine to ebiten.Game. It implements engine.Renderer and
// engine.Surface so the engine draws straight into the window.
type Game struct {
	engine *engine.GameEngine
	now    func() time.Time

	width, height int
	cursorX       int
	cursorY       int

	screen *ebiten.Image
	face   text.Face

	copyText     func(string) error
	resizeWindow func(w, h int)
}

// Option customizes a Game
type Option func(*Game)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(g *Game) {
		g.now = now
	}
}

// WithClipboard replaces the system clipboard used by the copy key
func WithClipboard(write func(string) error) Option {
	return func(g *Game) {
		g.copyText = write
	}
}

// WithWindowResizer replaces ebiten.SetWindowSize
func WithWindowResizer(resize func(w, h int)) Option {
	return func(g *Game) {
		g.resizeWindow = resize
	}
}

// New attaches a window front end to e. The window is sized for the active
// level immediately and again on every level change.
func New(e *engine.GameEngine, opts ...Option) *Game {
	g := &Game{
		engine:       e,
		now:          time.Now,
		face:         text.NewGoXFace(basicfont.Face7x13),
		copyText:     clipboard.WriteAll,
		resizeWindow: ebiten.SetWindowSize,
	}
	for _, opt := range opts {
		opt(g)
	}
	e.SetSurface(g)
	return g
}

// Run opens the window and blocks until it is closed or Esc is pressed
func (g *Game) Run() error {
	ebiten.SetWindowTitle(g.engine.GetConfig().Name)
	return ebiten.RunGame(g)
}

// Resize implements engine.Surface
func (g *Game) Resize(width, height int) {
	g.width, g.height = width, height
	g.resizeWindow(width, height)
}

// Size returns the current surface size in pixels
func (g *Game) Size() (int, int) {
	return g.width, g.height
}

// Update implements ebiten.Game
func (g *Game) Update() error {
	return g.Step(readInput(), g.now())
}

// Step applies one frame of input and advances the engine
func (g *Game) Step(in Input, now time.Time) error {
	if in.Quit {
		return ebiten.Termination
	}

	g.cursorX, g.cursorY = in.X, in.Y

	if in.HasMove {
		g.engine.Move(in.Move, now)
	}
	if in.Click {
		g.engine.Click(in.X, in.Y, now)
	}
	if in.Restart && g.engine.IsGameOver() {
		g.engine.Restart(now)
	}
	if in.Copy {
		g.copyState(now)
	}

	g.engine.Tick(now)
	return nil
}

func (g *Game) copyState(now time.Time) {
	data, err := json.MarshalIndent(g.engine.GetState(now), "", "  ")
	if err != nil {
		log.Printf("Failed to encode game state: %v", err)
		return
	}
	if err := g.copyText(string(data)); err != nil {
		log.Printf("Failed to copy game state: %v", err)
		return
	}
	log.Printf("Copied game state to clipboard (%d bytes)", len(data))
}

// readInput decodes the keyboard and mouse. Held direction keys repeat;
// the engine's cooldown throttles them.
func readInput() Input {
	var in Input
	in.X, in.Y = ebiten.CursorPosition()

	keys := []struct {
		dir  engine.Direction
		keys []ebiten.Key
	}{
		{engine.Up, []ebiten.Key{ebiten.KeyArrowUp, ebiten.KeyW}},
		{engine.Down, []ebiten.Key{ebiten.KeyArrowDown, ebiten.KeyS}},
		{engine.Left, []ebiten.Key{ebiten.KeyArrowLeft, ebiten.KeyA}},
		{engine.Right, []ebiten.Key{ebiten.KeyArrowRight, ebiten.KeyD}},
	}
	for _, k := range keys {
		for _, key := range k.keys {
			if ebiten.IsKeyPressed(key) {
				in.Move, in.HasMove = k.dir, true
				break
			}
		}
		if in.HasMove {
			break
		}
	}

	in.Click = inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft)
	in.Restart = inpututil.IsKeyJustPressed(ebiten.KeyR) || inpututil.IsKeyJustPressed(ebiten.KeyEnter)
	in.Copy = inpututil.IsKeyJustPressed(ebiten.KeyC)
	in.Quit = inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ)
	return in
}

// Draw implements ebiten.Game
func (g *Game) Draw(screen *ebiten.Image) {
	g.screen = screen
	defer func() { g.screen = nil }()

	screen.Fill(render.Background)
	g.engine.Draw(g, g.now())
}

// Layout implements ebiten.Game; the logical screen always matches the level
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width, g.height
}

// Renderer

func (g *Game) Tile(x, y, size int, kind engine.TileKind) {
	g.fill(engine.Rect{X: x, Y: y, W: size, H: size}, render.TileColor(kind))
	if kind == engine.Goal {
		g.fill(engine.Rect{X: x, Y: y, W: size, H: size}.Inset(engine.GoalInset), render.GoalColor)
	}
}

func (g *Game) Trail(kind engine.ActorKind, x, y, size int, opacity float64) {
	g.fill(engine.Rect{X: x, Y: y, W: size, H: size}, render.Faded(render.ActorColor(kind), opacity))
}

func (g *Game) Actor(kind engine.ActorKind, x, y, size int) {
	g.fill(engine.Rect{X: x, Y: y, W: size, H: size}, render.ActorColor(kind))
}

func (g *Game) Overlay(layout engine.OverlayLayout, title, button string) {
	g.fill(layout.Backdrop, render.BackdropColor)
	g.fill(layout.Popup, render.PopupColor)

	centerX := float64(layout.Backdrop.W) / 2
	g.text(title, centerX, float64(layout.Popup.Y+titleOffset), titleScale, render.TitleColor, text.AlignCenter)

	buttonColor := render.ButtonColor
	if layout.Button.Contains(g.cursorX, g.cursorY) {
		buttonColor = render.ButtonHoverColor
	}
	g.fill(layout.Button, buttonColor)
	g.text(button, centerX, float64(layout.Button.Y+layout.Button.H/2), 1, render.ButtonTextColor, text.AlignCenter)
}

func (g *Game) HUD(s string) {
	g.text(s, hudX, hudY, 1, render.HUDColor, text.AlignStart)
}

func (g *Game) fill(r engine.Rect, clr color.Color) {
	if g.screen == nil {
		return
	}
	vector.FillRect(g.screen, float32(r.X), float32(r.Y), float32(r.W), float32(r.H), clr, false)
}

func (g *Game) text(s string, x, y, scale float64, clr color.Color, align text.Align) {
	if g.screen == nil {
		return
	}
	op := &text.DrawOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(clr)
	op.PrimaryAlign = align
	op.SecondaryAlign = text.AlignCenter
	text.Draw(g.screen, s, g.face, op)
}
