package engine

// Renderer receives draw calls from GameEngine.Draw, in paint order.
// Coordinates are pixels with the origin at the top-left of the surface.
type Renderer interface {
	Tile(x, y, size int, kind TileKind)
	Trail(kind ActorKind, x, y, size int, opacity float64)
	Actor(kind ActorKind, x, y, size int)
	Overlay(layout OverlayLayout, title, button string)
	HUD(text string)
}

// Surface is resized whenever the active level changes
type Surface interface {
	Resize(width, height int)
}

// Rect is an axis-aligned pixel rectangle
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether (x, y) lies strictly inside the rectangle
func (r Rect) Contains(x, y int) bool {
	return x > r.X && x < r.X+r.W && y > r.Y && y < r.Y+r.H
}

// Inset shrinks the rectangle by n pixels on every side
func (r Rect) Inset(n int) Rect {
	return Rect{X: r.X + n, Y: r.Y + n, W: r.W - 2*n, H: r.H - 2*n}
}

const (
	PopupWidth   = 300
	PopupHeight  = 220
	ButtonWidth  = 100
	ButtonHeight = 50
	// ButtonOffset is the distance from the popup top to the button top
	ButtonOffset = 130
	GoalInset    = 4
)

// OverlayLayout positions the game-over popup on a surface
type OverlayLayout struct {
	Backdrop Rect
	Popup    Rect
	Button   Rect
}

// GameOverLayout centers the popup on a width x height surface
func GameOverLayout(width, height int) OverlayLayout {
	popup := Rect{X: (width - PopupWidth) / 2, Y: (height - PopupHeight) / 2, W: PopupWidth, H: PopupHeight}
	return OverlayLayout{
		Backdrop: Rect{W: width, H: height},
		Popup:    popup,
		Button:   Rect{X: (width - ButtonWidth) / 2, Y: popup.Y + ButtonOffset, W: ButtonWidth, H: ButtonHeight},
	}
}
