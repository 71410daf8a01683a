// Package render holds what every front end draws with: the colors of tiles,
// actors and the game-over overlay.
package render

import (
	"image/color"

	"github.com/a3mckagu/a3mckagu-sidequest-w4/game/engine"
)

var (
	Background = color.NRGBA{R: 240, G: 240, B: 240, A: 255}

	WallColor  = color.NRGBA{R: 125, G: 253, B: 254, A: 255}
	FloorColor = color.NRGBA{R: 1, G: 31, B: 38, A: 255}
	// GoalColor is painted inset over the floor of goal cells
	GoalColor = color.NRGBA{R: 242, G: 160, B: 7, A: 200}

	PlayerColor = color.NRGBA{R: 20, G: 120, B: 255, A: 255}
	EnemyColor  = color.NRGBA{R: 255, G: 150, B: 0, A: 255}

	BackdropColor    = color.NRGBA{A: 150}
	PopupColor       = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	TitleColor       = color.NRGBA{A: 255}
	ButtonColor      = color.NRGBA{R: 100, G: 150, B: 255, A: 255}
	ButtonHoverColor = color.NRGBA{R: 80, G: 120, B: 220, A: 255}
	ButtonTextColor  = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	HUDColor         = color.NRGBA{A: 255}
)

// TileColor returns the base fill of a cell. Only walls differ; goals get
// GoalColor on top.
func TileColor(kind engine.TileKind) color.NRGBA {
	if kind == engine.Wall {
		return WallColor
	}
	return FloorColor
}

// ActorColor returns the solid color of an actor
func ActorColor(kind engine.ActorKind) color.NRGBA {
	if kind == engine.EnemyActor {
		return EnemyColor
	}
	return PlayerColor
}

// Faded scales the alpha of c by opacity, clamped to [0, 1]
func Faded(c color.NRGBA, opacity float64) color.NRGBA {
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	c.A = uint8(float64(c.A)*opacity + 0.5)
	return c
}

// Blend mixes src over dst by src's alpha and returns an opaque color.
// Terminal cells have no transparency, so trails are blended onto the floor.
func Blend(dst, src color.NRGBA) color.NRGBA {
	a := float64(src.A) / 255
	mix := func(d, s uint8) uint8 {
		return uint8(float64(d)*(1-a) + float64(s)*a + 0.5)
	}
	return color.NRGBA{R: mix(dst.R, src.R), G: mix(dst.G, src.G), B: mix(dst.B, src.B), A: 255}
}
