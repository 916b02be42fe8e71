// Package host shows the output engine's frame in a desktop window and
// feeds the window's keyboard and gamepads to the sampler.
package host

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// FrameSource provides the composed output frame.
type FrameSource interface {
	CopyFrame(dst *image.RGBA)
}

// Status is the text shown over the picture.
type Status interface {
	FPSEnabled() bool
	FPS() int
	Fatal() error
}

// Game implements ebiten.Game for the output engine.
type Game struct {
	ctx    context.Context
	frames FrameSource
	pads   *Gamepads
	led    *LED
	status Status

	width, height int
	frame         *image.RGBA
	screen        *ebiten.Image
}

func NewGame(ctx context.Context, frames FrameSource, width, height int, pads *Gamepads, led *LED, status Status) *Game {
	return &Game{
		ctx:    ctx,
		frames: frames,
		pads:   pads,
		led:    led,
		status: status,
		width:  width,
		height: height,
		frame:  image.NewRGBA(image.Rect(0, 0, width, height)),
	}
}

// Update implements ebiten.Game.
func (g *Game) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}
	g.pads.Poll()
	return nil
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	if g.screen == nil {
		g.screen = ebiten.NewImage(g.width, g.height)
	}
	g.frames.CopyFrame(g.frame)
	g.screen.WritePixels(g.frame.Pix)
	screen.DrawImage(g.screen, nil)

	if g.led.On() {
		ebitenutil.DrawRect(screen, float64(g.width-12), 4, 8, 8, color.RGBA{0, 255, 0, 255})
	}
	if err := g.status.Fatal(); err != nil {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("FATAL: %v", err), 8, g.height/2)
	}
	if g.status.FPSEnabled() {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("FPS: %d", g.status.FPS()), 8, 4)
	}
}

// Layout implements ebiten.Game.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width, g.height
}

// Run opens the window and blocks until it is closed or ctx is done.
func Run(g *Game, title string) error {
	ebiten.SetWindowSize(g.width*2, g.height*2)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizable(true)
	ebiten.SetTPS(60)
	return ebiten.RunGame(g)
}
