package main

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/nesforge/gones/internal/emulator"
	"github.com/nesforge/gones/internal/input"
)

const (
	nesWidth  = 256
	nesHeight = 240
)

// game implements ebiten.Game, driving the emulator one frame per Update
// call and blitting its framebuffer in Draw.
type game struct {
	emu          *emulator.Emulator
	cfg          *emulator.Config
	frameImage   *ebiten.Image
	audioPlayer  *audio.Player
	audioStream  *sampleStream
	windowWidth  int
	windowHeight int
}

func newGame(emu *emulator.Emulator, cfg *emulator.Config) (*game, error) {
	g := &game{
		emu:        emu,
		cfg:        cfg,
		frameImage: ebiten.NewImage(nesWidth, nesHeight),
	}

	if cfg.Audio.Enabled {
		ctx := audio.NewContext(cfg.Audio.SampleRate)
		g.audioStream = newSampleStream(cfg.Audio.SampleRate)
		player, err := ctx.NewPlayer(g.audioStream)
		if err != nil {
			return nil, err
		}
		player.SetVolume(float64(cfg.Audio.Volume))
		player.Play()
		g.audioPlayer = player
	}

	return g, nil
}

// Update advances the emulator by exactly one frame and applies the current
// keyboard state to controller port 1; port 2 is not driven by the keyboard.
func (g *game) Update() error {
	if g.quitRequested() {
		return ebiten.Termination
	}
	g.pollInput()
	g.emu.RunUntilFrame()
	if g.audioStream != nil {
		g.audioStream.feed(g.emu.DrainAudio())
	}
	return nil
}

// Draw blits the emulator's RGBA framebuffer, scaled to the window.
func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(color.Black)
	g.frameImage.WritePixels(g.emu.Framebuffer())

	op := &ebiten.DrawImageOptions{}
	scaleX := float64(g.windowWidth) / float64(nesWidth)
	scaleY := float64(g.windowHeight) / float64(nesHeight)
	scale := scaleX
	if scaleY < scale {
		scale = scaleY
	}
	offsetX := (float64(g.windowWidth) - float64(nesWidth)*scale) / 2
	offsetY := (float64(g.windowHeight) - float64(nesHeight)*scale) / 2
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(offsetX, offsetY)
	screen.DrawImage(g.frameImage, op)
}

// Layout reports the logical screen size; scaling to the window happens in
// Draw so the NES aspect ratio is preserved under arbitrary resizes.
func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.windowWidth = outsideWidth
	g.windowHeight = outsideHeight
	return outsideWidth, outsideHeight
}

var player1Keys = map[ebiten.Key]input.Button{
	ebiten.KeyArrowUp:    input.ButtonUp,
	ebiten.KeyArrowDown:  input.ButtonDown,
	ebiten.KeyArrowLeft:  input.ButtonLeft,
	ebiten.KeyArrowRight: input.ButtonRight,
	ebiten.KeyW:          input.ButtonUp,
	ebiten.KeyS:          input.ButtonDown,
	ebiten.KeyA:          input.ButtonLeft,
	ebiten.KeyD:          input.ButtonRight,
	ebiten.KeyJ:          input.ButtonA,
	ebiten.KeyK:          input.ButtonB,
	ebiten.KeyEnter:      input.ButtonStart,
	ebiten.KeySpace:      input.ButtonSelect,
}

func (g *game) pollInput() {
	var bits uint8
	for key, button := range player1Keys {
		if ebiten.IsKeyPressed(key) {
			bits |= uint8(button)
		}
	}
	g.emu.UpdateController(emulator.Player1, bits)
}

func (g *game) quitRequested() bool {
	return inpututil.IsKeyJustPressed(ebiten.KeyEscape)
}
