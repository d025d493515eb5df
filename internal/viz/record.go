package viz

import (
	"image"
	"image/color"
	"image/gif"
	"io"
	"os"
)

// Recorder rasterizes canvas frames into an animated GIF.
type Recorder struct {
	frames []*image.Paletted
	// Delay between frames in 100ths of a second.
	Delay int
}

func NewRecorder() *Recorder { return &Recorder{Delay: 2} }

func (r *Recorder) Len() int { return len(r.frames) }

// Capture draws every set dot of c as a 4x4 white block.
func (r *Recorder) Capture(c *Canvas) {
	const dot = 4
	w, h := c.Dots()
	img := image.NewPaletted(image.Rect(0, 0, w*dot, h*dot), color.Palette{color.Black, color.White})
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !c.IsSet(x, y) {
				continue
			}
			for py := 0; py < dot; py++ {
				for px := 0; px < dot; px++ {
					img.SetColorIndex(x*dot+px, y*dot+py, 1)
				}
			}
		}
	}
	r.frames = append(r.frames, img)
}

func (r *Recorder) Encode(w io.Writer) error {
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range r.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, r.Delay)
	}
	return gif.EncodeAll(w, &anim)
}

// Save writes the recording to path. An empty recording writes nothing.
func (r *Recorder) Save(path string) error {
	if len(r.frames) == 0 {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return r.Encode(f)
}

func (r *Recorder) Reset() { r.frames = r.frames[:0] }
