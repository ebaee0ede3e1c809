package main

import (
	"math"
	"math/rand/v2"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/gputext"
	"github.com/gogpu/gputext/batch"
)

// scene holds the animated state of the demo: the random prefix and the
// rotation angle.
type scene struct {
	text   gputext.TextConfig
	camera gputext.CameraConfig
	rng    *rand.Rand
	prefix []byte
	theta  float32
}

func newScene(cfg gputext.Config, rng *rand.Rand) *scene {
	return &scene{
		text:   cfg.Text,
		camera: cfg.Camera,
		rng:    rng,
		prefix: make([]byte, cfg.Text.PrefixLength),
	}
}

// initial is the string before the first frame: blanks where the prefix
// goes.
func (s *scene) initial() string {
	return strings.Repeat(" ", len(s.prefix)) + "\n" + s.text.Message
}

// next steps the scene to the next frame: the rotation advances and the
// prefix is refilled with random capital letters. It returns the frame's
// string.
func (s *scene) next() string {
	s.advance()
	for i := range s.prefix {
		s.prefix[i] = byte('A' + s.rng.IntN(26))
	}
	return string(s.prefix) + "\n" + s.text.Message
}

// uniforms returns the projection for a width x height target and the
// model matrix that centers a w x h text block and rotates it around Y.
func (s *scene) uniforms(width, height, w, h int) batch.Uniforms {
	aspect := float32(1)
	if width > 0 && height > 0 {
		aspect = float32(width) / float32(height)
	}
	c := s.camera
	model := mgl32.Translate3D(0, 0, -c.Distance).
		Mul4(mgl32.Scale3D(c.Scale, c.Scale, c.Scale)).
		Mul4(mgl32.HomogRotate3DY(s.theta)).
		Mul4(mgl32.Translate3D(-float32(w)/2, float32(h)/2, 0))
	return batch.Uniforms{
		Projection: mgl32.Perspective(c.FovY, aspect, c.Near, c.Far),
		Model:      model,
	}
}

// advance steps the rotation, wrapping at a full turn.
func (s *scene) advance() {
	s.theta = float32(math.Mod(float64(s.theta+s.camera.RotationStep), 2*math.Pi))
}
