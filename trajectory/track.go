package trajectory

import (
	"sort"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"go.viam.com/kinchain/motionplan/ik"
)

// Keyframe is a value pinned to a frame of a track. Spans between two smooth keyframes follow a
// cubic Bezier curve; any other span is tweened.
type Keyframe struct {
	Value  r3.Vector `json:"value" yaml:"value"`
	Smooth bool      `json:"smooth" yaml:"smooth"`

	in, out r3.Vector
}

type keyed struct {
	frame int
	kf    Keyframe
	// progress eases 0 to 1 across the span that starts at this key; built on first use.
	progress *gween.Tween
}

// Track is a keyframed motion path for a single vector value, such as a body origin. Sampling
// reuses per span tweens, so a track must not be sampled from several goroutines at once.
type Track struct {
	keys []keyed
	ease ease.TweenFunc
}

// NewTrack returns an empty track whose non-smooth spans are tweened linearly.
func NewTrack() *Track {
	return &Track{ease: ease.Linear}
}

// SetEase changes the easing of non-smooth spans.
func (tr *Track) SetEase(fn ease.TweenFunc) {
	tr.ease = fn
	tr.resetTweens()
}

func (tr *Track) resetTweens() {
	for i := range tr.keys {
		tr.keys[i].progress = nil
	}
}

// Insert adds or replaces the keyframe at frame. Control points start on the keyframe value until
// UpdateControlPoints is called.
func (tr *Track) Insert(frame int, kf Keyframe) error {
	if frame < 0 {
		return errors.Errorf("keyframe frame must be non-negative, got %d", frame)
	}
	kf.in, kf.out = kf.Value, kf.Value
	tr.resetTweens()
	i := sort.Search(len(tr.keys), func(i int) bool { return tr.keys[i].frame >= frame })
	if i < len(tr.keys) && tr.keys[i].frame == frame {
		tr.keys[i].kf = kf
		return nil
	}
	tr.keys = append(tr.keys, keyed{})
	copy(tr.keys[i+1:], tr.keys[i:])
	tr.keys[i] = keyed{frame: frame, kf: kf}
	return nil
}

// Len returns the number of keyframes.
func (tr *Track) Len() int {
	return len(tr.keys)
}

// FirstFrame returns the frame of the first keyframe.
func (tr *Track) FirstFrame() int {
	if len(tr.keys) == 0 {
		return 0
	}
	return tr.keys[0].frame
}

// LastFrame returns the frame of the last keyframe.
func (tr *Track) LastFrame() int {
	if len(tr.keys) == 0 {
		return 0
	}
	return tr.keys[len(tr.keys)-1].frame
}

// UpdateControlPoints places each keyframe's Bezier handles on the line through its neighbours,
// each handle a third of `scale` times the neighbour distance away from the keyframe. End keyframes
// use themselves as the missing neighbour.
func (tr *Track) UpdateControlPoints(scale float64) {
	for i := range tr.keys {
		prev, next := tr.keys[i].kf.Value, tr.keys[i].kf.Value
		if i > 0 {
			prev = tr.keys[i-1].kf.Value
		}
		if i < len(tr.keys)-1 {
			next = tr.keys[i+1].kf.Value
		}
		tangent := next.Sub(prev).Mul(scale / 3)
		tr.keys[i].kf.in = tr.keys[i].kf.Value.Sub(tangent)
		tr.keys[i].kf.out = tr.keys[i].kf.Value.Add(tangent)
	}
}

// ValueAt returns the track's value at a frame, holding the end values outside the keyed range.
func (tr *Track) ValueAt(frame float64) r3.Vector {
	if len(tr.keys) == 0 {
		return r3.Vector{}
	}
	if frame <= float64(tr.keys[0].frame) {
		return tr.keys[0].kf.Value
	}
	last := tr.keys[len(tr.keys)-1]
	if frame >= float64(last.frame) {
		return last.kf.Value
	}
	i := sort.Search(len(tr.keys), func(i int) bool { return float64(tr.keys[i].frame) > frame }) - 1
	a, b := tr.keys[i], tr.keys[i+1]
	if a.kf.Smooth && b.kf.Smooth {
		t := (frame - float64(a.frame)) / float64(b.frame-a.frame)
		return bezier(a.kf.Value, a.kf.out, b.kf.in, b.kf.Value, t)
	}
	return tr.tween(i, frame)
}

// tween eases across the span starting at key i. gween works in float32, so the eased fraction
// carries about 1e-7 relative error; the values themselves are blended in float64.
func (tr *Track) tween(i int, frame float64) r3.Vector {
	a, b := &tr.keys[i], tr.keys[i+1]
	if a.progress == nil {
		a.progress = gween.New(0, 1, float32(b.frame-a.frame), tr.ease)
	}
	eased, _ := a.progress.Set(float32(frame - float64(a.frame)))
	return a.kf.Value.Add(b.kf.Value.Sub(a.kf.Value).Mul(float64(eased)))
}

func bezier(p0, p1, p2, p3 r3.Vector, t float64) r3.Vector {
	u := 1 - t
	return p0.Mul(u * u * u).
		Add(p1.Mul(3 * u * u * t)).
		Add(p2.Mul(3 * u * t * t)).
		Add(p3.Mul(t * t * t))
}

// FrameValues samples the track at every frame from the first keyframe to the last, inclusive.
func (tr *Track) FrameValues() []r3.Vector {
	if len(tr.keys) == 0 {
		return nil
	}
	values := make([]r3.Vector, 0, tr.LastFrame()-tr.FirstFrame()+1)
	for f := tr.FirstFrame(); f <= tr.LastFrame(); f++ {
		values = append(values, tr.ValueAt(float64(f)))
	}
	return values
}

// KeyframeValues returns the keyframe values in frame order.
func (tr *Track) KeyframeValues() []r3.Vector {
	values := make([]r3.Vector, 0, len(tr.keys))
	for _, k := range tr.keys {
		values = append(values, k.kf.Value)
	}
	return values
}

// Goal plays the track on a loop, one frame per tick. The last frame is skipped when looping so a
// track that ends where it starts does not stall.
func (tr *Track) Goal(tick int) ik.Goal {
	frames := tr.LastFrame() - tr.FirstFrame()
	if frames <= 0 {
		return ik.Goal{Position: tr.ValueAt(float64(tr.FirstFrame()))}
	}
	f := tick % frames
	if f < 0 {
		f += frames
	}
	return ik.Goal{Position: tr.ValueAt(float64(tr.FirstFrame() + f))}
}
