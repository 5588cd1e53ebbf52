package filtergraph

import "fmt"

// dvdBounceSpeed is the inset's constant speed along each axis, in pixels
// per second (Open Question (b): a deterministic piecewise-linear bounce,
// documented here rather than left to the encoder's own RNG).
const dvdBounceSpeed = 90.0

// videoDVDPiP composes a 480x270 inset that bounces off the frame edges at
// a constant 90 px/s, expressed as an ffmpeg overlay position expression so
// the trajectory is a pure function of the encoder's own elapsed time (t)
// rather than external state — two compiles at the same t are identical.
func videoDVDPiP(inputs []Input) (string, error) {
	var parts []string
	parts = append(parts, normalize(0, CanvasWidth, CanvasHeight, "main"))
	parts = append(parts, normalize(1, 480, 270, "inset"))

	xExpr := triangleWaveExpr(CanvasWidth-480, dvdBounceSpeed)
	yExpr := triangleWaveExpr(CanvasHeight-270, dvdBounceSpeed)
	parts = append(parts, fmt.Sprintf("[main][inset]overlay=x='%s':y='%s'[v]", xExpr, yExpr))
	return join(parts), nil
}

// triangleWaveExpr returns an ffmpeg expression computing a triangle wave
// over elapsed time t, bouncing between 0 and span at the given speed.
// abs(mod(t*speed, 2*span) - span) walks span -> 0 -> span every period,
// which is the reflection-off-edges trajectory.
func triangleWaveExpr(span int, speed float64) string {
	return fmt.Sprintf("abs(mod(t*%g,%d)-%d)", speed, 2*span, span)
}
