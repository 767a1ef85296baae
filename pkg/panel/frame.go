package panel

import "time"

// FrameInterval approximates one display refresh at 60 Hz.
const FrameInterval = 16 * time.Millisecond

// NextFrame schedules fn one frame interval from now. Surfaces without a real
// paint loop (remote and terminal hosts) use it for RequestFrame.
func NextFrame(fn func()) {
	time.AfterFunc(FrameInterval, fn)
}
