// Package gamecube implements the GameCube controller session on top of a
// [joybus.Bus].
//
// A session identifies the controller once and then polls it at the
// caller's cadence, usually 60 Hz:
//
//	pad := gamecube.New(joybus.NewBus(link))
//	if _, err := pad.Identify(); err != nil {
//		println("no controller")
//	}
//	for {
//		pad.Poll()
//		st := pad.State()
//		if st.Pressed(gamecube.ButtonA) {
//			pad.SetRumble(true)
//		}
//		time.Sleep(16 * time.Millisecond)
//	}
//
// A poll that times out leaves a zero-padded state; polling again is the
// only recovery.
package gamecube
