package controller

// holdResume decides the hold and resume flags of the stock ACC frame during
// stop-and-go. Without it the car stops only momentarily and then creeps
// forward again.
//
// While moving, both the hold timer and the hold delay are kept reset. Once
// stopped, nothing is decided until the hold delay has lapsed, which keeps a
// not-quite-stopped car from being braked hard. After that a resume request
// opens the resume window; otherwise the car is held for up to HoldDuration.
type holdResume struct{}

func (holdResume) update(st *State, standstill, resuming bool) (hold, resume bool) {
	if standstill {
		if !st.HoldDelayTimer.Active() {
			if resuming {
				st.ResumeTimer.Reset()
			} else {
				hold = st.HoldTimer.Active()
			}
		}
	} else {
		st.HoldTimer.Reset()
		st.HoldDelayTimer.Reset()
	}

	resume = st.ResumeTimer.Active()
	if resume {
		// releasing the brake wins over holding it
		hold = false
	}
	return hold, resume
}
