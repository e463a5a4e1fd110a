package exercise

import ex "github.com/wselearn/wse/internal/exercise"

// tickMsg re-renders the screen. Ticks from an earlier focus period carry
// a stale gen and are dropped.
type tickMsg struct {
	gen int
}

// answeredMsg is sent when a know/don't-know post has finished.
type answeredMsg struct {
	Action ex.Action
	Err    error
}
