package briefing

import "fmt"

// DoneSet tracks which daily-brief items the user ticked off. It is a
// display affordance only: nothing is written to the server and the set
// resets with the session.
type DoneSet struct {
	done map[string]bool
}

func NewDoneSet() *DoneSet {
	return &DoneSet{done: make(map[string]bool)}
}

// Key identifies a daily-brief item for completion accounting.
func Key(it BriefItem) string {
	return fmt.Sprintf("%s/%d", it.Kind, it.Priority)
}

// Toggle flips the done state for a key and returns the new state.
func (d *DoneSet) Toggle(key string) bool {
	d.done[key] = !d.done[key]
	return d.done[key]
}

func (d *DoneSet) Done(key string) bool {
	return d.done[key]
}

// Remaining counts daily-brief items not yet ticked off.
func (d *DoneSet) Remaining(db *DailyBrief) int {
	if db == nil {
		return 0
	}
	n := 0
	for _, it := range db.Items {
		if !d.done[Key(it)] {
			n++
		}
	}
	return n
}
