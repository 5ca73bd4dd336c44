// Package counter is the minimal fluxkit demo domain: an integer state
// evolved by increment and decrement actions.
package counter

import "fmt"

// Action is a counter state transition.
type Action int

const (
	Increment Action = iota
	Decrement
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case Increment:
		return "inc"
	case Decrement:
		return "dec"
	default:
		return fmt.Sprintf("unknown(%d)", int(a))
	}
}

// Parse maps a CLI token to an action. Accepts "inc"/"+" and "dec"/"-".
func Parse(token string) (Action, error) {
	switch token {
	case "inc", "+":
		return Increment, nil
	case "dec", "-":
		return Decrement, nil
	default:
		return 0, fmt.Errorf("unknown counter action %q", token)
	}
}

// Reduce computes the next counter value. Unknown actions are rejected with
// the state unchanged.
func Reduce(state int, a Action) (int, error) {
	switch a {
	case Increment:
		return state + 1, nil
	case Decrement:
		return state - 1, nil
	default:
		return state, fmt.Errorf("unknown counter action %d", int(a))
	}
}
