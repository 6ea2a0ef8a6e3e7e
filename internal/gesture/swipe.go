// Package gesture maps horizontal drag distance on a meal item card to an action.
package gesture

// DefaultThreshold is the drag distance in pixels a swipe must exceed.
const DefaultThreshold = 100

// Action is the outcome of a drag.
type Action string

const (
	ActionNone       Action = "none"
	ActionSwipeLeft  Action = "delete"
	ActionSwipeRight Action = "edit"
)

// Classify returns the action for a horizontal drag of dx pixels. Only drags
// strictly beyond the threshold count. A non-positive threshold uses DefaultThreshold.
func Classify(dx, threshold float64) Action {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	switch {
	case dx < -threshold:
		return ActionSwipeLeft
	case dx > threshold:
		return ActionSwipeRight
	default:
		return ActionNone
	}
}
