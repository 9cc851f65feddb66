package service

// Key names shared by the UIs. They follow the browser KeyboardEvent.code values.
const (
	KeySpace      = "Space"
	KeyArrowLeft  = "ArrowLeft"
	KeyArrowRight = "ArrowRight"
	KeyArrowUp    = "ArrowUp"
	KeyArrowDown  = "ArrowDown"
)

// VolumeStep is the default volume change per arrow key press, on the 0..100 scale.
const VolumeStep = 10

// HandleKey translates a keyboard shortcut into a controller operation.
// It reports whether the key was bound.
func (c *PlayerController) HandleKey(key string) bool {
	switch key {
	case KeySpace:
		c.TogglePlayPause()
	case KeyArrowLeft:
		c.Retreat()
	case KeyArrowRight:
		c.Advance()
	case KeyArrowUp:
		c.stepVolume(1)
	case KeyArrowDown:
		c.stepVolume(-1)
	default:
		return false
	}
	return true
}
