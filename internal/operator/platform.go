package operator

import (
	"fmt"
	"runtime"
	"time"
)

// Platform returns the input injection backend for this OS. Native
// synthesis is outstanding on every platform, so all gestures currently
// report the missing backend; the tool surface, argument validation, and
// error propagation above it are complete.
func Platform() Operator {
	return unimplemented{}
}

type unimplemented struct{}

func (unimplemented) unavailable(gesture string) error {
	return fmt.Errorf("%s: input injection not implemented on %s", gesture, runtime.GOOS)
}

func (u unimplemented) MouseMove(x, y int32) error {
	return u.unavailable("mouse move")
}

func (u unimplemented) MouseClick(x, y int32, button Button) error {
	return u.unavailable("mouse click")
}

func (u unimplemented) MouseDoubleClick(x, y int32, button Button) error {
	return u.unavailable("mouse double click")
}

func (u unimplemented) MouseScroll(linesX, linesY int32) error {
	return u.unavailable("mouse scroll")
}

func (u unimplemented) MousePosition() (int32, int32, error) {
	return 0, 0, u.unavailable("mouse position")
}

func (u unimplemented) MouseDrag(targetX, targetY int32, button Button) error {
	return u.unavailable("mouse drag")
}

func (u unimplemented) MouseButtonControl(button Button, direction Direction) error {
	return u.unavailable("mouse button control")
}

func (u unimplemented) MouseMovePath(points []Point, stepDelay time.Duration) error {
	return u.unavailable("mouse move path")
}

func (u unimplemented) TypeText(text string) error {
	return u.unavailable("type text")
}

func (u unimplemented) SystemCommand(cmd SystemCommand) error {
	return u.unavailable("system command")
}

func (u unimplemented) KeyControl(key Key, direction Direction) error {
	return u.unavailable("key control")
}
