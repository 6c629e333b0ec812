package button

import "fmt"

// Face is the side of the button currently on display.
// It is a closed set: TopFace, BottomFace and CustomFace are the only implementations.
type Face interface {
	isFace()
	String() string
}

// TopFace is the built-in resting face.
type TopFace struct{}

// BottomFace is the built-in pressed face.
type BottomFace struct{}

// CustomFace shows a user-supplied image. Index points into the custom face list.
type CustomFace struct {
	Index int
}

func (TopFace) isFace()    {}
func (BottomFace) isFace() {}
func (CustomFace) isFace() {}

func (TopFace) String() string    { return "top" }
func (BottomFace) String() string { return "bottom" }
func (f CustomFace) String() string {
	return fmt.Sprintf("custom(%d)", f.Index)
}

// unknownFace panics for a Face implementation outside the closed set.
func unknownFace(f Face) string {
	panic(fmt.Sprintf("button: unknown face %T", f))
}
