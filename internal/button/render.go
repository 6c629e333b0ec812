package button

import "fmt"

// Class names consumed by the view layer.
const (
	ClassWrapper = "button-wrapper"
	ClassExamine = "examine"
	ClassPressed = "pressed"
	ClassCustom  = "custom"
)

// View is what the view layer needs to draw the button.
type View struct {
	Classes []string
	// Background is the image reference to draw, empty for built-in faces.
	Background string
	// Caption is a short human-readable description of the face.
	Caption string
}

// HasClass reports whether the view carries class c.
func (v View) HasClass(c string) bool {
	for _, have := range v.Classes {
		if have == c {
			return true
		}
	}
	return false
}

// Render maps the current state onto the view contract.
func Render(s *FaceState) View {
	switch f := s.Face().(type) {
	case TopFace:
		return View{
			Classes: []string{ClassWrapper, ClassExamine},
			Caption: "top",
		}
	case BottomFace:
		return View{
			Classes: []string{ClassWrapper, ClassExamine, ClassPressed},
			Caption: "bottom",
		}
	case CustomFace:
		return View{
			Classes:    []string{ClassWrapper, ClassCustom},
			Background: s.Reference(),
			Caption:    fmt.Sprintf("custom %d/%d", f.Index+1, s.Len()),
		}
	default:
		unknownFace(f)
		return View{}
	}
}

// Renderer receives a fresh View whenever the displayed face may have changed.
type Renderer interface {
	Render(View)
}

// RenderFunc adapts a function to the Renderer interface.
type RenderFunc func(View)

func (f RenderFunc) Render(v View) { f(v) }
