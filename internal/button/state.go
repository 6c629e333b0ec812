package button

import "fmt"

// FaceState is the presentation state machine for a single button: the face on
// display plus the ordered list of custom face references.
//
// FaceState is not safe for concurrent use. The Coordinator owns it and only
// touches it from its event loop.
type FaceState struct {
	face  Face
	faces []string
}

// NewFaceState returns a state showing the top face with no custom faces.
func NewFaceState() *FaceState {
	return &FaceState{face: TopFace{}}
}

// Face returns the face currently on display.
func (s *FaceState) Face() Face {
	return s.face
}

// Faces returns a copy of the custom face references in insertion order.
func (s *FaceState) Faces() []string {
	out := make([]string, len(s.faces))
	copy(out, s.faces)
	return out
}

// Len returns the number of custom faces.
func (s *FaceState) Len() int {
	return len(s.faces)
}

// Reference returns the reference shown by the current face, or "" for a built-in face.
func (s *FaceState) Reference() string {
	switch f := s.face.(type) {
	case TopFace, BottomFace:
		return ""
	case CustomFace:
		s.check(f)
		return s.faces[f.Index]
	default:
		return unknownFace(f)
	}
}

// Flip advances along the cycle Top -> Bottom -> Custom(0) -> ... -> Custom(last) -> Top.
// With no custom faces the cycle is Top -> Bottom -> Top.
func (s *FaceState) Flip() {
	switch f := s.face.(type) {
	case TopFace:
		s.face = BottomFace{}
	case BottomFace:
		if len(s.faces) == 0 {
			s.face = TopFace{}
			return
		}
		s.set(CustomFace{Index: 0})
	case CustomFace:
		s.check(f)
		if f.Index+1 < len(s.faces) {
			s.set(CustomFace{Index: f.Index + 1})
			return
		}
		s.face = TopFace{}
	default:
		unknownFace(f)
	}
}

// AddOrSelect shows ref. An already known reference is selected in place;
// a new one is appended and selected.
func (s *FaceState) AddOrSelect(ref string) {
	if i := s.indexOf(ref); i >= 0 {
		s.set(CustomFace{Index: i})
		return
	}
	s.faces = append(s.faces, ref)
	s.set(CustomFace{Index: len(s.faces) - 1})
}

// BulkLoad appends every reference not already present. If anything was
// appended it shows the first appended entry and returns true. Otherwise the
// state is untouched and BulkLoad returns false.
func (s *FaceState) BulkLoad(refs []string) bool {
	first := -1
	for _, ref := range refs {
		if s.indexOf(ref) >= 0 {
			continue
		}
		s.faces = append(s.faces, ref)
		if first < 0 {
			first = len(s.faces) - 1
		}
	}
	if first < 0 {
		return false
	}
	s.set(CustomFace{Index: first})
	return true
}

func (s *FaceState) indexOf(ref string) int {
	for i, existing := range s.faces {
		if existing == ref {
			return i
		}
	}
	return -1
}

func (s *FaceState) set(f CustomFace) {
	s.check(f)
	s.face = f
}

// check enforces 0 <= index < len(faces) for custom faces.
func (s *FaceState) check(f CustomFace) {
	if f.Index < 0 || f.Index >= len(s.faces) {
		panic(fmt.Sprintf("button: custom face index %d out of range [0, %d)", f.Index, len(s.faces)))
	}
}
