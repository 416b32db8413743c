package entity

// Box is a word bounding box in image pixel coordinates, origin top-left.
type Box struct {
	X0, Y0, X1, Y1 float64
}

// Width returns the horizontal extent of the box.
func (b Box) Width() float64 { return b.X1 - b.X0 }

// Height returns the vertical extent of the box.
func (b Box) Height() float64 { return b.Y1 - b.Y0 }

// CenterX returns the horizontal center of the box.
func (b Box) CenterX() float64 { return (b.X0 + b.X1) / 2 }

// CenterY returns the vertical center of the box.
func (b Box) CenterY() float64 { return (b.Y0 + b.Y1) / 2 }

// RecognizedWord is one token from a recognition pass, with its confidence
// (0-100) and bounding box. Read-only once produced; discarded after the
// pass's drafts are built.
type RecognizedWord struct {
	Text       string
	Confidence float64
	Box        Box
}
