package render

import (
	"io"

	"github.com/fogleman/gg"
)

// InsufficientData is the message shown when a comparison group is too
// small to estimate a curve.
const InsufficientData = "Dados insuficientes (n < 2 em um ou ambos os grupos)."

// Notice draws a titled placeholder carrying a single message.
func Notice(w io.Writer, title, message string) error {
	const width, height = 1000, 700

	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	titleFace, err := fontFace(16)
	if err != nil {
		return err
	}
	bodyFace, err := fontFace(13)
	if err != nil {
		return err
	}

	dc.SetRGB(0, 0, 0)
	dc.SetFontFace(titleFace)
	dc.DrawStringAnchored(title, width/2, 40, 0.5, 0.5)

	dc.SetRGB(0.75, 0, 0)
	dc.SetFontFace(bodyFace)
	dc.DrawStringWrapped(message, width/2, height/2, 0.5, 0.5, width*0.8, 1.5, gg.AlignCenter)

	return encode(dc, w)
}
