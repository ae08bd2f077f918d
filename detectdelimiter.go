package mamanalysis

import (
	"bytes"
	"io"

	"github.com/csimplestring/go-csv/detector"
)

// DetermineDelimiter returns the single most likely rune that would delimit the
// values in the sample, assuming a CSV-like file. Expression matrices exported
// from Xena are tab separated while the clinical exports are usually comma
// separated; a header that contains only one of the two settles it.
func DetermineDelimiter(sample []byte) rune {
	firstLine := sample
	if i := bytes.IndexByte(sample, '\n'); i >= 0 {
		firstLine = sample[:i]
	}
	hasTab, hasComma := bytes.IndexByte(firstLine, '\t') >= 0, bytes.IndexByte(firstLine, ',') >= 0
	switch {
	case hasTab && !hasComma:
		return '\t'
	case hasComma && !hasTab:
		return ','
	}

	d := detector.New()
	delimiters := d.DetectDelimiter(bytes.NewReader(sample), '"')

	if len(delimiters) > 0 && len(delimiters[0]) > 0 {
		return rune(delimiters[0][0])
	}

	return ','
}

// sniffLimit bounds how much of a stream is inspected for the delimiter.
const sniffLimit = 64 * 1024

// SniffDelimiter reads up to sniffLimit bytes from r to choose a delimiter and
// returns a reader that replays those bytes followed by the rest of r.
func SniffDelimiter(r io.Reader) (rune, io.Reader, error) {
	buf := make([]byte, sniffLimit)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return 0, nil, err
	}
	buf = buf[:n]

	return DetermineDelimiter(buf), io.MultiReader(bytes.NewReader(buf), r), nil
}
