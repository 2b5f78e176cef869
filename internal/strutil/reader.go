package strutil

// Reader is the string-reader cursor from §4.2: it abstracts over the
// three possible backing widths (1/2/4 bytes per code point) so
// lexers and parsers never special-case string storage width.
type Reader struct {
	data []rune
	pos  int
}

// NewReader wraps a code-point slice (as produced by DecodeAll, or a
// plain ASCII conversion of a Go string) for cursor-style reading.
func NewReader(data []rune) *Reader {
	return &Reader{data: data}
}

// NewReaderString is a convenience constructor for plain Go strings.
func NewReaderString(s string) *Reader {
	return &Reader{data: []rune(s)}
}

// Getc returns the next code point, or -1 at end of input.
func (r *Reader) Getc() rune {
	if r.pos >= len(r.data) {
		return -1
	}
	c := r.data[r.pos]
	r.pos++
	return c
}

// Ungetc pushes the last-read character back, provided it was not the
// end-of-input sentinel.
func (r *Reader) Ungetc(c rune) {
	if c >= 0 {
		r.pos--
	}
}

// Backup rewinds the cursor by amt code points.
func (r *Reader) Backup(amt int) {
	r.pos -= amt
}

// Setpos moves the cursor to an absolute position, clamped to the end
// of input.
func (r *Reader) Setpos(pos int) {
	if pos > len(r.data) {
		pos = len(r.data)
	}
	r.pos = pos
}

// Getpos returns the current cursor position.
func (r *Reader) Getpos() int {
	return r.pos
}

// Len reports the total number of code points available.
func (r *Reader) Len() int {
	return len(r.data)
}
