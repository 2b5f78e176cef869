package object

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"evilcandy/internal/ecerr"
)

// FileMode mirrors the f_mode bitmask of src/types/file.c.
type FileMode uint

const (
	FModeRead FileMode = 1 << iota
	FModeWrite
	FModeAppend
)

// FileObj wraps an open OS file handle (§12 supplemented feature:
// file I/O, grounded on src/types/file.c's filevar_t).
type FileObj struct {
	Base
	f      *os.File
	r      *bufio.Reader
	w      *bufio.Writer
	name   string
	mode   FileMode
	binary bool
	eof    bool
}

var FileType *TypeDesc

func OpenFile(name, mode string) (*FileObj, error) {
	var m FileMode
	var flag int
	binary := false
	for _, c := range mode {
		switch c {
		case 'r':
			m |= FModeRead
			flag |= os.O_RDONLY
		case 'w':
			m |= FModeWrite
			flag |= os.O_WRONLY | os.O_CREATE | os.O_TRUNC
		case 'a':
			m |= FModeAppend | FModeWrite
			flag |= os.O_WRONLY | os.O_CREATE | os.O_APPEND
		case 'b':
			binary = true
		default:
			return nil, ecerr.New(ecerr.ValueError, "invalid file mode %q", mode)
		}
	}
	f, err := os.OpenFile(name, flag, 0644)
	if err != nil {
		return nil, ecerr.New(ecerr.RuntimeError, "%v", err)
	}
	fo := &FileObj{f: f, name: name, mode: m, binary: binary}
	if m&FModeRead != 0 {
		fo.r = bufio.NewReader(f)
	}
	if m&FModeWrite != 0 {
		fo.w = bufio.NewWriter(f)
	}
	return fo, nil
}

func (f *FileObj) Type() *TypeDesc { return FileType }

func (f *FileObj) checkOpen() error {
	if f.f == nil {
		return ecerr.New(ecerr.RuntimeError, "File closed")
	}
	return nil
}

func (f *FileObj) Close() error {
	if f.f == nil {
		return nil
	}
	if f.w != nil {
		f.w.Flush()
	}
	err := f.f.Close()
	f.f = nil
	f.r = nil
	f.w = nil
	f.eof = false
	return err
}

func fileMethods() map[string]*Method {
	return map[string]*Method{
		"close": {
			Name: "close", Min: 0, Max: 0,
			Fn: func(recv Object, _ []Object, _ *DictObj) (Object, error) {
				f := recv.(*FileObj)
				if err := f.checkOpen(); err != nil {
					return nil, err
				}
				f.Close()
				return Null, nil
			},
		},
		"eof": {
			Name: "eof", Min: 0, Max: 0,
			Fn: func(recv Object, _ []Object, _ *DictObj) (Object, error) {
				f := recv.(*FileObj)
				if err := f.checkOpen(); err != nil {
					return nil, err
				}
				if f.eof {
					return True, nil
				}
				return False, nil
			},
		},
		"read": {
			Name: "read", Min: 0, Max: 1,
			Fn: func(recv Object, args []Object, _ *DictObj) (Object, error) {
				f := recv.(*FileObj)
				if err := f.checkOpen(); err != nil {
					return nil, err
				}
				if f.mode&FModeRead == 0 {
					return nil, ecerr.New(ecerr.RuntimeError, "You may not read in this mode")
				}
				if f.eof {
					return Null, nil
				}
				if len(args) == 1 {
					iv, ok := args[0].(*IntObj)
					if !ok || iv.V < 0 {
						return nil, ecerr.New(ecerr.RuntimeError, "Invalid read length")
					}
					buf := make([]byte, iv.V)
					n, err := io.ReadFull(f.r, buf)
					if n > 0 {
						return readResult(f, buf[:n], err), nil
					}
					if err != nil {
						f.eof = true
					}
					return Null, nil
				}
				data, err := io.ReadAll(f.r)
				f.eof = true
				if err != nil && len(data) == 0 {
					return Null, nil
				}
				return readResult(f, data, nil), nil
			},
		},
		"readline": {
			Name: "readline", Min: 0, Max: 0,
			Fn: func(recv Object, _ []Object, _ *DictObj) (Object, error) {
				f := recv.(*FileObj)
				if err := f.checkOpen(); err != nil {
					return nil, err
				}
				if f.eof {
					return Null, nil
				}
				line, err := f.r.ReadString('\n')
				if err == io.EOF {
					f.eof = true
					if line == "" {
						return Null, nil
					}
				} else if err != nil {
					return nil, ecerr.New(ecerr.RuntimeError, "%v", err)
				}
				return NewString(line), nil
			},
		},
		"write": {
			Name: "write", Min: 1, Max: 1,
			Fn: func(recv Object, args []Object, _ *DictObj) (Object, error) {
				f := recv.(*FileObj)
				if err := f.checkOpen(); err != nil {
					return nil, err
				}
				if f.mode&FModeWrite == 0 {
					return nil, ecerr.New(ecerr.RuntimeError, "You may not write in this mode")
				}
				var n int
				var err error
				switch v := args[0].(type) {
				case *StringObj:
					n, err = f.w.WriteString(v.Go())
				case *BytesObj:
					n, err = f.w.Write(v.Go())
				default:
					return nil, ecerr.New(ecerr.TypeError, "write() argument must be string or bytes")
				}
				if err != nil {
					return nil, ecerr.New(ecerr.RuntimeError, "%v", err)
				}
				return NewInt(int64(n)), nil
			},
		},
	}
}

func readResult(f *FileObj, data []byte, err error) Object {
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		f.eof = true
	}
	if f.binary {
		return NewBytes(data)
	}
	return NewString(string(data))
}

func fileReset(o Object) {
	f := o.(*FileObj)
	f.Close()
}

func init() {
	FileType = &TypeDesc{
		Name: "file",
		Str: func(o Object) string {
			f := o.(*FileObj)
			state := "closed"
			if f.f != nil {
				state = "open"
			}
			return fmt.Sprintf("<%s file at %s>", state, f.name)
		},
		Cmpz:  func(Object) bool { return false },
		Reset: fileReset,
		Cbm:   fileMethods(),
	}
}
