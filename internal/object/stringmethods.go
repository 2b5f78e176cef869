package object

import (
	"strconv"
	"strings"

	"evilcandy/internal/ecerr"
)

// stringMethods builds the cbm table for string, grounded on
// original_source/src/builtin/string.c (split/join/strip/upper/lower/
// replace/find/format) per SPEC_FULL.md §12.
func stringMethods() map[string]*Method {
	return map[string]*Method{
		"split": {
			Name: "split", Min: 0, Max: 1,
			Fn: func(recv Object, args []Object, _ *DictObj) (Object, error) {
				s := recv.(*StringObj).Go()
				sep := " "
				if len(args) == 1 {
					ss, ok := args[0].(*StringObj)
					if !ok {
						return nil, ecerr.New(ecerr.TypeError, "split() separator must be a string")
					}
					sep = ss.Go()
				}
				var parts []string
				if sep == "" {
					parts = strings.Fields(s)
				} else {
					parts = strings.Split(s, sep)
				}
				out := make([]Object, len(parts))
				for i, p := range parts {
					out[i] = NewString(p)
				}
				return NewArray(out), nil
			},
		},
		"join": {
			Name: "join", Min: 1, Max: 1,
			Fn: func(recv Object, args []Object, _ *DictObj) (Object, error) {
				sep := recv.(*StringObj).Go()
				seq, ok := args[0].(*ArrayObj)
				if !ok {
					return nil, ecerr.New(ecerr.TypeError, "join() argument must be an array")
				}
				parts := make([]string, len(seq.elems))
				for i, e := range seq.elems {
					es, ok := e.(*StringObj)
					if !ok {
						return nil, ecerr.New(ecerr.TypeError, "join() array must contain strings")
					}
					parts[i] = es.Go()
				}
				return NewString(strings.Join(parts, sep)), nil
			},
		},
		"strip": {
			Name: "strip", Min: 0, Max: 0,
			Fn: func(recv Object, _ []Object, _ *DictObj) (Object, error) {
				return NewString(strings.TrimSpace(recv.(*StringObj).Go())), nil
			},
		},
		"upper": {
			Name: "upper", Min: 0, Max: 0,
			Fn: func(recv Object, _ []Object, _ *DictObj) (Object, error) {
				return NewString(strings.ToUpper(recv.(*StringObj).Go())), nil
			},
		},
		"lower": {
			Name: "lower", Min: 0, Max: 0,
			Fn: func(recv Object, _ []Object, _ *DictObj) (Object, error) {
				return NewString(strings.ToLower(recv.(*StringObj).Go())), nil
			},
		},
		"replace": {
			Name: "replace", Min: 2, Max: 2,
			Fn: func(recv Object, args []Object, _ *DictObj) (Object, error) {
				from, ok1 := args[0].(*StringObj)
				to, ok2 := args[1].(*StringObj)
				if !ok1 || !ok2 {
					return nil, ecerr.New(ecerr.TypeError, "replace() arguments must be strings")
				}
				return NewString(strings.ReplaceAll(recv.(*StringObj).Go(), from.Go(), to.Go())), nil
			},
		},
		"find": {
			Name: "find", Min: 1, Max: 1,
			Fn: func(recv Object, args []Object, _ *DictObj) (Object, error) {
				needle, ok := args[0].(*StringObj)
				if !ok {
					return nil, ecerr.New(ecerr.TypeError, "find() argument must be a string")
				}
				idx := strings.Index(recv.(*StringObj).Go(), needle.Go())
				return NewInt(int64(idx)), nil
			},
		},
		"format": {
			Name: "format", Min: 0, Max: -1,
			Fn: func(recv Object, args []Object, _ *DictObj) (Object, error) {
				return stringFormat(recv.(*StringObj).Go(), args)
			},
		},
	}
}

// stringFormat implements the `{}`/`{N}` substitution scheme from
// string_format_helper in the original.
func stringFormat(template string, args []Object) (Object, error) {
	var out strings.Builder
	lastArg := 0
	runes := []rune(template)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		if c != '{' || i+1 >= len(runes) {
			out.WriteRune(c)
			continue
		}
		j := i + 1
		var idx int
		if runes[j] == '}' {
			idx = lastArg
			lastArg++
		} else {
			start := j
			for j < len(runes) && runes[j] >= '0' && runes[j] <= '9' {
				j++
			}
			if j == start || j >= len(runes) || runes[j] != '}' {
				out.WriteRune(c)
				continue
			}
			n, _ := strconv.Atoi(string(runes[start:j]))
			idx = n
			lastArg = n + 1
		}
		if idx < 0 || idx >= len(args) {
			return nil, ecerr.New(ecerr.ArgumentError, "format() index out of range")
		}
		out.WriteString(formatArg(args[idx]))
		i = j
	}
	return NewString(out.String()), nil
}

func formatArg(o Object) string {
	if o == nil {
		return "(null)"
	}
	return Str(o)
}
