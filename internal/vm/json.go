package vm

import (
	"encoding/json"
	"os"

	"evilcandy/internal/ecerr"
	"evilcandy/internal/object"
)

// jsonMaxDepth mirrors original_source/src/json.c's `j->recursion > 128`
// check verbatim (SPEC_FULL.md §12).
const jsonMaxDepth = 128

// builtinDictFromJSON implements dict_from_json(path), grounded on
// original_source/src/json.c's dict_from_json: read a JSON file and
// convert it into the matching dict/array/string/int/float/bool/null
// object tree, rejecting anything nested past jsonMaxDepth. Uses Go's
// standard encoding/json to decode the text (no pack library parses
// JSON any differently) and a recursive converter to turn the decoded
// generic interface{} tree into EvilCandy object values.
func builtinDictFromJSON(args []object.Object, kwargs *object.DictObj) (object.Object, error) {
	if len(args) != 1 {
		return nil, ecerr.New(ecerr.ArgumentError, "dict_from_json() takes exactly one argument")
	}
	path, ok := args[0].(*object.StringObj)
	if !ok {
		return nil, ecerr.New(ecerr.TypeError, "dict_from_json() path must be a string")
	}
	data, err := os.ReadFile(path.Go())
	if err != nil {
		return nil, ecerr.New(ecerr.SystemError, "dict_from_json: %s", err.Error())
	}
	var decoded interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, ecerr.New(ecerr.ValueError, "dict_from_json: %s", err.Error())
	}
	return jsonToObject(decoded, 0)
}

func jsonToObject(v interface{}, depth int) (object.Object, error) {
	if depth > jsonMaxDepth {
		return nil, ecerr.New(ecerr.RecursionError, "dict_from_json: maximum nesting depth exceeded")
	}
	switch t := v.(type) {
	case nil:
		return object.Null, nil
	case bool:
		if t {
			return object.True, nil
		}
		return object.False, nil
	case float64:
		if t == float64(int64(t)) {
			return object.NewInt(int64(t)), nil
		}
		return object.NewFloat(t), nil
	case string:
		return object.NewString(t), nil
	case []interface{}:
		elems := make([]object.Object, len(t))
		for i, e := range t {
			v, err := jsonToObject(e, depth+1)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return object.NewArray(elems), nil
	case map[string]interface{}:
		d := object.NewDict()
		for k, e := range t {
			v, err := jsonToObject(e, depth+1)
			if err != nil {
				return nil, err
			}
			if err := object.SetItem(d, object.NewString(k), v); err != nil {
				return nil, err
			}
		}
		return d, nil
	default:
		return nil, ecerr.New(ecerr.ValueError, "dict_from_json: unexpected JSON value type %T", v)
	}
}
