package vm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evilcandy/internal/assembler"
	"evilcandy/internal/object"
)

// captureStdout redirects os.Stdout for the duration of fn and returns
// whatever was written to it — builtinPrint writes there directly, the
// same way the teacher's tests capture CLI output.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	saved := os.Stdout
	os.Stdout = w
	fn()
	os.Stdout = saved
	w.Close()
	buf := make([]byte, 4096)
	n, _ := r.Read(buf)
	r.Close()
	return string(buf[:n])
}

func runSource(t *testing.T, src string) (string, error) {
	t.Helper()
	x, err := assembler.Assemble("<test>", src)
	require.NoError(t, err)
	v := New()
	var runErr error
	out := captureStdout(t, func() {
		_, runErr = v.Run(x)
	})
	return out, runErr
}

// scenario 1: arithmetic mix, §8.
func TestArithmeticMix(t *testing.T) {
	out, err := runSource(t, `print(1 + 2 * 3);`)
	require.NoError(t, err)
	assert.Equal(t, "7\n", out)
}

// scenario 2: closures, §8.
func TestClosure(t *testing.T) {
	out, err := runSource(t, `
		function make(n) {
			function f(x) { return x + n; }
			return f;
		}
		let f = make(5);
		print(f(5));
	`)
	require.NoError(t, err)
	assert.Equal(t, "10\n", out)
}

// scenario 3: dict lock invariant, §8/§4.1.
func TestDictLockDuringForeach(t *testing.T) {
	out, err := runSource(t, `
		let d = {'a': 1, 'b': 2};
		try {
			d.foreach(` + "``" + `(v,k) d['c']=3);
		} catch (e) {
			print('locked');
		}
	`)
	require.NoError(t, err)
	assert.Equal(t, "locked\n", out)
}

// recursion ceiling, §4.5 "recursion safety".
func TestRecursionLimit(t *testing.T) {
	_, err := runSource(t, `
		function loop(n) { return loop(n + 1); }
		loop(0);
	`)
	require.Error(t, err)
}

// scenario 5: import round trip, §4.5/§8.
func TestImportRoundTrip(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "a.evc"), []byte(`
		let x = 41;
		function get() { return x + 1; }
	`), 0o644)
	require.NoError(t, err)

	main := `
		let m = import('` + filepath.Join(dir, "a.evc") + `', 'x');
		print(m.get());
	`
	out, err := runSource(t, main)
	require.NoError(t, err)
	assert.Equal(t, "42\n", out)
}

// scenario 6: slice, §8.
func TestSlice(t *testing.T) {
	out, err := runSource(t, `print([10,20,30,40][1:3]);`)
	require.NoError(t, err)
	assert.Equal(t, "[20, 30]\n", out)
}

func TestArgumentDefaultsAndVariadic(t *testing.T) {
	out, err := runSource(t, `
		function greet(name, greeting="hi") { return greeting + " " + name; }
		print(greet("a"));
		print(greet("b", "yo"));

		function sum(*nums) {
			let total = 0;
			let i = 0;
			while (i < len(nums)) { total = total + nums[i]; i = i + 1; }
			return total;
		}
		print(sum(1, 2, 3));
		print(sum(*[4, 5]));
	`)
	require.NoError(t, err)
	assert.Equal(t, "hi a\nyo b\n6\n9\n", out)
}

func TestStringConversionInvariant(t *testing.T) {
	out, err := runSource(t, `
		let i = 123;
		print(str(int(str(i))) == str(i));
	`)
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)
}

func TestIndexErrorOutOfRange(t *testing.T) {
	_, err := runSource(t, `let a = [1,2,3]; print(a[3]);`)
	require.Error(t, err)
}

func TestMathModule(t *testing.T) {
	out, err := runSource(t, `print(math.sqrt(9.0)); print(math.pow(2, 10));`)
	require.NoError(t, err)
	assert.Equal(t, "3\n1024\n", out)
}

func TestSysModuleArgvAndBreadcrumbs(t *testing.T) {
	out, err := runSource(t, `
		print(len(sys.argv) >= 0);
		print(len(sys.breadcrumbs()));
	`)
	require.NoError(t, err)
	assert.Equal(t, "1\n0\n", out)
}

func TestDictFromJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"a": 1, "b": [1, 2, 3], "c": "hi"}`), 0o644))

	out, err := runSource(t, `
		let d = dict_from_json('`+path+`');
		print(d['a']);
		print(d['c']);
		print(len(d['b']));
	`)
	require.NoError(t, err)
	assert.Equal(t, "1\nhi\n3\n", out)
}

func TestRefcountBalancedOnSimpleArithmetic(t *testing.T) {
	// 1000+2000 falls outside the small-int cache (-1..256), so the
	// result is a genuinely refcounted (non-immortal) value and this
	// test actually exercises the push/assign retain discipline.
	v := New()
	x, err := assembler.Assemble("<test>", `let a = 1000 + 2000;`)
	require.NoError(t, err)
	_, err = v.Run(x)
	require.NoError(t, err)
	a, ok := v.Global("a")
	require.True(t, ok)
	assert.Equal(t, int32(1), object.RefCount(a))
}
