// Package ecconfig centralizes the few tunables spec §4.5 and §6
// name explicitly: value-stack size, the recursion ceiling shared by
// the assembler/VM/container str-cmp, the initial import search path,
// and disassembly verbosity. A real embedder would thread this as a
// field on an explicit interpreter-state struct (see DESIGN.md's note
// on spec §9's single global-state discussion); a command-line tool
// is content with package-level defaults; main.go sets only
// ImportPath[0] (from the input file's directory) before running, and
// no command-line flag changes any of them.
package ecconfig

// StackSize is the default global value-stack depth, in entries
// (spec §4.5: "a fixed global value stack, default 16 KiB entries").
var StackSize = 16 * 1024

// RecursionCeiling bounds assembler expression recursion, VM call
// depth, and container str/cmp recursion (spec §4.5/§7).
var RecursionCeiling = 256

// ImportPath seeds sys.import_path: index 0 is always replaced at
// runtime with the running script's directory; subsequent entries are
// a configured data directory search list.
var ImportPath = []string{""}

// DisassemblyVerbose adds the file header, the .define block and the
// source-location comments to disassembler output when true ("# label"
// comments are printed either way). The CLI passes it for both -d and
// -D; a library caller of the disassembler package may pass false.
var DisassemblyVerbose = true
