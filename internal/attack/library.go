package attack

import (
	"strings"

	"github.com/redseed-project/redseed/internal/core"
)

// Generator produces a payload for a given generation index. Generators are
// pure: the same index always yields the same payload.
type Generator func(generation int) core.Payload

// The payload library. Each function is a reusable factory the catalog
// wires to a target category and base difficulty.

func nullInjection(int) core.Payload {
	return core.Absent{}
}

func emptyString(int) core.Payload {
	return core.Text("")
}

func typeConfusionList(int) core.Payload {
	return core.Sequence{core.Text("malicious"), core.Text("payload"), core.Text("data")}
}

func typeConfusionMapping(int) core.Payload {
	return core.Mapping{
		{Key: "payload", Value: core.Text("malicious")},
		{Key: "exec", Value: core.Text("true")},
	}
}

// bufferOverflow grows with the generation index so bounds enforcement
// faces ever larger strings.
func bufferOverflow(generation int) core.Payload {
	return core.Text(strings.Repeat("A", 500+generation*100))
}

func sqlInjection(int) core.Payload {
	return core.Text("'; DROP TABLE users--")
}

// obfuscatedSQLInjection switches to a heavier obfuscation once the run is
// a few generations in.
func obfuscatedSQLInjection(generation int) core.Payload {
	if generation < 3 {
		return core.Text("1'/**/OR/**/1=1")
	}
	return core.Text("1'/*!50000OR*/'1'='1")
}

func stateCorruption(int) core.Payload {
	return core.Mapping{
		{Key: "_protected", Value: core.Text("corrupted")},
		{Key: "_internal", Value: core.Text("compromised")},
	}
}

func codeInjection(int) core.Payload {
	return core.Mapping{
		{Key: "eval", Value: core.Text("exec('malicious_code')")},
		{Key: "__builtins__", Value: core.Text("override")},
	}
}

// catalogEntry pairs a generator with its target category and base
// difficulty.
type catalogEntry struct {
	description string
	category    core.Category
	generate    Generator
	difficulty  int
}

// catalog is the fixed attack catalog. Registry initialization selects a
// deterministic prefix of this list; order is part of the contract.
var catalog = []catalogEntry{
	{"Null injection attack", core.InputValidation, nullInjection, 1},
	{"Empty string bypass", core.InputValidation, emptyString, 1},
	{"List type confusion", core.TypeChecking, typeConfusionList, 2},
	{"Dict type confusion", core.TypeChecking, typeConfusionMapping, 2},
	{"String buffer overflow", core.BoundsEnforcement, bufferOverflow, 3},
	{"SQL injection", core.Sanitization, sqlInjection, 4},
	{"Obfuscated SQL injection", core.Sanitization, obfuscatedSQLInjection, 5},
	{"State object corruption", core.StateProtection, stateCorruption, 3},
	{"Code execution injection", core.StateProtection, codeInjection, 5},
}

// CatalogSize reports how many patterns the fixed catalog holds.
func CatalogSize() int {
	return len(catalog)
}
