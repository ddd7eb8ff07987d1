package rulekit

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

type Config map[string]*cfgVal

// NewConfig creates a new configuration object primed with the
// default values read by the grammar, the compiler and the scanner.
func NewConfig() *Config {
	m := make(Config)
	// expression for the whitespace rule, empty means the built-in
	// one matching space, tab, line feed and carriage return
	m.SetString("grammar.whitespace", "")
	// log the clause tree of every rule when compiling
	m.SetBool("compiler.debug", false)
	// maximum number of messages kept in a ScanError, zero keeps
	// all of them
	m.SetInt("scan.max_errors", 0)
	return &m
}

// Write lists every setting, sorted by key, one per line
func (c *Config) Write(w io.Writer) {
	keys := make([]string, 0, len(*c))
	width := 0
	for k := range *c {
		keys = append(keys, k)
		width = max(width, len(k))
	}
	sort.Strings(keys)

	for _, k := range keys {
		pad := strings.Repeat(" ", width-len(k))
		fmt.Fprintf(w, "%s%s : %s\n", k, pad, (*c)[k])
	}
}

type cfgValType int

const (
	cfgValType_Undefined cfgValType = iota
	cfgValType_Bool
	cfgValType_Int
	cfgValType_String
)

func (vt cfgValType) String() string {
	return map[cfgValType]string{
		cfgValType_Undefined: "undefined",
		cfgValType_Bool:      "bool",
		cfgValType_Int:       "int",
		cfgValType_String:    "string",
	}[vt]
}

type cfgVal struct {
	typ      cfgValType
	asBool   bool
	asInt    int
	asString string
}

func (v *cfgVal) checkType(vt cfgValType) {
	if v.typ != vt {
		panic(fmt.Sprintf("Can't retrieve `%s` from `%s` variable", vt, v.typ))
	}
}

func (v *cfgVal) String() string {
	switch v.typ {
	case cfgValType_Bool:
		return fmt.Sprintf("%t (bool)", v.asBool)
	case cfgValType_Int:
		return fmt.Sprintf("%d (int)", v.asInt)
	case cfgValType_String:
		return fmt.Sprintf("%q (string)", v.asString)
	default:
		return "(undefined)"
	}
}

// set replaces the value under path, refusing to change the type of
// a key that already exists
func (c *Config) set(path string, v *cfgVal) {
	if old, ok := (*c)[path]; ok && old.typ != v.typ {
		panic(fmt.Sprintf("Can't assign `%s` to `%s` setting `%s`", v.typ, old.typ, path))
	}
	(*c)[path] = v
}

func (c *Config) SetBool(path string, v bool) {
	c.set(path, &cfgVal{typ: cfgValType_Bool, asBool: v})
}

func (c *Config) SetInt(path string, v int) {
	c.set(path, &cfgVal{typ: cfgValType_Int, asInt: v})
}

func (c *Config) SetString(path string, v string) {
	c.set(path, &cfgVal{typ: cfgValType_String, asString: v})
}

func (c *Config) GetBool(path string) bool {
	if val, ok := (*c)[path]; ok {
		val.checkType(cfgValType_Bool)
		return val.asBool
	}
	panic(fmt.Sprintf("Bool setting `%s` does not exist", path))
}

func (c *Config) GetInt(path string) int {
	if val, ok := (*c)[path]; ok {
		val.checkType(cfgValType_Int)
		return val.asInt
	}
	panic(fmt.Sprintf("Int setting `%s` does not exist", path))
}

func (c *Config) GetString(path string) string {
	if val, ok := (*c)[path]; ok {
		val.checkType(cfgValType_String)
		return val.asString
	}
	panic(fmt.Sprintf("String setting `%s` does not exist", path))
}
