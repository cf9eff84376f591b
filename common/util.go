package common

import "strings"

// ToPathRoot returns the local (trailing) segment of a qualified name
func ToPathRoot(name string) string {
	if i := strings.LastIndex(name, PathDelimiter); i != -1 {
		return name[i+len(PathDelimiter):]
	}

	return name
}

// Qualify prefixes a local name with the grammar it was declared in.  A
// leading underscore stays in front so inline and discarded symbols keep
// their meaning once qualified.
func Qualify(grammar, name string) string {
	if grammar == "" {
		return name
	}

	if strings.HasPrefix(name, "_") {
		return "_" + grammar + PathDelimiter + name[1:]
	}

	return grammar + PathDelimiter + name
}

// ToAttributeName converts a (possibly qualified) symbol name into the
// lower-case form used for attribute names
func ToAttributeName(name string) string {
	return strings.ToLower(ToPathRoot(name))
}

// ToTerminalName converts an attribute name back to the upper-case form
// terminals are declared with
func ToTerminalName(name string) string {
	return strings.ToUpper(name)
}
