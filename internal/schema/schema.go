// Package schema holds the known revisions of the solver's result CSV format
// and migrates records between them.
package schema

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// VersionField is the name of the leading column carrying the format version.
const VersionField = "FILE-VERSION"

// Unavailable fills fields that did not exist in a record's source version.
const Unavailable = "-3"

// Latest is the newest known format version.
const Latest = 6

// FieldKind is the value type a field holds.
type FieldKind int

const (
	Integer FieldKind = iota
	Float
)

func (k FieldKind) String() string {
	if k == Float {
		return "float"
	}
	return "integer"
}

// Field describes one column of a result row.
type Field struct {
	Name string
	Kind FieldKind
}

// Version is one revision of the result format: an ordered field list.
type Version struct {
	ID     int
	Fields []Field
}

// Names returns the field names in column order.
func (v *Version) Names() []string {
	names := make([]string, len(v.Fields))
	for i, f := range v.Fields {
		names[i] = f.Name
	}
	return names
}

// Has reports whether the version defines a field called name.
func (v *Version) Has(name string) bool {
	for _, f := range v.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// ErrUnknownVersion is matched by every *UnknownVersionError.
var ErrUnknownVersion = errors.New("unknown format version")

// UnknownVersionError reports a version id missing from the registry.
type UnknownVersionError struct {
	ID int
}

func (e *UnknownVersionError) Error() string {
	return fmt.Sprintf("unknown format version: %d", e.ID)
}

func (e *UnknownVersionError) Is(target error) bool {
	return target == ErrUnknownVersion
}

// Lookup returns the registered version id.
func Lookup(id int) (*Version, error) {
	v, ok := registry[id]
	if !ok {
		return nil, &UnknownVersionError{ID: id}
	}
	return v, nil
}

// Known returns every registered version id in ascending order.
func Known() []int {
	ids := make([]int, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Record is one result row keyed by field name.
type Record map[string]string

// Values returns the record's values in the column order of v.
func (r Record) Values(v *Version) []string {
	out := make([]string, len(v.Fields))
	for i, f := range v.Fields {
		out[i] = r[f.Name]
	}
	return out
}

// Decode zips cells against the field list of version id. The cell count must
// match the version exactly and the leading cell must declare id.
func Decode(id int, cells []string) (Record, error) {
	v, err := Lookup(id)
	if err != nil {
		return nil, err
	}
	if len(cells) != len(v.Fields) {
		return nil, &FieldCountError{Version: id, Want: len(v.Fields), Got: len(cells)}
	}
	declared, err := strconv.Atoi(strings.TrimSpace(cells[0]))
	if err != nil || declared != id {
		return nil, &VersionMismatchError{Parsing: id, Declared: cells[0]}
	}

	rec := make(Record, len(v.Fields))
	for i, f := range v.Fields {
		rec[f.Name] = cells[i]
	}
	return rec, nil
}

var (
	ErrFieldCount      = errors.New("field count does not match format version")
	ErrVersionMismatch = errors.New("declared version does not match parsing version")
)

// FieldCountError reports a row whose width differs from its version.
type FieldCountError struct {
	Version   int
	Want, Got int
}

func (e *FieldCountError) Error() string {
	return fmt.Sprintf("version %d expects %d fields, got %d", e.Version, e.Want, e.Got)
}

func (e *FieldCountError) Is(target error) bool { return target == ErrFieldCount }

// VersionMismatchError reports a row parsed under a version it does not declare.
type VersionMismatchError struct {
	Parsing  int
	Declared string
}

func (e *VersionMismatchError) Error() string {
	return fmt.Sprintf("row declares version %q but is parsed as version %d", e.Declared, e.Parsing)
}

func (e *VersionMismatchError) Is(target error) bool { return target == ErrVersionMismatch }
