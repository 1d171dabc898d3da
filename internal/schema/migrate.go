package schema

import (
	"fmt"
	"strconv"
)

// Migration converts a record of one version into the next.
type Migration func(Record) Record

type step struct{ from, to int }

// migrations holds one entry per adjacent pair of known versions.
var migrations = map[step]Migration{
	{5, 6}: backfill(version5, version6),
}

// backfill returns a migration that keeps every shared field and sets fields
// new in to to Unavailable.
func backfill(from, to *Version) Migration {
	var added []string
	for _, f := range to.Fields {
		if !from.Has(f.Name) {
			added = append(added, f.Name)
		}
	}
	return func(in Record) Record {
		out := make(Record, len(to.Fields))
		for _, f := range to.Fields {
			if v, ok := in[f.Name]; ok {
				out[f.Name] = v
			}
		}
		for _, name := range added {
			out[name] = Unavailable
		}
		out[VersionField] = strconv.Itoa(to.ID)
		return out
	}
}

// Migrate walks rec from version from up to version to through the
// registered adjacent-pair migrations. The version field of the result always
// reads to.
func Migrate(from, to int, rec Record) (Record, error) {
	if _, err := Lookup(from); err != nil {
		return nil, err
	}
	if _, err := Lookup(to); err != nil {
		return nil, err
	}
	if from > to {
		return nil, fmt.Errorf("cannot migrate version %d down to %d", from, to)
	}

	out := make(Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}

	cur := from
	for cur != to {
		next := nextKnown(cur)
		m, ok := migrations[step{cur, next}]
		if !ok {
			return nil, fmt.Errorf("no migration from version %d to %d", cur, next)
		}
		out = m(out)
		cur = next
	}
	out[VersionField] = strconv.Itoa(to)
	return out, nil
}

// ToLatest decodes cells as version id and migrates the result to Latest.
func ToLatest(id int, cells []string) (Record, error) {
	rec, err := Decode(id, cells)
	if err != nil {
		return nil, err
	}
	return Migrate(id, Latest, rec)
}

func nextKnown(id int) int {
	for _, k := range Known() {
		if k > id {
			return k
		}
	}
	return id
}
