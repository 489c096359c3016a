package table

import "sort"

// Flatten expands every column holding nested records into one column per
// nested key, named "<column>_<key>". Rows lacking a key, or whose cell is
// nil, read nil for the derived column. The nested column is removed,
// surviving columns keep their order and derived columns are appended.
// Records nested inside records are expanded in the same pass, so applying
// Flatten to its own output returns an equal table.
func (t *Table) Flatten() *Table {
	rows := make([]Row, len(t.rows))
	for i, r := range t.rows {
		rows[i] = cloneRow(r)
	}

	pending := make([]string, len(t.columns))
	copy(pending, t.columns)
	known := make(map[string]struct{}, len(t.columns))
	for _, c := range t.columns {
		known[c] = struct{}{}
	}

	var keep []string
	for i := 0; i < len(pending); i++ {
		col := pending[i]
		keys := nestedKeys(rows, col)
		if keys == nil {
			keep = append(keep, col)
			continue
		}

		for _, r := range rows {
			rec := asRecord(r[col])
			delete(r, col)
			for _, k := range keys {
				v, ok := rec[k]
				if !ok {
					continue
				}
				name := col + "_" + k
				if existing, taken := r[name]; taken && existing != nil {
					continue
				}
				r[name] = v
			}
		}
		for _, k := range keys {
			name := col + "_" + k
			if _, ok := known[name]; ok {
				continue
			}
			known[name] = struct{}{}
			pending = append(pending, name)
		}
	}

	out := New(keep...)
	out.rows = rows
	return out
}

// nestedKeys returns the distinct keys of nested records in col, first-seen
// across rows, or nil when col holds no nested record.
func nestedKeys(rows []Row, col string) []string {
	var keys []string
	seen := make(map[string]struct{})
	nested := false
	for _, r := range rows {
		rec := asRecord(r[col])
		if rec == nil {
			continue
		}
		nested = true
		local := make([]string, 0, len(rec))
		for k := range rec {
			if _, ok := seen[k]; !ok {
				local = append(local, k)
			}
		}
		sort.Strings(local)
		for _, k := range local {
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}
	if !nested {
		return nil
	}
	if keys == nil {
		keys = []string{}
	}
	return keys
}

func asRecord(v any) map[string]any {
	switch m := v.(type) {
	case map[string]any:
		return m
	case Row:
		return m
	}
	return nil
}
