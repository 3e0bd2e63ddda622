package locate

import (
	"bytes"
	"encoding/json"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/frcmap/season-map/internal/fsutil"
	"github.com/frcmap/season-map/internal/model"
)

// commentKey is the top-level documentation entry of an override file.
const commentKey = "_comment"

// Override is a manually curated instruction for one entity. Any field may
// be absent. Coordinates apply only when both are present.
type Override struct {
	Lat    *float64
	Lng    *float64
	Ignore *bool
	// Extra holds entry fields other than lat, lng and ignore, such as
	// free-form notes, so they survive a rewrite of the file.
	Extra map[string]json.RawMessage
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *Override) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*o = Override{}
	for k, raw := range fields {
		var err error
		switch k {
		case "lat":
			err = json.Unmarshal(raw, &o.Lat)
		case "lng":
			err = json.Unmarshal(raw, &o.Lng)
		case "ignore":
			err = json.Unmarshal(raw, &o.Ignore)
		default:
			if o.Extra == nil {
				o.Extra = make(map[string]json.RawMessage)
			}
			o.Extra[k] = raw
		}
		if err != nil {
			return eris.Wrapf(err, "field %q", k)
		}
	}
	return nil
}

// MarshalJSON implements json.Marshaler. Known fields come first, extras
// follow in key order.
func (o Override) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	write := func(k string, v any) error {
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		kb, _ := json.Marshal(k)
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(b)
		return nil
	}

	if o.Lat != nil {
		if err := write("lat", *o.Lat); err != nil {
			return nil, err
		}
	}
	if o.Lng != nil {
		if err := write("lng", *o.Lng); err != nil {
			return nil, err
		}
	}
	if o.Ignore != nil {
		if err := write("ignore", *o.Ignore); err != nil {
			return nil, err
		}
	}
	keys := make([]string, 0, len(o.Extra))
	for k := range o.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := write(k, o.Extra[k]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Apply copies the override onto e. Coordinates are set only when both lat
// and lng are given. The ignore flag is applied independently.
func (o Override) Apply(e model.Locatable) {
	if o.Lat != nil && o.Lng != nil {
		e.SetLocation(*o.Lat, *o.Lng)
	}
	if o.Ignore != nil {
		e.SetIgnore(*o.Ignore)
	}
}

// Overrides maps entity key to its override.
type Overrides map[string]Override

// LoadOverrides reads an override file. A missing file yields an empty set;
// a malformed file is an error. The top-level _comment entry is discarded.
func LoadOverrides(path string) (Overrides, error) {
	f, err := ReadOverrideFile(path)
	if err != nil {
		return nil, err
	}
	return f.Entries, nil
}

// OverrideFile is an override file as edited by hand: its documentation
// comment plus the entries.
type OverrideFile struct {
	Comment json.RawMessage
	Entries Overrides
}

// ReadOverrideFile parses path. A missing file yields an empty file.
func ReadOverrideFile(path string) (*OverrideFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			zap.L().Warn("override file not found, using no overrides", zap.String("path", path))
			return &OverrideFile{Entries: Overrides{}}, nil
		}
		return nil, eris.Wrapf(err, "locate: read overrides %s", path)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, eris.Wrapf(err, "locate: parse overrides %s", path)
	}

	f := &OverrideFile{Entries: make(Overrides, len(raw))}
	for k, v := range raw {
		if k == commentKey {
			f.Comment = v
			continue
		}
		var o Override
		if err := json.Unmarshal(v, &o); err != nil {
			return nil, eris.Wrapf(err, "locate: parse override %q in %s", k, path)
		}
		f.Entries[k] = o
	}
	return f, nil
}

// Set inserts or replaces the entry for key.
func (f *OverrideFile) Set(key string, o Override) {
	if f.Entries == nil {
		f.Entries = Overrides{}
	}
	f.Entries[key] = o
}

// Marshal renders the file with the comment first and entries ordered by
// team number, indented by four spaces.
func (f *OverrideFile) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	if len(f.Comment) > 0 {
		buf.WriteString(`"` + commentKey + `":`)
		buf.Write(f.Comment)
		first = false
	}
	for _, k := range sortOverrideKeys(f.Entries) {
		body, err := json.Marshal(f.Entries[k])
		if err != nil {
			return nil, eris.Wrapf(err, "locate: marshal override %q", k)
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		kb, _ := json.Marshal(k)
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(body)
	}
	buf.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "    "); err != nil {
		return nil, eris.Wrap(err, "locate: indent overrides")
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// Write atomically replaces path with the rendered file.
func (f *OverrideFile) Write(path string) error {
	data, err := f.Marshal()
	if err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(path, data)
}

// sortOverrideKeys orders team keys (frc<N>) numerically, followed by any
// other keys in lexical order.
func sortOverrideKeys(entries Overrides) []string {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ni, iok := teamNumber(keys[i])
		nj, jok := teamNumber(keys[j])
		switch {
		case iok && jok:
			if ni != nj {
				return ni < nj
			}
			return keys[i] < keys[j]
		case iok != jok:
			return iok
		default:
			return keys[i] < keys[j]
		}
	})
	return keys
}

// teamNumber extracts N from a team key "frcN".
func teamNumber(key string) (int, bool) {
	rest, ok := strings.CutPrefix(key, "frc")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return n, true
}
