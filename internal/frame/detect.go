package frame

import (
	"fmt"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// gotaNA is the cell text gota reads as missing in every series type.
const gotaNA = "NaN"

var toSeries = map[Type]series.Type{
	String: series.String,
	Int:    series.Int,
	Float:  series.Float,
}

// Detect types every column of f and converts its cells in place. String
// cells listed in nullTokens (and nil cells) become nil. Columns named in
// pins keep the pinned type, and cells that do not fit it become nil. Other
// columns are detected by gota over their non-null cells: all integers give
// Int, all numeric give Float, anything else (or no values at all) String.
//
// "NaN" is always read as missing.
func Detect(f *Frame, pins map[string]Type, nullTokens []string) error {
	if f.Width() == 0 {
		return nil
	}
	if f.Len() == 0 {
		for i, c := range f.Columns {
			f.Types[i] = pins[c]
		}
		return nil
	}

	// gota renames duplicate or empty headers, so columns travel under
	// positional names and are mapped back by index.
	names := make([]string, f.Width())
	types := make(map[string]series.Type, len(pins))
	for i, c := range f.Columns {
		names[i] = "c" + strconv.Itoa(i)
		if t, ok := pins[c]; ok {
			types[names[i]] = toSeries[t]
		}
	}
	records := make([][]string, f.Len())
	for r, row := range f.Rows {
		rec := make([]string, len(row))
		for i, v := range row {
			if v == nil {
				rec[i] = gotaNA
			} else {
				rec[i] = Format(v)
			}
		}
		records[r] = rec
	}

	load := func() (dataframe.DataFrame, error) {
		df := dataframe.LoadRecords(records,
			dataframe.HasHeader(false),
			dataframe.Names(names...),
			dataframe.DetectTypes(true),
			dataframe.DefaultType(series.String),
			dataframe.NaNValues(append([]string{gotaNA}, nullTokens...)),
			dataframe.WithTypes(types),
		)
		return df, df.Err
	}
	df, err := load()
	if err != nil {
		return fmt.Errorf("frame: detect types: %w", err)
	}
	// Bool columns would rewrite "1"/"t" as "true"; keep their text.
	reload := false
	for i, t := range df.Types() {
		if t == series.Bool {
			types[names[i]] = series.String
			reload = true
		}
	}
	if reload {
		if df, err = load(); err != nil {
			return fmt.Errorf("frame: detect types: %w", err)
		}
	}

	for i, t := range df.Types() {
		s := df.Col(names[i])
		switch t {
		case series.Int:
			f.Types[i] = Int
		case series.Float:
			f.Types[i] = Float
		default:
			f.Types[i] = String
		}
		for r, row := range f.Rows {
			row[i] = cell(s.Elem(r), f.Types[i])
		}
	}
	return nil
}

func cell(e series.Element, t Type) any {
	if e.IsNA() {
		return nil
	}
	switch t {
	case Int:
		i, err := e.Int()
		if err != nil {
			return nil
		}
		return int64(i)
	case Float:
		return e.Float()
	}
	return e.String()
}
