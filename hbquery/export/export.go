// Package export writes filtered contexts as CSV, JSON or an aligned table.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	hqerrors "github.com/nonibytes/hbquery/hbquery/errors"
	"github.com/nonibytes/hbquery/hbquery/ledger"
	"github.com/nonibytes/hbquery/hbquery/query"
)

// SelectColumns parses a comma-separated column list. An empty list selects
// every field in canonical order.
func SelectColumns(list string) ([]query.Field, error) {
	if strings.TrimSpace(list) == "" {
		return slices.Clone(query.Fields), nil
	}
	var cols []query.Field
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		f, ok := query.LookupField(name)
		if !ok {
			return nil, hqerrors.UnknownColumnError(name)
		}
		cols = append(cols, f)
	}
	return cols, nil
}

func header(cols []query.Field) []string {
	out := make([]string, len(cols))
	for i, f := range cols {
		out[i] = f.String()
	}
	return out
}

func row(cols []query.Field, c ledger.Context) []string {
	out := make([]string, len(cols))
	for i, f := range cols {
		out[i] = c.Value(f)
	}
	return out
}

// WriteCSV writes a header line followed by one record per context.
func WriteCSV(w io.Writer, cols []query.Field, ctxs []ledger.Context) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header(cols)); err != nil {
		return hqerrors.Wrap(hqerrors.ErrIO, "write csv", err)
	}
	for _, c := range ctxs {
		if err := cw.Write(row(cols, c)); err != nil {
			return hqerrors.Wrap(hqerrors.ErrIO, "write csv", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return hqerrors.Wrap(hqerrors.ErrIO, "write csv", err)
	}
	return nil
}

// WriteJSON writes an indented array with one object per context, keys in
// column order.
func WriteJSON(w io.Writer, cols []query.Field, ctxs []ledger.Context) error {
	records := make([]orderedRecord, len(ctxs))
	for i, c := range ctxs {
		records[i] = orderedRecord{cols: cols, ctx: c}
	}
	b, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return hqerrors.Wrap(hqerrors.ErrIO, "encode json", err)
	}
	b = append(b, '\n')
	if _, err := w.Write(b); err != nil {
		return hqerrors.Wrap(hqerrors.ErrIO, "write json", err)
	}
	return nil
}

// WriteTable writes an aligned, tab-separated table for terminals.
func WriteTable(w io.Writer, cols []query.Field, ctxs []ledger.Context) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := io.WriteString(tw, strings.Join(header(cols), "\t")+"\n"); err != nil {
		return hqerrors.Wrap(hqerrors.ErrIO, "write table", err)
	}
	for _, c := range ctxs {
		if _, err := io.WriteString(tw, strings.Join(row(cols, c), "\t")+"\n"); err != nil {
			return hqerrors.Wrap(hqerrors.ErrIO, "write table", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return hqerrors.Wrap(hqerrors.ErrIO, "write table", err)
	}
	return nil
}

// orderedRecord marshals a context as an object restricted to cols.
type orderedRecord struct {
	cols []query.Field
	ctx  ledger.Context
}

func (r orderedRecord) MarshalJSON() ([]byte, error) {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, f := range r.cols {
		if i > 0 {
			sb.WriteByte(',')
		}
		k, err := json.Marshal(f.String())
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.ctx.Value(f))
		if err != nil {
			return nil, err
		}
		sb.Write(k)
		sb.WriteByte(':')
		sb.Write(v)
	}
	sb.WriteByte('}')
	return []byte(sb.String()), nil
}
