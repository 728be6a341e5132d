package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"go.klb.dev/pastecopy/internal/model"
)

const (
	shortIDLen = 8
	previewLen = 60
)

var errNoMatch = errors.New("no matching entry")

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printEntries writes entries as a table numbered from 1, the numbers
// accepted by pin, delete and pick.
func printEntries(w io.Writer, entries []model.Entry, now time.Time) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "History is empty.")
		return err
	}
	tw := tabwriter.NewWriter(w, 1, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "#\tID\tPIN\tCOPIED\tSIZE\tCONTENT\n")
	for i, e := range entries {
		pin := ""
		if e.Pinned {
			pin = "*"
		}
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			i+1,
			shortID(e.ID),
			pin,
			humanize.RelTime(time.UnixMilli(e.Timestamp), now, "ago", "from now"),
			humanize.Bytes(uint64(len(e.Content))),
			e.Preview(previewLen),
		)
	}
	return tw.Flush()
}

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}

// matchRef resolves a user-supplied reference against a listing. A ref is a
// 1-based position, a full id, or an unambiguous id prefix.
func matchRef(entries []model.Entry, ref string) (model.Entry, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return model.Entry{}, fmt.Errorf("%w: empty reference", errNoMatch)
	}
	for _, e := range entries {
		if e.ID == ref {
			return e, nil
		}
	}
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(entries) {
			return model.Entry{}, fmt.Errorf("%w: position %d out of range 1-%d", errNoMatch, n, len(entries))
		}
		return entries[n-1], nil
	}
	var found []model.Entry
	for _, e := range entries {
		if strings.HasPrefix(e.ID, ref) {
			found = append(found, e)
		}
	}
	switch len(found) {
	case 0:
		return model.Entry{}, fmt.Errorf("%w: %q", errNoMatch, ref)
	case 1:
		return found[0], nil
	default:
		return model.Entry{}, fmt.Errorf("%w: %q is ambiguous (%d entries)", errNoMatch, ref, len(found))
	}
}
