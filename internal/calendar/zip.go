package calendar

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"
)

// maxEntrySize bounds how much of a single archive entry is read.
const maxEntrySize = 10 << 20

// ParseFile dispatches on the file extension: .zip archives and .ics files
// are supported.
func ParseFile(name string, data []byte) Result {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		return ParseZip(data)
	case strings.HasSuffix(lower, ".ics"):
		if len(data) == 0 {
			res := newResult()
			res.Errors = append(res.Errors, "Could not read file content")
			return res
		}
		return Parse(string(data))
	default:
		res := newResult()
		res.Errors = append(res.Errors, "Unsupported file format. Please upload a .ics or .zip file")
		return res
	}
}

// ParseZip parses every .ics entry of a ZIP archive. Events are deduplicated
// by ID (the last occurrence wins, first-seen order is kept) and each error
// is prefixed with the entry it came from.
func ParseZip(data []byte) Result {
	res := newResult()

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("Failed to read ZIP file: %v", err))
		return res
	}

	var sources []*zip.File
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || strings.HasPrefix(f.Name, "__MACOSX/") {
			continue
		}
		if strings.HasSuffix(strings.ToLower(f.Name), ".ics") {
			sources = append(sources, f)
		}
	}
	if len(sources) == 0 {
		res.Errors = append(res.Errors, "No .ics files found in ZIP archive")
		return res
	}

	var all []Event
	for _, f := range sources {
		content, err := readEntry(f)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", f.Name, err))
			continue
		}
		parsed := Parse(content)
		all = append(all, parsed.Events...)
		for _, e := range parsed.Errors {
			res.Errors = append(res.Errors, f.Name+": "+e)
		}
	}

	res.Events = dedupe(all)
	return res
}

func readEntry(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("open entry: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxEntrySize))
	if err != nil {
		return "", fmt.Errorf("read entry: %w", err)
	}
	return string(data), nil
}

func dedupe(events []Event) []Event {
	index := make(map[string]int, len(events))
	out := make([]Event, 0, len(events))
	for _, ev := range events {
		if i, ok := index[ev.ID]; ok {
			out[i] = ev
			continue
		}
		index[ev.ID] = len(out)
		out = append(out, ev)
	}
	return out
}
