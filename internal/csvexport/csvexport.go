// Package csvexport renders guest lists in the five-column layout expected
// by the ticketing platform's guest list import.
package csvexport

import (
	"bytes"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/Shivanand-hulikatti/guestlist/internal/model"
)

// Header is the first line of every export. Company and Type are part of
// the import schema but never populated.
var Header = []string{"Name", "Company", "Email", "Quantity", "Type"}

// Render returns the CSV for guests ordered by signup time. Lines are
// separated by "\n" with no trailing newline, so an empty list is exactly
// the header line.
func Render(guests []model.Guest) []byte {
	sorted := slices.Clone(guests)
	slices.SortStableFunc(sorted, func(a, b model.Guest) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	var b bytes.Buffer
	b.WriteString(strings.Join(Header, ","))
	for _, g := range sorted {
		b.WriteByte('\n')
		b.WriteString(EscapeField(g.Name))
		b.WriteString(",,")
		b.WriteString(EscapeField(g.Email))
		b.WriteByte(',')
		b.WriteString(strconv.Itoa(g.Quantity))
		b.WriteByte(',')
	}
	return b.Bytes()
}

// EscapeField quotes a field containing a comma, double quote or newline,
// doubling any inner quotes. Other fields are returned verbatim.
func EscapeField(s string) string {
	if !strings.ContainsAny(s, ",\"\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Filename builds the download name, e.g. "guestlist-dj-shadow-2024-03-23.csv".
func Filename(djName string, date model.Date) string {
	name, _, err := transform.String(stripMarks, djName)
	if err != nil {
		name = djName
	}
	name = strings.ToLower(strings.Join(strings.Fields(name), "-"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return -1
		}
	}, name)
	if name == "" {
		name = "gig"
	}
	return fmt.Sprintf("guestlist-%s-%s.csv", name, date)
}
