package dataset

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

type xlsxReader struct{}

func (xlsxReader) Kind() string { return KindXLSX }

// Read extracts all rows of the selected sheet. The first row is the header.
// If SheetName is empty, SheetIndex (1-based, default 1) picks the sheet.
func (xlsxReader) Read(_ context.Context, src Source) ([]string, [][]string, error) {
	b, err := os.ReadFile(src.Location)
	if err != nil {
		return nil, nil, fmt.Errorf("read xlsx: %w", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, nil, fmt.Errorf("open xlsx: %w", err)
	}
	wb := workbook{zr: zr}
	target, err := wb.sheetPath(src.SheetName, src.SheetIndex)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", filepath.Base(src.Location), err)
	}
	sheet := wb.file(target)
	if sheet == nil {
		return nil, nil, fmt.Errorf("%s: sheet %s not found", filepath.Base(src.Location), target)
	}
	rr := newRowReader(sheet, parseSharedStrings(wb.file("xl/sharedStrings.xml")))
	header, ok := rr.next()
	if !ok {
		return nil, nil, fmt.Errorf("%s: sheet has no header row", filepath.Base(src.Location))
	}
	var rows [][]string
	for {
		row, ok := rr.next()
		if !ok {
			break
		}
		if blankRow(row) {
			continue
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}

type workbook struct {
	zr *zip.Reader
}

type sheetEntry struct {
	name string
	id   int
	rid  string
}

func (w workbook) file(name string) []byte {
	for _, f := range w.zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil
		}
		defer rc.Close()
		b, _ := io.ReadAll(rc)
		return b
	}
	return nil
}

// sheetPath resolves the zip entry of the requested worksheet.
func (w workbook) sheetPath(name string, index int) (string, error) {
	sheets := eachStart(w.file("xl/workbook.xml"), "sheet", func(attrs map[string]string) sheetEntry {
		return sheetEntry{name: attrs["name"], id: leadingInt(attrs["sheetId"]), rid: attrs["id"]}
	})
	rels := map[string]string{}
	for _, r := range eachStart(w.file("xl/_rels/workbook.xml.rels"), "Relationship", func(attrs map[string]string) [2]string {
		return [2]string{attrs["Id"], attrs["Target"]}
	}) {
		if r[0] != "" && r[1] != "" {
			rels[r[0]] = r[1]
		}
	}

	if name != "" {
		names := make([]string, 0, len(sheets))
		for _, s := range sheets {
			if strings.EqualFold(s.name, name) {
				if rel, ok := rels[s.rid]; ok {
					return relPath(rel), nil
				}
			}
			names = append(names, s.name)
		}
		return "", fmt.Errorf("sheet %q not found; available sheets: %s", name, strings.Join(names, ", "))
	}
	if index <= 0 {
		index = 1
	}
	for _, s := range sheets {
		if s.id == index {
			if rel, ok := rels[s.rid]; ok {
				return relPath(rel), nil
			}
		}
	}
	return fmt.Sprintf("xl/worksheets/sheet%d.xml", index), nil
}

// eachStart decodes every start element with the given local name.
func eachStart[T any](data []byte, local string, fn func(map[string]string) T) []T {
	if len(data) == 0 {
		return nil
	}
	var out []T
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != local {
			continue
		}
		attrs := make(map[string]string, len(se.Attr))
		for _, a := range se.Attr {
			attrs[a.Name.Local] = a.Value
		}
		out = append(out, fn(attrs))
	}
}

func parseSharedStrings(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	var out []string
	var buf strings.Builder
	inText := false
	for {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "si":
				buf.Reset()
			case "t":
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "si":
				out = append(out, buf.String())
			}
		case xml.CharData:
			if inText {
				buf.Write(t)
			}
		}
	}
}

// rowReader streams worksheet rows as dense string slices.
type rowReader struct {
	dec    *xml.Decoder
	shared []string
}

func newRowReader(data []byte, shared []string) *rowReader {
	return &rowReader{dec: xml.NewDecoder(bytes.NewReader(data)), shared: shared}
}

func (r *rowReader) next() ([]string, bool) {
	var row []string
	inRow := false
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return nil, false
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case t.Name.Local == "row":
				inRow = true
				row = row[:0]
			case inRow && t.Name.Local == "c":
				var ref, typ string
				for _, a := range t.Attr {
					switch a.Name.Local {
					case "r":
						ref = a.Value
					case "t":
						typ = a.Value
					}
				}
				col := columnIndex(ref)
				if col < 0 {
					col = len(row)
				}
				for len(row) <= col {
					row = append(row, "")
				}
				row[col] = r.cellValue(typ)
			}
		case xml.EndElement:
			if t.Name.Local == "row" && inRow {
				out := make([]string, len(row))
				copy(out, row)
				return out, true
			}
		}
	}
}

// cellValue consumes tokens up to </c> and returns the cell text.
func (r *rowReader) cellValue(typ string) string {
	var val strings.Builder
	capture := false
	for {
		tok, err := r.dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "v" || t.Name.Local == "t" {
				capture = true
			}
		case xml.EndElement:
			if t.Name.Local == "v" || t.Name.Local == "t" {
				capture = false
			}
			if t.Name.Local == "c" {
				return r.resolve(typ, val.String())
			}
		case xml.CharData:
			if capture {
				val.Write(t)
			}
		}
	}
	return r.resolve(typ, val.String())
}

func (r *rowReader) resolve(typ, val string) string {
	if typ != "s" {
		return val
	}
	idx := leadingInt(val)
	if idx >= 0 && idx < len(r.shared) {
		return r.shared[idx]
	}
	return ""
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// columnIndex converts a cell reference like "C12" to a 0-based column.
// It returns -1 when ref carries no column letters.
func columnIndex(ref string) int {
	idx := 0
	n := 0
	for _, c := range strings.ToUpper(ref) {
		if c < 'A' || c > 'Z' {
			break
		}
		idx = idx*26 + int(c-'A'+1)
		n++
	}
	if n == 0 {
		return -1
	}
	return idx - 1
}

func leadingInt(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int(c-'0')
	}
	return n
}

// relPath maps a relationship target to its zip entry name.
func relPath(rel string) string {
	rel = strings.TrimPrefix(rel, "/")
	if strings.HasPrefix(rel, "xl/") {
		return rel
	}
	return path.Join("xl", rel)
}
