package document

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// LoadDOCX returns one section per non-empty paragraph of word/document.xml.
// Only visible run text (w:t) is kept; field codes and tracked deletions are skipped.
func LoadDOCX(path string) ([]Section, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return readParagraphs(rc)
	}
	return nil, errors.New("no document.xml found in docx")
}

func readParagraphs(r io.Reader) ([]Section, error) {
	dec := xml.NewDecoder(r)
	var (
		sections []Section
		para     strings.Builder
		inText   bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				para.WriteByte('\t')
			case "br", "cr":
				para.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if text := normalizeWhitespace(para.String()); text != "" {
					sections = append(sections, Section{Index: len(sections), Content: text})
				}
				para.Reset()
			}
		case xml.CharData:
			if inText {
				para.Write(t)
			}
		}
	}
	return sections, nil
}
