package document

import (
	"fmt"

	pdf "github.com/ledongthuc/pdf"
)

// LoadPDF returns one section per page. The pdf package panics on some
// malformed inputs; those panics are returned as errors.
func LoadPDF(path string) (sections []Section, err error) {
	defer func() {
		if r := recover(); r != nil {
			sections, err = nil, fmt.Errorf("read pdf: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	total := r.NumPage()
	sections = make([]Section, 0, total)
	for i := 1; i <= total; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		sections = append(sections, Section{Index: i - 1, Content: normalizeWhitespace(text)})
	}
	return sections, nil
}
