package export

import "fmt"

// Section is one titled table in a Document.
type Section struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// Document is a titled sequence of sections rendered by the exporters.
type Document struct {
	Title    string
	Subtitle string
	Sections []Section
}

func (d Document) validate() error {
	for _, section := range d.Sections {
		if len(section.Headers) == 0 {
			return fmt.Errorf("section %q has no headers", section.Title)
		}
		for i, row := range section.Rows {
			if len(row) != len(section.Headers) {
				return fmt.Errorf("section %q row %d has %d cells, want %d", section.Title, i, len(row), len(section.Headers))
			}
		}
	}
	return nil
}
