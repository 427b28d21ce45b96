package export

// Section is one titled table within an export, typically one semester.
type Section struct {
	Heading string
	Headers []string
	Rows    [][]string
	// Footer is rendered under the table, e.g. a semester average.
	Footer []string
}

// Document is the content shared by every renderer.
type Document struct {
	Title    string
	Subtitle string
	Sections []Section
}

// Columns returns the widest header count across sections.
func (d Document) Columns() int {
	cols := 0
	for _, s := range d.Sections {
		if len(s.Headers) > cols {
			cols = len(s.Headers)
		}
	}
	return cols
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
