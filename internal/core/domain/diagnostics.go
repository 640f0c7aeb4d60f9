package domain

// ErrorRecord is one diagnostic extracted from a tool log.
type ErrorRecord struct {
	// Line is the source line number, or 0 when unknown.
	Line int
	// Description is a short summary such as "Undefined control sequence.".
	Description string
	// Text is the context shown with the error.
	Text string
	// ChildFile is the included file the error was reported in, if any.
	ChildFile string
}

// Diagnostics collects error records and undefined-reference records for one
// build. It is owned by a single build and not safe for concurrent use.
type Diagnostics struct {
	errors []ErrorRecord
	refs   []ErrorRecord
}

// NewDiagnostics returns an empty collector.
func NewDiagnostics() *Diagnostics {
	return &Diagnostics{}
}

// InsertError appends an error record.
func (d *Diagnostics) InsertError(line int, description, text, childFile string) {
	d.errors = append(d.errors, ErrorRecord{
		Line:        line,
		Description: description,
		Text:        text,
		ChildFile:   childFile,
	})
}

// InsertRef appends an undefined-reference or undefined-citation record.
func (d *Diagnostics) InsertRef(line int, description, text, childFile string) {
	d.refs = append(d.refs, ErrorRecord{
		Line:        line,
		Description: description,
		Text:        text,
		ChildFile:   childFile,
	})
}

// ClearErrors drops all error records.
func (d *Diagnostics) ClearErrors() {
	d.errors = nil
}

// ClearRefs drops all reference records.
func (d *Diagnostics) ClearRefs() {
	d.refs = nil
}

// Errors returns a copy of the error records.
func (d *Diagnostics) Errors() []ErrorRecord {
	return append([]ErrorRecord(nil), d.errors...)
}

// Refs returns a copy of the reference records.
func (d *Diagnostics) Refs() []ErrorRecord {
	return append([]ErrorRecord(nil), d.refs...)
}

// Empty reports whether no records were collected.
func (d *Diagnostics) Empty() bool {
	return len(d.errors) == 0 && len(d.refs) == 0
}

// Result is the outcome of a full compilation.
type Result struct {
	Signals Signal
	Errors  []ErrorRecord
	Refs    []ErrorRecord
	// Runs is the number of compiler invocations performed.
	Runs int
}
