package normcache

// Plan is the read/write plan handed over by the query-execution layer.
// This package does not interpret query documents; a Plan is the already
// computed shape of one: which fields to read or write, nested per object.
type Plan struct {
	Selections []Selection
}

// Selection is one requested field. A selection without sub-selections is
// a scalar leaf; one with sub-selections expects an object (or a list of
// objects) that will be normalized into its own record.
type Selection struct {
	Name       string
	Selections []Selection
}

// Result is the outcome of a Read. Data holds everything that could be
// served; Missing lists the dotted field paths that could not, which is
// the cache-miss signal the caller turns into a network fetch. A miss is
// not an error.
type Result struct {
	Data    map[string]interface{}
	Missing []string
}

// Complete reports whether the read was served entirely from the cache.
func (r *Result) Complete() bool {
	return len(r.Missing) == 0
}
