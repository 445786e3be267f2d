package treegen

import "time"

// Result summarizes one generator run.
type Result struct {
	// Name is WideName or DeepName.
	Name string
	// Path is the subtree directory.
	Path string
	// Skipped is true when the subtree already existed and was left alone.
	// Counts are then taken from configuration, not from disk.
	Skipped bool
	// Levels is the deep tree depth; zero for the wide tree.
	Levels int
	// Dirs is the number of directories in the subtree, including its root
	// for the deep tree.
	Dirs int64
	// Files is the number of files in the subtree.
	Files int64
	// Bytes is the payload bytes of all files.
	Bytes int64
	// Elapsed is the wall time spent building the subtree.
	Elapsed time.Duration
}

// Report is the outcome of Run.
type Report struct {
	RunID   string
	Root    string
	Wide    *Result
	Deep    *Result
	Elapsed time.Duration
}

// Results returns the generator results in execution order.
func (r Report) Results() []Result {
	var out []Result
	if r.Wide != nil {
		out = append(out, *r.Wide)
	}
	if r.Deep != nil {
		out = append(out, *r.Deep)
	}
	return out
}
