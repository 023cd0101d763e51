package domain

// Record is one entry discovered while scanning an extracted archive.
// Directories are recorded with empty content.
type Record struct {
	// Path is the file or directory path as discovered on disk.
	Path string

	// Content is the UTF-8 text content. Empty for directories.
	Content string

	// IsDir is true for directory entries.
	IsDir bool
}

// Embeddable returns true if the record carries text worth embedding.
func (r Record) Embeddable() bool {
	return !r.IsDir && r.Content != ""
}

// MaxIndexedPathLength is the longest path the embedding index stores.
const MaxIndexedPathLength = 500

// IndexEntry is one vector to insert into the embedding index.
// The index assigns its own identifier at insert time.
type IndexEntry struct {
	// Path is the originating file path.
	Path string

	// Vector is the embedding; its length must equal the collection dimension.
	Vector []float32
}

// ExtractionSummary describes the result of one extraction run.
type ExtractionSummary struct {
	// Root is the scanned directory.
	Root string

	// Output is the path of the written record table.
	Output string

	// Files and Dirs count the discovered entries.
	Files int
	Dirs  int

	// Unreadable counts files whose content could not be read as text.
	Unreadable int
}

// IndexSummary describes the result of one index build.
type IndexSummary struct {
	// Collection is the name of the populated collection.
	Collection string

	// Source is the record table the entries were read from.
	Source string

	// Created is true if the collection did not exist before the build.
	Created bool

	// Inserted is the number of vectors written.
	Inserted int

	// Skipped counts records that were not embedded (directories, empty files).
	Skipped int
}
