package driven

// FileReader reads file contents for grounding.
type FileReader interface {
	ReadFile(path string) ([]byte, error)
}
