package port

type FileWalker interface {
	Walk(root string) ([]FileInfo, error)
	Filter(root string, paths []string) []string
}

type FileInfo struct {
	Path    string
	ModTime int64
	Size    int64
}

type FileReader interface {
	ReadFile(path string) (string, error)
}
