package source

type (
	// FileID uniquely identifies a document within a FileSet.
	FileID uint32
	// FileFlags encodes metadata about a source file.
	FileFlags uint8
)

const (
	// FileVirtual indicates the file was added from memory (test, stdin, etc.).
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
)

// File captures metadata and content for a single document.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32
	Flags   FileFlags
}
