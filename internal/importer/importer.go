package importer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/evghenin/moldova-banking/internal/dbo"
)

// Parser converts a raw bank statement file into a parsed Statement.
type Parser interface {
	Parse(r io.Reader) (*dbo.Statement, error)
	Format() string
}

// Registry holds named statement parsers.
type Registry struct {
	parsers map[string]Parser
}

// FileInfo describes a statement file in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&DBOParser{})
	return r
}

// DBOParser parses DBO-format statement exports.
type DBOParser struct{}

// Format returns the parser name.
func (p *DBOParser) Format() string { return "dbo" }

// Parse reads a DBO statement.
func (p *DBOParser) Parse(r io.Reader) (*dbo.Statement, error) {
	return dbo.Parse(r)
}

// importDir is the subdirectory for statement files.
const importDir = "import"

// processedDir is the subdirectory for processed statement files.
const processedDir = "import/processed"

// statementExts are the file extensions scanned for import.
var statementExts = []string{".txt", ".dbo"}

// Scan returns statement files in <root>/import/.
func Scan(root string) ([]FileInfo, error) {
	dir := filepath.Join(root, importDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !hasStatementExt(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

func hasStatementExt(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range statementExts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// MarkProcessed moves a file from import/ to import/processed/.
func MarkProcessed(root, fileName string) error {
	src := filepath.Join(root, importDir, fileName)
	dstDir := filepath.Join(root, processedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}
