package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/minervahq/minerva/internal/log"
)

// UnpagedNumber marks content from sources without page structure, such as
// plain-text files.
const UnpagedNumber = -1

// Page is one unit of extracted text with its source page number.
type Page struct {
	Text   string
	Number int
}

// Document is a loaded source file with its extracted pages.
type Document struct {
	Name  string
	Pages []Page
}

// defaultExtensions are the file types loaded when no explicit set is
// configured.
var defaultExtensions = []string{".pdf", ".txt", ".md"}

// Loader extracts text from source files under a directory.
type Loader struct {
	extensions map[string]bool
	logger     log.Logger
}

// NewLoader creates a loader restricted to the given extensions. An empty
// list falls back to the defaults.
func NewLoader(extensions []string, logger log.Logger) *Loader {
	if len(extensions) == 0 {
		extensions = defaultExtensions
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Loader{
		extensions: normalizeExtensions(extensions),
		logger:     logger,
	}
}

// Supported reports whether the file's extension is in the allowed set.
func (l *Loader) Supported(name string) bool {
	return l.extensions[strings.ToLower(filepath.Ext(name))]
}

// LoadFile extracts the text of a single file. PDF sources yield one Page
// per physical page; plain-text sources yield a single unpaged entry.
func (l *Loader) LoadFile(path string) ([]Page, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !l.extensions[ext] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, ext)
	}

	switch ext {
	case ".pdf":
		return loadPDF(path)
	default:
		return loadText(path)
	}
}

// LoadDir loads every supported file directly under dir. A single broken
// file is logged and skipped rather than failing the whole batch.
func (l *Loader) LoadDir(dir string) ([]Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading document directory: %w", err)
	}

	var docs []Document
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !l.extensions[strings.ToLower(filepath.Ext(name))] {
			l.logger.Debug("skipping unsupported file", "file", name)
			continue
		}

		pages, err := l.LoadFile(filepath.Join(dir, name))
		if err != nil {
			l.logger.Warn("failed to load file, skipping", "file", name, "error", err)
			continue
		}
		if len(pages) == 0 {
			l.logger.Debug("file yielded no text, skipping", "file", name)
			continue
		}
		docs = append(docs, Document{Name: name, Pages: pages})
	}
	return docs, nil
}

func loadPDF(path string) ([]Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat pdf: %w", err)
	}

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("parsing pdf: %w", err)
	}

	var pages []Page
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extracting page %d: %w", i, err)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, Page{Text: text, Number: i})
	}
	return pages, nil
}

func loadText(path string) ([]Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading text file: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, nil
	}
	return []Page{{Text: string(data), Number: UnpagedNumber}}, nil
}
