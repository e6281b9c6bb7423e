package wiki

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ContentFile and PropertiesFile are the files inside a page directory.
const (
	ContentFile    = "content.txt"
	PropertiesFile = "properties.xml"
)

// stubContent is written to pages created only to hold children.
const stubContent = "!contents"

// PageKind selects the page type flag written to properties.xml.
type PageKind int

const (
	Normal PageKind = iota
	Test
	Suite
)

func (k PageKind) String() string {
	switch k {
	case Test:
		return "test"
	case Suite:
		return "suite"
	default:
		return "normal"
	}
}

// Properties returns the properties.xml body for a page of kind k.
func Properties(k PageKind) string {
	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\"?>\n<properties>\n")
	for _, p := range []string{"Edit", "Files", "Properties", "RecentChanges", "Refactor", "Search"} {
		fmt.Fprintf(&b, "  <%s>true</%s>\n", p, p)
	}
	switch k {
	case Test:
		b.WriteString("  <Test/>\n")
	case Suite:
		b.WriteString("  <Suite/>\n")
	}
	b.WriteString("  <Versions>true</Versions>\n  <WhereUsed>true</WhereUsed>\n</properties>\n")
	return b.String()
}

// CreatePage writes a page directory at dir holding content and a
// properties file for kind, creating dir if needed. Existing files are
// overwritten.
func CreatePage(dir, content string, kind PageKind) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating page %s: %w", dir, err)
	}
	if err := writeFileAtomic(filepath.Join(dir, ContentFile), []byte(content)); err != nil {
		return fmt.Errorf("writing page %s: %w", dir, err)
	}
	if err := writeFileAtomic(filepath.Join(dir, PropertiesFile), []byte(Properties(kind))); err != nil {
		return fmt.Errorf("writing page %s: %w", dir, err)
	}
	return nil
}

// writeFileAtomic replaces path through a temp file rename, so a wiki server
// reading the page never sees it half written.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".page-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err = os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("setting mode: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// CreateContentStubs makes sure every directory from root down to root/rel
// is a page, writing a "!contents" page wherever content.txt is missing.
// Existing pages are left alone.
func CreateContentStubs(root, rel string) error {
	dir := root
	parts := strings.Split(filepath.ToSlash(rel), "/")
	for i := -1; i < len(parts); i++ {
		if i >= 0 {
			if parts[i] == "" || parts[i] == "." {
				continue
			}
			dir = filepath.Join(dir, parts[i])
		}
		_, err := os.Stat(filepath.Join(dir, ContentFile))
		if err == nil {
			continue
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		if err := CreatePage(dir, stubContent, Normal); err != nil {
			return err
		}
	}
	return nil
}
