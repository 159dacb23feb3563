package batch

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ivlev/promoreel/internal/system"
)

var ErrUnsafePath = errors.New("archive entry escapes the destination")

// ExtractZip unpacks src into dst. Entries that would land outside dst are
// rejected; macOS resource forks are skipped.
func ExtractZip(src, dst string) error {
	zr, err := zip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", filepath.Base(src), err)
	}
	defer zr.Close()

	root, err := filepath.Abs(dst)
	if err != nil {
		return err
	}
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "__MACOSX/") {
			continue
		}
		target := filepath.Join(root, filepath.FromSlash(f.Name))
		if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
			return fmt.Errorf("%w: %s", ErrUnsafePath, f.Name)
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
			continue
		}
		if err := extractFile(f, target); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// FindVideo resolves a filename reference inside dir: the direct path first,
// then a recursive search by base name. It returns "" when nothing matches.
func FindVideo(dir, name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	direct := filepath.Join(dir, name)
	if fi, err := os.Stat(direct); err == nil && !fi.IsDir() {
		return direct
	}

	base := filepath.Base(name)
	var found string
	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || found != "" {
			return nil
		}
		if d.IsDir() {
			if d.Name() == "__MACOSX" {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() == base || strings.EqualFold(d.Name(), base) {
			found = path
			return filepath.SkipAll
		}
		return nil
	})
	return found
}

// ZipHasVideo reports whether an archive contains at least one video file.
func ZipHasVideo(path string) bool {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return false
	}
	defer zr.Close()
	for _, f := range zr.File {
		if !strings.HasPrefix(f.Name, "__MACOSX/") && system.HasExt(f.Name, system.VideoExts) {
			return true
		}
	}
	return false
}

// Inputs are the newest usable files found in a drop directory.
type Inputs struct {
	Zip  string
	CSV  string
	Font string
}

// Discover picks the newest video archive, table and font in dir. The font
// is optional.
func Discover(dir string) (Inputs, error) {
	var in Inputs
	var err error
	if in.Zip, err = system.FindLatest(dir, system.ArchiveExts, ZipHasVideo); err != nil {
		return in, err
	}
	if in.CSV, err = system.FindLatest(dir, system.TableExts, nil); err != nil {
		return in, err
	}
	in.Font, _ = system.FindLatest(dir, system.FontExts, nil)
	return in, nil
}
