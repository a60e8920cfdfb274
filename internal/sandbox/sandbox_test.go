package sandbox

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestValidatePathWithinRoot(t *testing.T) {
	root := t.TempDir()

	resolved, err := ValidatePath(root, "assets/app.js.gz")
	if err != nil {
		t.Fatalf("ValidatePath: %v", err)
	}

	realRoot, _ := filepath.EvalSymlinks(root)
	expected := filepath.Join(realRoot, "assets", "app.js.gz")
	if resolved != expected {
		t.Errorf("got %q, want %q", resolved, expected)
	}
}

func TestValidatePathMissingRoot(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "dist", "public")

	resolved, err := ValidatePath(root, "a.gz")
	if err != nil {
		t.Fatalf("ValidatePath on a root that does not exist yet: %v", err)
	}
	realParent, _ := filepath.EvalSymlinks(parent)
	if want := filepath.Join(realParent, "dist", "public", "a.gz"); resolved != want {
		t.Errorf("got %q, want %q", resolved, want)
	}
}

func TestValidatePathRejectsDotDot(t *testing.T) {
	root := t.TempDir()

	for _, p := range []string{"../escape.gz", "sub/../../escape.gz"} {
		_, err := ValidatePath(root, p)
		if err == nil {
			t.Fatalf("expected error for %s", p)
		}
		if !strings.Contains(err.Error(), "outside the root") {
			t.Errorf("unexpected error: %v", err)
		}
	}
}

func TestValidatePathRejectsSymlinkEscape(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink test not reliable on Windows")
	}

	root := t.TempDir()
	outsideDir := t.TempDir()

	if err := os.Symlink(outsideDir, filepath.Join(root, "escape-link")); err != nil {
		t.Fatalf("creating symlink: %v", err)
	}

	_, err := ValidatePath(root, "escape-link/file.gz")
	if err == nil {
		t.Fatal("expected error for symlink escape")
	}
	if !strings.Contains(err.Error(), "outside the root") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidatePathAllowsInternalSymlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink test not reliable on Windows")
	}

	root := t.TempDir()
	realDir := filepath.Join(root, "real", "subdir")
	if err := os.MkdirAll(realDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join(root, "real"), filepath.Join(root, "link")); err != nil {
		t.Fatal(err)
	}

	resolved, err := ValidatePath(root, "link/subdir/file.gz")
	if err != nil {
		t.Fatalf("ValidatePath through internal symlink: %v", err)
	}

	realRoot, _ := filepath.EvalSymlinks(root)
	expected := filepath.Join(realRoot, "real", "subdir", "file.gz")
	if resolved != expected {
		t.Errorf("got %q, want %q", resolved, expected)
	}
}

func TestWriteStreamCreatesFile(t *testing.T) {
	root := t.TempDir()

	n, err := WriteStream(root, "css/site.css.gz", 0640, func(w io.Writer) error {
		_, err := io.WriteString(w, "hello world")
		return err
	})
	if err != nil {
		t.Fatalf("WriteStream: %v", err)
	}
	if n != 11 {
		t.Errorf("n = %d, want 11", n)
	}

	path := filepath.Join(root, "css", "site.css.gz")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading written file: %v", err)
	}
	if string(data) != "hello world" {
		t.Errorf("content = %q", data)
	}

	if runtime.GOOS != "windows" {
		info, _ := os.Stat(path)
		if info.Mode().Perm() != 0640 {
			t.Errorf("perm = %o, want 640", info.Mode().Perm())
		}
	}
}

func TestWriteStreamFailureKeepsExisting(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.gz")
	if err := os.WriteFile(path, []byte("original"), 0644); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("codec fault")
	_, err := WriteStream(root, "a.gz", 0644, func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected codec error, got %v", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "original" {
		t.Errorf("destination changed to %q", data)
	}

	entries, _ := os.ReadDir(root)
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temp file %s left behind", e.Name())
		}
	}
}

func TestWriteStreamRejectsEscape(t *testing.T) {
	root := t.TempDir()
	_, err := WriteStream(root, "../escape.gz", 0644, func(w io.Writer) error { return nil })
	if err == nil {
		t.Fatal("expected error for escape attempt")
	}
	if _, err := WriteStream(root, ".", 0644, func(w io.Writer) error { return nil }); err == nil {
		t.Fatal("expected error for the root itself")
	}
}

func TestRemoveAll(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "cache", "ab"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "cache", "ab", "obj"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := RemoveAll(root, "cache"); err != nil {
		t.Fatalf("RemoveAll: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "cache")); !os.IsNotExist(err) {
		t.Error("directory should be removed")
	}
	if err := RemoveAll(root, "cache"); err != nil {
		t.Errorf("removing a missing path: %v", err)
	}
}

func TestRemoveAllRejectsEscapeAndRoot(t *testing.T) {
	root := t.TempDir()
	if err := RemoveAll(root, "../escape"); err == nil {
		t.Fatal("expected error for escape attempt")
	}
	if err := RemoveAll(root, "."); err == nil {
		t.Fatal("expected error for removing the root")
	}
	if _, err := os.Stat(root); err != nil {
		t.Fatalf("root must survive: %v", err)
	}
}
