package repository

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/matzehuels/pommapper/pkg/errors"
)

const localArtifactMetadata = `<metadata>
  <groupId>org.foo</groupId>
  <artifactId>foo</artifactId>
  <versioning>
    <versions>
      <version>1.0.0</version>
      <version>1.1.0</version>
      <version>2.0.0-SNAPSHOT</version>
      <version>3.0.0</version>
    </versions>
  </versioning>
</metadata>`

const localSnapshotMetadata = `<metadata>
  <versioning>
    <snapshot>
      <timestamp>20240101.120000</timestamp>
      <buildNumber>3</buildNumber>
    </snapshot>
  </versioning>
</metadata>`

func TestLocalVersionsFromMetadata(t *testing.T) {
	dir := t.TempDir()
	writeRepo(t, dir, map[string]string{
		"org/foo/foo/maven-metadata.xml":                             localArtifactMetadata,
		"org/foo/foo/1.0.0/foo-1.0.0.pom":                            "<project/>",
		"org/foo/foo/1.1.0/foo-1.1.0.pom":                            "<project/>",
		"org/foo/foo/2.0.0-SNAPSHOT/maven-metadata.xml":              localSnapshotMetadata,
		"org/foo/foo/2.0.0-SNAPSHOT/foo-2.0.0-20240101.120000-3.pom": "<project/>",
		"org/foo/foo/9.9.9/foo-9.9.9.pom":                            "<project/>", // not in metadata
		"org/foo/foo/1.2.0/foo-1.2.0.jar":                            "",           // not in metadata either
	})

	l, err := NewLocal("local", dir)
	if err != nil {
		t.Fatal(err)
	}
	vs, err := l.Versions(context.Background(), "org/foo/foo")
	if err != nil {
		t.Fatalf("Versions() error: %v", err)
	}

	// 3.0.0 is listed but has no directory.
	want := []Version{
		{Base: "1.0.0", Version: "1.0.0", POM: "org/foo/foo/1.0.0/foo-1.0.0.pom", Jar: "org/foo/foo/1.0.0/foo-1.0.0.jar"},
		{Base: "1.1.0", Version: "1.1.0", POM: "org/foo/foo/1.1.0/foo-1.1.0.pom", Jar: "org/foo/foo/1.1.0/foo-1.1.0.jar"},
		{
			Base:    "2.0.0-SNAPSHOT",
			Version: "2.0.0-20240101.120000-3",
			POM:     "org/foo/foo/2.0.0-SNAPSHOT/foo-2.0.0-20240101.120000-3.pom",
			Jar:     "org/foo/foo/2.0.0-SNAPSHOT/foo-2.0.0-20240101.120000-3.jar",
		},
	}
	if len(vs) != len(want) {
		t.Fatalf("Versions() = %+v, want %d versions", vs, len(want))
	}
	for i := range want {
		if vs[i] != want[i] {
			t.Errorf("vs[%d] = %+v, want %+v", i, vs[i], want[i])
		}
	}
}

func TestLocalVersionsDirectoryFallback(t *testing.T) {
	dir := t.TempDir()
	writeRepo(t, dir, map[string]string{
		"org/foo/foo/1.10/foo-1.10.pom":                 "<project/>",
		"org/foo/foo/1.9/foo-1.9.pom":                   "<project/>",
		"org/foo/foo/2.0-SNAPSHOT/foo-2.0-SNAPSHOT.pom": "<project/>",
		"org/foo/foo/2.1/foo-2.1.jar":                   "",
		"org/foo/foo/.cache/foo-.cache.pom":             "<project/>",
		"org/foo/foo/maven-metadata.xml":                "<metadata><broken",
	})

	l, err := NewLocal("local", dir)
	if err != nil {
		t.Fatal(err)
	}
	vs, err := l.Versions(context.Background(), "/org/foo/foo/")
	if err != nil {
		t.Fatalf("Versions() error: %v", err)
	}

	want := []string{"1.9", "1.10", "2.0-SNAPSHOT"}
	if len(vs) != len(want) {
		t.Fatalf("Versions() = %+v, want %v", vs, want)
	}
	for i, w := range want {
		if vs[i].Base != w {
			t.Errorf("vs[%d].Base = %q, want %q", i, vs[i].Base, w)
		}
	}
	if vs[2].Version != "2.0-SNAPSHOT" {
		t.Errorf("snapshot without metadata resolved to %q", vs[2].Version)
	}
}

func TestLocalVersionsMissing(t *testing.T) {
	l, err := NewLocal("local", t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := l.Versions(context.Background(), "org/none/none"); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Versions() error = %v, want FILE_NOT_FOUND", err)
	}
	if _, err := l.Versions(context.Background(), "org/../../etc"); !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("Versions() error = %v, want INVALID_PATH", err)
	}
}

func TestLocalOpen(t *testing.T) {
	dir := t.TempDir()
	writeRepo(t, dir, map[string]string{"org/foo/foo/1.0/foo-1.0.pom": "<project>1</project>"})
	l, err := NewLocal("local", dir)
	if err != nil {
		t.Fatal(err)
	}

	rc, err := l.Open(context.Background(), "/org/foo/foo/1.0/foo-1.0.pom")
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "<project>1</project>" {
		t.Errorf("Open() = %q", data)
	}

	tests := []struct {
		name string
		path string
		code errors.Code
	}{
		{"missing", "org/foo/foo/2.0/foo-2.0.pom", errors.ErrCodeFileNotFound},
		{"traversal", "../secret", errors.ErrCodeInvalidPath},
		{"empty", "/", errors.ErrCodeInvalidPath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := l.Open(context.Background(), tt.path); !errors.Is(err, tt.code) {
				t.Errorf("Open(%q) error = %v, want %s", tt.path, err, tt.code)
			}
		})
	}
}

func TestNewLocalErrors(t *testing.T) {
	if _, err := NewLocal("local", filepath.Join(t.TempDir(), "missing")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("NewLocal(missing) error = %v", err)
	}

	dir := t.TempDir()
	writeRepo(t, dir, map[string]string{"file": "x"})
	if _, err := NewLocal("local", filepath.Join(dir, "file")); !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("NewLocal(file) error = %v", err)
	}
}

func TestLocalRel(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLocal("local", dir)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		path   string
		want   string
		wantOK bool
	}{
		{"inside", filepath.Join(l.Root(), "org", "foo", "foo"), "org/foo/foo", true},
		{"root", l.Root(), "", false},
		{"outside", filepath.Dir(l.Root()), "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := l.Rel(tt.path)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Rel(%q) = %q, %v; want %q, %v", tt.path, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
