// Package testsupport provides fixture-unpacking helpers shared by this
// module's tests: compiler pipeline fixtures (a source file, a matching
// platform/CPU declaration pair, optional .asm includes) are packed as
// a single txtar archive per spec §8 scenario, then unpacked into a
// temp directory at test time.
//
// Grounded on golang.org/x/tools/txtar's archive format — already a
// dependency of this module's tooling surface — rather than checking in
// one directory tree per fixture.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/tools/txtar"
)

// Unpack writes archive's files beneath a fresh temp directory (deleted
// automatically at the end of t) and returns that directory's path.
func Unpack(t *testing.T, archive string) string {
	t.Helper()
	a := txtar.Parse([]byte(archive))
	dir := t.TempDir()
	for _, f := range a.Files {
		full := filepath.Join(dir, f.Name)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("testsupport: %v", err)
		}
		if err := os.WriteFile(full, f.Data, 0o644); err != nil {
			t.Fatalf("testsupport: %v", err)
		}
	}
	return dir
}
