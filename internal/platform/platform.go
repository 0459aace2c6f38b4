// Package platform resolves the filesystem contract of spec §6: the
// installation root's module/, platform/<name>/, and cpu/<name>/
// directories, plus the platform-declared BIN_EXTENSION command and
// VAR_HEAP region consumed by package alloc.
//
// Grounded on sentra's module.ModuleLoader: the search-path-plus-cache
// shape survives, but the lookup targets are Atalan's fixed
// three-directory layout instead of a script import search path, and
// there is no bytecode compilation step — a platform "module" here is
// a set of declarations (constants, emission rules, the VAR_HEAP
// region), not executable code.
package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/mod/semver"

	"atalan/internal/alloc"
	"atalan/internal/typesys"
)

// minSchemaVersion is the oldest platform-schema version this compiler
// understands. A platform module declaring an older PLATFORM_VERSION is
// rejected with Platform-not-supported (spec §7) rather than silently
// misinterpreted.
const minSchemaVersion = "v1.0.0"

// Descriptor is one resolved platform/CPU pair: the directories to
// search for source modules, plus the declarations the platform module
// itself makes (spec §6: "a BIN_EXTENSION variable defined by the
// platform module").
type Descriptor struct {
	Name    string
	CPU     string
	Root    string // installation root, overridable with -I
	AdrSize int    // platform address size in bytes; 0 means "use the default"

	BinExtension    string // the assembler invocation command string
	PlatformVersion string
	VarHeap         alloc.Range
}

// ModulePath returns the platform-independent module directory.
func (d *Descriptor) ModulePath() string {
	return filepath.Join(d.Root, "module")
}

// PlatformPath returns this descriptor's platform-specific directory.
func (d *Descriptor) PlatformPath() string {
	return filepath.Join(d.Root, "platform", d.Name)
}

// CPUPath returns this descriptor's CPU-specific directory.
func (d *Descriptor) CPUPath() string {
	return filepath.Join(d.Root, "cpu", d.CPU)
}

// Apply installs d's address-size override into package typesys, which
// TypeSize consults for the ADR variant (spec §4.2: "a platform address
// size (default 2)"). A zero AdrSize leaves typesys's built-in default
// in place.
func (d *Descriptor) Apply() {
	if d.AdrSize > 0 {
		typesys.AdrSize = d.AdrSize
	}
}

// SearchPath returns the three directories searched for a source module,
// in priority order: platform-specific, CPU-specific, then the shared
// platform-independent module tree (spec §6's layout, most to least
// specific).
func (d *Descriptor) SearchPath() []string {
	return []string{d.PlatformPath(), d.CPUPath(), d.ModulePath()}
}

// Loader resolves and caches platform descriptors by name, matching
// sentra's ModuleLoader caching discipline (spec §5: the cell pool and
// friends are process-wide singletons read by a single-threaded driver,
// so a simple mutex-guarded map is enough — there is never concurrent
// compilation within one process).
type Loader struct {
	root string
	mu   sync.Mutex
	seen map[string]*Descriptor
}

// NewLoader creates a Loader rooted at root (the installation root,
// overridden by the -I flag per spec §6).
func NewLoader(root string) *Loader {
	return &Loader{root: root, seen: make(map[string]*Descriptor)}
}

// Load resolves platform name on cpu, reading its declarations from
// <root>/platform/<name>/platform.atl (spec §6's filesystem layout).
// Declarations are parsed as simple NAME = VALUE lines by readDecls; the
// parser proper (external to this package per spec §6) is responsible
// for everything inside an .atl source body.
func (l *Loader) Load(name, cpu string) (*Descriptor, error) {
	key := name + "/" + cpu
	l.mu.Lock()
	defer l.mu.Unlock()
	if d, ok := l.seen[key]; ok {
		return d, nil
	}

	d := &Descriptor{Name: name, CPU: cpu, Root: l.root}
	declFile := filepath.Join(d.PlatformPath(), "platform.atl")
	decls, err := readDecls(declFile)
	if err != nil {
		return nil, fmt.Errorf("platform %q: %w", name, err)
	}
	d.BinExtension = decls["BIN_EXTENSION"]
	d.PlatformVersion = decls["PLATFORM_VERSION"]
	varHeap, err := parseVarHeap(decls["VAR_HEAP"])
	if err != nil {
		return nil, fmt.Errorf("platform %q: %w", name, err)
	}
	d.VarHeap = varHeap

	if d.PlatformVersion != "" {
		if err := checkSchemaVersion(d.PlatformVersion); err != nil {
			return nil, fmt.Errorf("platform %q: %w", name, err)
		}
	}

	l.seen[key] = d
	return d, nil
}

// checkSchemaVersion rejects a platform module declaring a
// PLATFORM_VERSION older than minSchemaVersion.
func checkSchemaVersion(declared string) error {
	v := declared
	if v[0] != 'v' {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return fmt.Errorf("malformed PLATFORM_VERSION %q", declared)
	}
	if semver.Compare(v, minSchemaVersion) < 0 {
		return fmt.Errorf("PLATFORM_VERSION %q predates the minimum supported schema %q", declared, minSchemaVersion)
	}
	return nil
}

// readDecls reads a flat "NAME = value" declaration file. Missing files
// yield an empty map rather than an error — a platform with no such
// declarations simply leaves BinExtension/PlatformVersion blank.
func readDecls(path string) (map[string]string, error) {
	out := map[string]string{}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return nil, err
	}
	parseDeclLines(string(data), out)
	return out, nil
}
