package deps

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/cratecat/pkg/crates"
	"github.com/matzehuels/cratecat/pkg/errors"
)

func pkg(name, version string) PackageRecord {
	return PackageRecord{
		ID:      fmt.Sprintf("%s %s (registry+https://github.com/rust-lang/crates.io-index)", name, version),
		Name:    name,
		Version: version,
		Source:  "registry+https://github.com/rust-lang/crates.io-index",
	}
}

func local(name, version string) PackageRecord {
	return PackageRecord{
		ID:      fmt.Sprintf("%s %s (path+file:///src/%s)", name, version, name),
		Name:    name,
		Version: version,
	}
}

func edge(from, to PackageRecord, features []string, kinds ...KindAnnotation) ResolutionEdge {
	if len(kinds) == 0 {
		kinds = []KindAnnotation{{Kind: Normal}}
	}
	return ResolutionEdge{From: from.ID, To: to.ID, Kinds: kinds, Features: features}
}

func find(t *testing.T, catalog []*Dependency, name string, epoch crates.Epoch) *Dependency {
	t.Helper()
	for _, d := range catalog {
		if d.PackageName == name && d.Epoch == epoch {
			return d
		}
	}
	t.Fatalf("no catalog entry for %s@%s", name, epoch)
	return nil
}

func TestCollect_Empty(t *testing.T) {
	for name, doc := range map[string]*Document{
		"nil":      nil,
		"empty":    {},
		"no edges": {Packages: []PackageRecord{local("root", "0.1.0")}},
	} {
		t.Run(name, func(t *testing.T) {
			catalog, err := Collect(doc, Options{})
			if err != nil {
				t.Fatalf("Collect error: %v", err)
			}
			if catalog == nil || len(catalog) != 0 {
				t.Errorf("Collect = %v, want empty non-nil catalog", catalog)
			}
		})
	}
}

func TestCollect_UnionLaw(t *testing.T) {
	root, other, p := local("root", "0.1.0"), pkg("other", "1.0.0"), pkg("p", "1.2.0")
	doc := &Document{
		Packages: []PackageRecord{root, other, p},
		Edges: []ResolutionEdge{
			edge(root, other, nil),
			edge(root, p, []string{"a", "b"}),
			edge(other, p, []string{"c", "b"}),
		},
	}

	catalog, err := Collect(doc, Options{})
	if err != nil {
		t.Fatalf("Collect error: %v", err)
	}

	got := find(t, catalog, "p", crates.Major(1)).Kind(Normal).Features
	if want := []string{"a", "b", "c"}; !slices.Equal(got, want) {
		t.Errorf("features = %v, want %v", got, want)
	}
}

func TestCollect_CrossKindIndependence(t *testing.T) {
	root, asserts := local("root", "0.1.0"), pkg("more-asserts", "0.3.1")
	doc := &Document{
		Packages: []PackageRecord{root, asserts},
		Edges:    []ResolutionEdge{edge(root, asserts, nil, KindAnnotation{Kind: Development})},
	}

	catalog, err := Collect(doc, Options{})
	if err != nil {
		t.Fatalf("Collect error: %v", err)
	}

	d := find(t, catalog, "more-asserts", crates.Minor(3))
	if d.Kind(Normal) != nil || d.Kind(Build) != nil {
		t.Errorf("dev-only dependency has kinds %v", d.Kinds())
	}
	if info := d.Kind(Development); info == nil || info.Features == nil || len(info.Features) != 0 {
		t.Errorf("Development info = %+v, want empty non-nil features", info)
	}
	if !slices.Equal(d.Kinds(), []DependencyKind{Development}) {
		t.Errorf("Kinds() = %v, want [dev]", d.Kinds())
	}
}

func TestCollect_DiamondCollapsing(t *testing.T) {
	root := local("root", "0.1.0")
	left, right := pkg("left", "1.0.0"), pkg("right", "2.3.0")
	shared := pkg("shared", "1.4.2")
	doc := &Document{
		Packages: []PackageRecord{root, left, right, shared},
		Edges: []ResolutionEdge{
			edge(root, left, nil),
			edge(root, right, nil),
			edge(left, shared, []string{"std"}),
			edge(right, shared, []string{"alloc"}),
		},
	}

	catalog, err := Collect(doc, Options{})
	if err != nil {
		t.Fatalf("Collect error: %v", err)
	}

	count := 0
	for _, d := range catalog {
		if d.PackageName == "shared" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("found %d entries for shared, want 1", count)
	}
	got := find(t, catalog, "shared", crates.Major(1)).Kind(Normal).Features
	if want := []string{"alloc", "std"}; !slices.Equal(got, want) {
		t.Errorf("features = %v, want %v", got, want)
	}
}

func TestCollect_DistinctEpochsCoexist(t *testing.T) {
	root, old, cur := local("root", "0.1.0"), pkg("rand", "0.7.3"), pkg("rand", "0.8.5")
	doc := &Document{
		Packages: []PackageRecord{root, cur, old},
		Edges: []ResolutionEdge{
			edge(root, cur, []string{"std"}),
			edge(root, old, nil, KindAnnotation{Kind: Development}),
		},
	}

	catalog, err := Collect(doc, Options{})
	if err != nil {
		t.Fatalf("Collect error: %v", err)
	}
	if len(catalog) != 2 {
		t.Fatalf("len(catalog) = %d, want 2", len(catalog))
	}
	if catalog[0].Epoch != crates.Minor(7) || catalog[1].Epoch != crates.Minor(8) {
		t.Errorf("epochs = %v, %v; want v0_7, v0_8", catalog[0].Epoch, catalog[1].Epoch)
	}
	if catalog[0].Version != "0.7.3" || catalog[1].Version != "0.8.5" {
		t.Errorf("versions = %s, %s", catalog[0].Version, catalog[1].Version)
	}
}

func TestCollect_ConflictingVersions(t *testing.T) {
	root, a, b := local("root", "0.1.0"), pkg("syn", "1.0.100"), pkg("syn", "1.0.109")
	doc := &Document{
		Packages: []PackageRecord{root, a, b},
		Edges: []ResolutionEdge{
			edge(root, a, nil),
			edge(root, b, nil),
		},
	}

	catalog, err := Collect(doc, Options{})
	if err == nil {
		t.Fatal("Collect succeeded, want CONFLICTING_VERSIONS")
	}
	if !errors.Is(err, errors.ErrCodeConflictingVersions) {
		t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeConflictingVersions)
	}
	if catalog != nil {
		t.Errorf("catalog = %v, want nil on error", catalog)
	}
	for _, v := range []string{"1.0.100", "1.0.109"} {
		if !strings.Contains(err.Error(), v) {
			t.Errorf("error %q does not mention %s", err, v)
		}
	}
}

// A registry copy and a git copy of the same version still conflict; the
// error has to say which packages collided.
func TestCollect_ConflictNamesBothPackages(t *testing.T) {
	root, reg := local("root", "0.1.0"), pkg("a", "1.2.3")
	git := PackageRecord{
		ID:      "a 1.2.3 (git+https://github.com/example/a#0123abcd)",
		Name:    "a",
		Version: "1.2.3",
		Source:  "git+https://github.com/example/a#0123abcd",
	}
	doc := &Document{
		Packages: []PackageRecord{root, reg, git},
		Edges:    []ResolutionEdge{edge(root, reg, nil), edge(root, git, nil)},
	}

	_, err := Collect(doc, Options{})
	if !errors.Is(err, errors.ErrCodeConflictingVersions) {
		t.Fatalf("err = %v, want CONFLICTING_VERSIONS", err)
	}
	for _, id := range []string{reg.ID, git.ID} {
		if !strings.Contains(err.Error(), id) {
			t.Errorf("error %q does not name package %q", err, id)
		}
	}
}

// A 0.0.z pre-release is its own bucket, apart from the release.
func TestCollect_ZeroZeroPrereleaseIsSeparate(t *testing.T) {
	root, rel, pre := local("root", "0.1.0"), pkg("tiny", "0.0.1"), pkg("tiny", "0.0.1-alpha")
	doc := &Document{
		Packages: []PackageRecord{root, rel, pre},
		Edges:    []ResolutionEdge{edge(root, rel, nil), edge(root, pre, nil)},
	}

	catalog, err := Collect(doc, Options{})
	if err != nil {
		t.Fatalf("Collect error: %v", err)
	}
	if len(catalog) != 2 {
		t.Fatalf("len(catalog) = %d, want 2", len(catalog))
	}
	if catalog[0].Epoch != crates.PrePatch(1, "alpha") || catalog[1].Epoch != crates.Patch(1) {
		t.Errorf("epochs = %s, %s; want v0_0_1-alpha, v0_0_1", catalog[0].Epoch, catalog[1].Epoch)
	}
}

// 0.0.z releases never share a bucket, so two of them are not a conflict.
func TestCollect_ZeroZeroVersionsAreSeparate(t *testing.T) {
	root, a, b := local("root", "0.1.0"), pkg("tiny", "0.0.1"), pkg("tiny", "0.0.2")
	doc := &Document{
		Packages: []PackageRecord{root, a, b},
		Edges:    []ResolutionEdge{edge(root, a, nil), edge(root, b, nil)},
	}

	catalog, err := Collect(doc, Options{})
	if err != nil {
		t.Fatalf("Collect error: %v", err)
	}
	if len(catalog) != 2 {
		t.Fatalf("len(catalog) = %d, want 2", len(catalog))
	}
	find(t, catalog, "tiny", crates.Patch(1))
	find(t, catalog, "tiny", crates.Patch(2))
}

func TestCollect_MalformedVersion(t *testing.T) {
	root, bad := local("root", "0.1.0"), pkg("bad", "1.0")
	doc := &Document{
		Packages: []PackageRecord{root, bad},
		Edges:    []ResolutionEdge{edge(root, bad, nil)},
	}

	catalog, err := Collect(doc, Options{})
	if !errors.Is(err, errors.ErrCodeMalformedVersion) {
		t.Fatalf("err = %v, want MALFORMED_VERSION", err)
	}
	if catalog != nil {
		t.Errorf("catalog = %v, want nil on error", catalog)
	}
	if !strings.Contains(err.Error(), bad.ID) {
		t.Errorf("error %q does not name package %q", err, bad.ID)
	}
}

// Versions of packages nobody depends on are never classified.
func TestCollect_UntargetedVersionsIgnored(t *testing.T) {
	root := PackageRecord{ID: "root", Name: "root", Version: "not-a-version"}
	dep := pkg("dep", "1.0.0")
	doc := &Document{
		Packages: []PackageRecord{root, dep},
		Edges:    []ResolutionEdge{edge(root, dep, nil)},
	}

	if _, err := Collect(doc, Options{}); err != nil {
		t.Fatalf("Collect error: %v", err)
	}
}

func TestCollect_UnknownPackage(t *testing.T) {
	root := local("root", "0.1.0")
	doc := &Document{
		Packages: []PackageRecord{root},
		Edges:    []ResolutionEdge{{From: root.ID, To: "ghost 1.0.0", Kinds: []KindAnnotation{{Kind: Normal}}}},
	}

	_, err := Collect(doc, Options{})
	if !errors.Is(err, errors.ErrCodeInvalidMetadata) {
		t.Fatalf("err = %v, want INVALID_METADATA", err)
	}
}

func TestCollect_DuplicatePackageID(t *testing.T) {
	root, dep := local("root", "0.1.0"), pkg("dep", "1.0.0")
	doc := &Document{
		Packages: []PackageRecord{root, dep, dep},
		Edges:    []ResolutionEdge{edge(root, dep, nil)},
	}

	_, err := Collect(doc, Options{})
	if !errors.Is(err, errors.ErrCodeInvalidMetadata) {
		t.Fatalf("err = %v, want INVALID_METADATA", err)
	}
}

func TestCollect_MultiKindEdge(t *testing.T) {
	root, lib := local("root", "0.1.0"), pkg("log", "0.4.17")
	doc := &Document{
		Packages: []PackageRecord{root, lib},
		Edges: []ResolutionEdge{
			edge(root, lib, []string{"std"}, KindAnnotation{Kind: Normal}, KindAnnotation{Kind: Development}),
			edge(root, lib, []string{"serde"}, KindAnnotation{Kind: Build}),
		},
	}

	catalog, err := Collect(doc, Options{})
	if err != nil {
		t.Fatalf("Collect error: %v", err)
	}
	d := find(t, catalog, "log", crates.Minor(4))

	for kind, want := range map[DependencyKind][]string{
		Normal:      {"std"},
		Development: {"std"},
		Build:       {"serde"},
	} {
		info := d.Kind(kind)
		if info == nil {
			t.Errorf("missing %s info", kind)
			continue
		}
		if !slices.Equal(info.Features, want) {
			t.Errorf("%s features = %v, want %v", kind, info.Features, want)
		}
	}
}

func TestCollect_Platforms(t *testing.T) {
	root := local("root", "0.1.0")
	winapi, libc := pkg("winapi", "0.3.9"), pkg("libc", "0.2.139")
	mid := pkg("mid", "1.0.0")
	doc := &Document{
		Packages: []PackageRecord{root, winapi, libc, mid},
		Edges: []ResolutionEdge{
			edge(root, mid, nil),
			edge(root, winapi, nil, KindAnnotation{Kind: Normal, Target: "cfg(windows)"}),
			edge(mid, winapi, nil, KindAnnotation{Kind: Normal, Target: "x86_64-pc-windows-msvc"}),
			edge(root, libc, nil, KindAnnotation{Kind: Normal, Target: "cfg(unix)"}),
			edge(mid, libc, nil, KindAnnotation{Kind: Normal}),
		},
	}

	catalog, err := Collect(doc, Options{})
	if err != nil {
		t.Fatalf("Collect error: %v", err)
	}

	got := find(t, catalog, "winapi", crates.Minor(3)).Kind(Normal).Platforms
	if want := []string{"cfg(windows)", "x86_64-pc-windows-msvc"}; !slices.Equal(got, want) {
		t.Errorf("winapi platforms = %v, want %v", got, want)
	}
	if got := find(t, catalog, "libc", crates.Minor(2)).Kind(Normal).Platforms; got != nil {
		t.Errorf("libc platforms = %v, want nil (unconditional)", got)
	}
}

func TestCollect_Workspace(t *testing.T) {
	app, util, dep := local("app", "0.1.0"), local("util", "0.1.0"), pkg("dep", "1.0.0")
	doc := &Document{
		Packages:         []PackageRecord{app, util, dep},
		WorkspaceMembers: []string{app.ID, util.ID},
		Edges: []ResolutionEdge{
			edge(app, util, nil),
			edge(util, dep, nil),
		},
	}

	catalog, err := Collect(doc, Options{})
	if err != nil {
		t.Fatalf("Collect error: %v", err)
	}
	if len(catalog) != 1 || catalog[0].PackageName != "dep" {
		t.Fatalf("catalog = %v, want only dep", keys(catalog))
	}

	catalog, err = Collect(doc, Options{IncludeWorkspace: true})
	if err != nil {
		t.Fatalf("Collect error: %v", err)
	}
	if len(catalog) != 2 {
		t.Fatalf("catalog = %v, want dep and util", keys(catalog))
	}
	u := find(t, catalog, "util", crates.Minor(1))
	if !u.Local {
		t.Error("util should be local")
	}
	if got := u.Dependencies[Normal]; !slices.Equal(got, []Key{{Name: "dep", Epoch: crates.Major(1)}}) {
		t.Errorf("util dependencies = %v", got)
	}
}

func TestCollect_KindFilter(t *testing.T) {
	root := local("root", "0.1.0")
	serde, cc, asserts := pkg("serde", "1.0.152"), pkg("cc", "1.0.79"), pkg("more-asserts", "0.3.1")
	doc := &Document{
		Packages: []PackageRecord{root, serde, cc, asserts},
		Edges: []ResolutionEdge{
			edge(root, serde, []string{"std"}),
			edge(root, cc, nil, KindAnnotation{Kind: Build}),
			edge(root, asserts, nil, KindAnnotation{Kind: Development}),
		},
	}

	catalog, err := Collect(doc, Options{Kinds: []DependencyKind{Normal, Build}})
	if err != nil {
		t.Fatalf("Collect error: %v", err)
	}
	if got := keys(catalog); !slices.Equal(got, []string{"cc@v1", "serde@v1"}) {
		t.Errorf("catalog = %v, want [cc@v1 serde@v1]", got)
	}
}

func TestCollect_Dependencies(t *testing.T) {
	root := local("root", "0.1.0")
	serde, derive, cc := pkg("serde", "1.0.152"), pkg("serde_derive", "1.0.152"), pkg("cc", "1.0.79")
	doc := &Document{
		Packages: []PackageRecord{root, serde, derive, cc},
		Edges: []ResolutionEdge{
			edge(root, serde, []string{"derive"}),
			edge(serde, derive, []string{"default"}),
			edge(serde, cc, nil, KindAnnotation{Kind: Build}),
		},
	}

	catalog, err := Collect(doc, Options{})
	if err != nil {
		t.Fatalf("Collect error: %v", err)
	}

	s := find(t, catalog, "serde", crates.Major(1))
	if got := s.Dependencies[Normal]; !slices.Equal(got, []Key{{Name: "serde_derive", Epoch: crates.Major(1)}}) {
		t.Errorf("serde normal deps = %v", got)
	}
	if got := s.Dependencies[Build]; !slices.Equal(got, []Key{{Name: "cc", Epoch: crates.Major(1)}}) {
		t.Errorf("serde build deps = %v", got)
	}
	if got := find(t, catalog, "cc", crates.Major(1)).Dependencies; len(got) != 0 {
		t.Errorf("cc deps = %v, want none", got)
	}
}

func TestCollect_Idempotent(t *testing.T) {
	doc := diamondDocument()

	first, err := Collect(doc, Options{})
	if err != nil {
		t.Fatal(err)
	}
	second, err := Collect(doc, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("collecting the same document twice produced different catalogs")
	}
}

func TestCollect_EdgeOrderIndependent(t *testing.T) {
	doc := diamondDocument()
	want, err := Collect(doc, Options{})
	if err != nil {
		t.Fatal(err)
	}

	reversed := *doc
	reversed.Edges = slices.Clone(doc.Edges)
	slices.Reverse(reversed.Edges)
	got, err := Collect(&reversed, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Error("edge order changed the catalog")
	}
}

func TestCollect_Logger(t *testing.T) {
	var lines []string
	opts := Options{Logger: func(format string, args ...any) {
		lines = append(lines, fmt.Sprintf(format, args...))
	}}
	if _, err := Collect(diamondDocument(), opts); err != nil {
		t.Fatal(err)
	}
	if len(lines) == 0 || !strings.Contains(lines[len(lines)-1], "collected 3 dependencies") {
		t.Errorf("log lines = %v", lines)
	}
}

func diamondDocument() *Document {
	root := local("root", "0.1.0")
	a, b, c := pkg("a", "1.0.0"), pkg("b", "0.2.0"), pkg("c", "3.1.4")
	return &Document{
		Packages:         []PackageRecord{root, a, b, c},
		WorkspaceMembers: []string{root.ID},
		Root:             root.ID,
		Edges: []ResolutionEdge{
			edge(root, a, []string{"x"}),
			edge(root, b, []string{"y"}, KindAnnotation{Kind: Normal}, KindAnnotation{Kind: Development}),
			edge(a, c, []string{"p", "q"}),
			edge(b, c, []string{"q", "r"}, KindAnnotation{Kind: Normal, Target: "cfg(unix)"}),
			edge(root, c, nil, KindAnnotation{Kind: Build}),
		},
	}
}

func keys(catalog []*Dependency) []string {
	out := make([]string, len(catalog))
	for i, d := range catalog {
		out[i] = d.Key().String()
	}
	return out
}
