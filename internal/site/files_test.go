package site

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
	"go.uber.org/zap/zaptest"

	"sr.ht/~erock/pgit/internal/vcs"
)

func renderRows(t *testing.T, fs afero.Fs, tree vcs.Tree) []*TreeRow {
	t.Helper()
	g, err := New(testConfig(), newFakeSource(0), fs, zaptest.NewLogger(t).Sugar())
	if err != nil {
		t.Fatal(err)
	}
	walk := &treeWalk{g: g}
	if err := g.renderTree(walk, tree, "", 0); err != nil {
		t.Fatal(err)
	}
	return walk.rows
}

func names(rows []*TreeRow) string {
	var out []string
	for _, r := range rows {
		out = append(out, r.Path)
	}
	return strings.Join(out, ",")
}

func TestRenderTreeOrder(t *testing.T) {
	tree := fakeTree{file("z", "z\n"), dir("b"), file("y", "y\n"), dir("a")}
	rows := renderRows(t, afero.NewMemMapFs(), tree)
	if got := names(rows); got != "b,a,z,y" {
		t.Fatalf("rows = %s, want b,a,z,y", got)
	}
}

func TestRenderTreeNested(t *testing.T) {
	tree := fakeTree{
		file("main.go", "package main\n\nfunc main() {}\n"),
		dir("docs",
			file("guide.md", "# Guide\n\nsee [api](api.md)\n"),
			dir("img", file("logo.png", "\x89PNG\r\n\x1a\n\x00\x00")),
		),
		submodule("vendor-lib"),
		file("empty", ""),
	}
	fs := afero.NewMemMapFs()
	rows := renderRows(t, fs, tree)

	want := []struct {
		path, parent string
		depth        int
		mode, size   string
		url          string
	}{
		{"docs", "", 0, "d---------", "-", ""},
		{"docs/img", "docs", 1, "d---------", "-", ""},
		{"docs/img/logo.png", "docs/img", 2, "-rw-r--r--", "10B", "file/docs/img/logo.png.html"},
		{"docs/guide.md", "docs", 1, "-rw-r--r--", "27B", "file/docs/guide.md.html"},
		{"main.go", "", 0, "-rw-r--r--", "3L", "file/main.go.html"},
		{"vendor-lib", "", 0, "m---------", "@", "file/.gitmodules.html"},
		{"empty", "", 0, "-rw-r--r--", "0B", "file/empty.html"},
	}
	if len(rows) != len(want) {
		t.Fatalf("got rows %s", names(rows))
	}
	for i, w := range want {
		r := rows[i]
		if r.Path != w.path || r.Parent != w.parent || r.Depth != w.depth ||
			r.Mode != w.mode || r.Size != w.size || r.URL != w.url {
			t.Errorf("row %d = %+v, want %+v", i, *r, w)
		}
	}

	guide := read(t, fs, "/out/file/docs/guide.md.html")
	for _, s := range []string{
		`<section class="panel markdown-body">`,
		`href="api.md.html"`,
		`href="../../style.css"`,
	} {
		if !strings.Contains(guide, s) {
			t.Errorf("guide.md page missing %q", s)
		}
	}
	if logo := read(t, fs, "/out/file/docs/img/logo.png.html"); !strings.Contains(logo, "Binary file.") {
		t.Error("binary file page does not say so")
	}
	if src := read(t, fs, "/out/file/main.go.html"); !strings.Contains(src, `id="l3"`) {
		t.Error("highlighted file has no linkable line numbers")
	}
	if exists(t, fs, "/out/file/vendor-lib.html") {
		t.Error("document written for a submodule")
	}
}

func TestFileMode(t *testing.T) {
	tests := map[uint32]string{
		0o100644: "-rw-r--r--",
		0o100755: "-rwxr-xr-x",
		0o120000: "l---------",
		0o040000: "d---------",
	}
	for m, want := range tests {
		if got := fileMode(m); got != want {
			t.Errorf("fileMode(%o) = %s, want %s", m, got, want)
		}
	}
}

func TestCountLines(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"a\n", 1},
		{"a\nb", 2},
		{"a\nb\n", 2},
		{"\n\n", 2},
	}
	for _, tt := range tests {
		if got := countLines([]byte(tt.in)); got != tt.want {
			t.Errorf("countLines(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestIsTextFile(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want bool
	}{
		{"ascii", []byte("hello\nworld\n"), true},
		{"utf8", []byte("héllo wörld ✓\n"), true},
		{"empty", nil, true},
		{"nul", []byte("abc\x00def"), false},
		{"control", []byte("abc\x01def and more text"), false},
		{"latin1", []byte("caf\xe9 au lait, s'il vous pla\xeet"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isTextFile(tt.in); got != tt.want {
				t.Errorf("isTextFile(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFileIcon(t *testing.T) {
	tests := map[string]string{
		"main.go":     "code",
		"README.MD":   "markdown",
		"config.yaml": "config",
		"logo.PNG":    "image",
		"Makefile":    "file",
		"notes.txt":   "file",
	}
	for name, want := range tests {
		if got := fileIcon(name); got != want {
			t.Errorf("fileIcon(%q) = %s, want %s", name, got, want)
		}
	}
}
