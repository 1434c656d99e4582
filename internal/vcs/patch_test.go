package vcs

import (
	"testing"
)

const sampleDiff = `:100644 100644 1111111111111111111111111111111111111111 2222222222222222222222222222222222222222 M	main.go
:000000 100644 0000000000000000000000000000000000000000 3333333333333333333333333333333333333333 A	docs/new file.md
:100644 000000 4444444444444444444444444444444444444444 0000000000000000000000000000000000000000 D	old.txt
:100644 100644 5555555555555555555555555555555555555555 5555555555555555555555555555555555555555 R100	a.txt	b.txt
:100644 100644 6666666666666666666666666666666666666666 6666666666666666666666666666666666666666 C100	lib/x.c	lib/y.c
:100644 100644 7777777777777777777777777777777777777777 8888888888888888888888888888888888888888 M	logo.png
:100644 120000 9999999999999999999999999999999999999999 aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa T	link

diff --git a/main.go b/main.go
index 1111111111111111111111111111111111111111..2222222222222222222222222222222222222222 100644
--- a/main.go
+++ b/main.go
@@ -1,4 +1,5 @@ package main
 package main
-
-func main() {}
+
+import "fmt"
+
+func main() { fmt.Println() }
@@ -10,2 +11,2 @@ func other() {
 	x := 1
-	y := 2
+	y := 3
diff --git a/docs/new file.md b/docs/new file.md
new file mode 100644
index 0000000000000000000000000000000000000000..3333333333333333333333333333333333333333
--- /dev/null
+++ b/docs/new file.md	
@@ -0,0 +1,2 @@
+# Title
+body
\ No newline at end of file
diff --git a/old.txt b/old.txt
deleted file mode 100644
index 4444444444444444444444444444444444444444..0000000000000000000000000000000000000000
--- a/old.txt
+++ /dev/null
@@ -1 +0,0 @@
-gone
diff --git a/a.txt b/b.txt
similarity index 100%
rename from a.txt
rename to b.txt
diff --git a/lib/x.c b/lib/y.c
similarity index 100%
copy from lib/x.c
copy to lib/y.c
diff --git a/logo.png b/logo.png
index 7777777777777777777777777777777777777777..8888888888888888888888888888888888888888 100644
Binary files a/logo.png and b/logo.png differ
diff --git a/link b/link
deleted file mode 100644
index 9999999999999999999999999999999999999999..0000000000000000000000000000000000000000
--- a/link
+++ /dev/null
@@ -1,2 +0,0 @@
-line one
-line two
diff --git a/link b/link
new file mode 120000
index 0000000000000000000000000000000000000000..aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa
--- /dev/null
+++ b/link
@@ -0,0 +1 @@
+target
\ No newline at end of file
`

func TestParsePatch(t *testing.T) {
	deltas, err := ParsePatch([]byte(sampleDiff))
	if err != nil {
		t.Fatalf("ParsePatch: %v", err)
	}

	want := []struct {
		status   Status
		oldPath  string
		newPath  string
		binary   bool
		hunks    int
		add, del int
	}{
		{StatusModified, "main.go", "main.go", false, 2, 5, 3},
		{StatusAdded, "docs/new file.md", "docs/new file.md", false, 1, 2, 0},
		{StatusDeleted, "old.txt", "old.txt", false, 1, 0, 1},
		{StatusRenamed, "a.txt", "b.txt", false, 0, 0, 0},
		{StatusCopied, "lib/x.c", "lib/y.c", false, 0, 0, 0},
		{StatusModified, "logo.png", "logo.png", true, 0, 0, 0},
		{StatusTypeChanged, "link", "link", false, 2, 1, 2},
	}
	if len(deltas) != len(want) {
		t.Fatalf("got %d deltas, want %d", len(deltas), len(want))
	}

	c := &Commit{ID: "abc"}
	c.SetDeltas(deltas)

	for i, w := range want {
		d := deltas[i]
		if d.Status != w.status || d.OldPath != w.oldPath || d.NewPath != w.newPath {
			t.Errorf("delta %d = %s %q -> %q, want %s %q -> %q",
				i, d.Status.Letter(), d.OldPath, d.NewPath, w.status.Letter(), w.oldPath, w.newPath)
		}
		if d.Binary != w.binary {
			t.Errorf("delta %d binary = %v, want %v", i, d.Binary, w.binary)
		}
		if len(d.Hunks) != w.hunks {
			t.Errorf("delta %d has %d hunks, want %d", i, len(d.Hunks), w.hunks)
		}
		if d.AddCount != w.add || d.DelCount != w.del {
			t.Errorf("delta %d counts = +%d -%d, want +%d -%d", i, d.AddCount, d.DelCount, w.add, w.del)
		}
	}

	if c.FileCount != len(want) {
		t.Errorf("FileCount = %d, want %d", c.FileCount, len(want))
	}
	if c.AddCount != 8 || c.DelCount != 6 {
		t.Errorf("commit counts = +%d -%d, want +8 -6", c.AddCount, c.DelCount)
	}
}

func TestParsePatchLineNumbers(t *testing.T) {
	deltas, err := ParsePatch([]byte(sampleDiff))
	if err != nil {
		t.Fatalf("ParsePatch: %v", err)
	}
	h := deltas[0].Hunks[1]
	if h.Header != "@@ -10,2 +11,2 @@ func other() {" {
		t.Errorf("header = %q", h.Header)
	}
	want := []struct {
		kind     LineKind
		old, new int
		content  string
	}{
		{LineContext, 10, 11, "\tx := 1\n"},
		{LineDeleted, 11, -1, "\ty := 2\n"},
		{LineAdded, -1, 12, "\ty := 3\n"},
	}
	if len(h.Lines) != len(want) {
		t.Fatalf("got %d lines, want %d", len(h.Lines), len(want))
	}
	for i, w := range want {
		l := h.Lines[i]
		if l.Kind() != w.kind || l.OldLine != w.old || l.NewLine != w.new || l.Content != w.content {
			t.Errorf("line %d = {%v %d %d %q}, want {%v %d %d %q}",
				i, l.Kind(), l.OldLine, l.NewLine, l.Content, w.kind, w.old, w.new, w.content)
		}
	}

	// "\ No newline at end of file" flags the line before it
	added := deltas[1].Hunks[0].Lines
	last := added[len(added)-1]
	if last.Content != "body\n" || !last.NoNewline {
		t.Errorf("last line = {%q %v}, want {%q true}", last.Content, last.NoNewline, "body\n")
	}
	if first := added[0]; first.NoNewline {
		t.Errorf("line %q flagged without newline", first.Content)
	}
	if h := deltas[1].Hunks[0].Header; h != "@@ -0,0 +1,2 @@" {
		t.Errorf("header = %q", h)
	}
	if h := deltas[2].Hunks[0].Header; h != "@@ -1 +0,0 @@" {
		t.Errorf("header = %q", h)
	}
}

func TestParsePatchCountsSumToCommit(t *testing.T) {
	deltas, err := ParsePatch([]byte(sampleDiff))
	if err != nil {
		t.Fatalf("ParsePatch: %v", err)
	}
	c := &Commit{}
	c.SetDeltas(deltas)

	var add, del int
	for _, d := range c.Deltas {
		add += d.AddCount
		del += d.DelCount
	}
	if add != c.AddCount || del != c.DelCount {
		t.Errorf("sum of deltas = +%d -%d, commit = +%d -%d", add, del, c.AddCount, c.DelCount)
	}
}

func TestParsePatchBinaryNotCounted(t *testing.T) {
	out := `:100644 100644 1111111111111111111111111111111111111111 2222222222222222222222222222222222222222 M	blob.bin

diff --git a/blob.bin b/blob.bin
index 1111111111111111111111111111111111111111..2222222222222222222222222222222222222222 100644
Binary files a/blob.bin and b/blob.bin differ
`
	deltas, err := ParsePatch([]byte(out))
	if err != nil {
		t.Fatalf("ParsePatch: %v", err)
	}
	c := &Commit{}
	c.SetDeltas(deltas)
	if len(c.Deltas) != 1 || !c.Deltas[0].Binary {
		t.Fatalf("expected one binary delta, got %+v", c.Deltas)
	}
	if c.AddCount != 0 || c.DelCount != 0 || c.FileCount != 1 {
		t.Errorf("counts = +%d -%d files %d, want +0 -0 files 1", c.AddCount, c.DelCount, c.FileCount)
	}
}

func TestParsePatchQuotedPaths(t *testing.T) {
	out := ":000000 100644 0000000000000000000000000000000000000000 1111111111111111111111111111111111111111 A\t\"tab\\there.txt\"\n" +
		"\n" +
		"diff --git \"a/tab\\there.txt\" \"b/tab\\there.txt\"\n" +
		"new file mode 100644\n" +
		"--- /dev/null\n" +
		"+++ \"b/tab\\there.txt\"\n" +
		"@@ -0,0 +1 @@\n" +
		"+x\n"
	deltas, err := ParsePatch([]byte(out))
	if err != nil {
		t.Fatalf("ParsePatch: %v", err)
	}
	if len(deltas) != 1 {
		t.Fatalf("got %d deltas, want 1", len(deltas))
	}
	if deltas[0].NewPath != "tab\there.txt" {
		t.Errorf("path = %q", deltas[0].NewPath)
	}
	if len(deltas[0].Hunks) != 1 {
		t.Errorf("got %d hunks, want 1", len(deltas[0].Hunks))
	}
}

func TestParsePatchEmpty(t *testing.T) {
	deltas, err := ParsePatch(nil)
	if err != nil {
		t.Fatalf("ParsePatch(nil): %v", err)
	}
	if len(deltas) != 0 {
		t.Errorf("got %d deltas, want 0", len(deltas))
	}
}

func TestParsePatchErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "short raw record", in: ":100644 100644 M\tx\n"},
		{name: "unknown status", in: ":100644 100644 1111111111111111111111111111111111111111 2222222222222222222222222222222222222222 X\tx\n"},
		{name: "rename without destination", in: ":100644 100644 1111111111111111111111111111111111111111 2222222222222222222222222222222222222222 R100\tx\n"},
		{name: "bad hunk header", in: "diff --git a/x b/x\n@@ -a +b @@\n"},
		{name: "garbage in hunk", in: "diff --git a/x b/x\n@@ -1 +1 @@\n?what\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParsePatch([]byte(tt.in)); err == nil {
				t.Errorf("ParsePatch(%q): expected error", tt.in)
			}
		})
	}
}
