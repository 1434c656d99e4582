package site

import (
	"bytes"
	"html/template"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/alecthomas/chroma"
	formatterHtml "github.com/alecthomas/chroma/formatters/html"
	"github.com/alecthomas/chroma/lexers"

	"sr.ht/~erock/pgit/internal/markdown"
)

// converts contents of files in git tree to pretty formatted code
func parseText(filename string, text string, style *chroma.Style) (string, error) {
	formatter := formatterHtml.New(
		formatterHtml.WithLineNumbers(true),
		formatterHtml.LinkableLineNumbers(true, "l"),
		formatterHtml.WithClasses(true),
	)
	lexer := lexers.Match(filename)
	if lexer == nil {
		lexer = lexers.Analyse(text)
	}
	if lexer == nil {
		lexer = lexers.Get("plaintext")
	}
	iterator, err := lexer.Tokenise(nil, text)
	if err != nil {
		return text, err
	}
	var buf bytes.Buffer
	err = formatter.Format(&buf, style, iterator)
	if err != nil {
		return text, err
	}
	return buf.String(), nil
}

// isText reports whether a significant prefix of s looks like correct UTF-8;
// that is, if it is likely that s is human-readable text.
func isText(s string) bool {
	const max = 1024 // at least utf8.UTFMax
	if len(s) > max {
		s = s[0:max]
	}
	for i, c := range s {
		if i+utf8.UTFMax > len(s) {
			// last char may be incomplete - ignore
			break
		}
		if c == 0xFFFD || c < ' ' && c != '\n' && c != '\t' && c != '\f' && c != '\r' {
			// decoding error or control character - not a text file
			return false
		}
	}
	return true
}

// isTextFile reports whether the start of a file looks like text. Files
// git would diff as binary (NUL in the first 8000 bytes) never are.
func isTextFile(b []byte) bool {
	probe := b
	if len(probe) > 8000 {
		probe = probe[:8000]
	}
	if bytes.IndexByte(probe, 0) >= 0 {
		return false
	}
	return isText(string(probe))
}

// countLines counts lines the way they are numbered: a final line without
// a newline still counts.
func countLines(b []byte) int {
	n := bytes.Count(b, []byte{'\n'})
	if len(b) > 0 && b[len(b)-1] != '\n' {
		n++
	}
	return n
}

func isMarkdown(p string) bool {
	return markdown.IsMarkdownFile(p)
}

func hasDiagram(contents template.HTML) bool {
	return strings.Contains(string(contents), `<pre class="mermaid">`)
}

// fileMode renders a git file mode like ls -l does.
func fileMode(m uint32) string {
	mode := []byte("----------")
	switch m & 0o170000 {
	case 0o100000:
		mode[0] = '-'
	case 0o060000:
		mode[0] = 'b'
	case 0o020000:
		mode[0] = 'c'
	case 0o040000:
		mode[0] = 'd'
	case 0o010000:
		mode[0] = 'p'
	case 0o120000:
		mode[0] = 'l'
	case 0o140000:
		mode[0] = 's'
	default:
		mode[0] = '?'
	}

	const rwx = "rwxrwxrwx"
	for i := 0; i < 9; i++ {
		if m&(1<<uint(8-i)) != 0 {
			mode[i+1] = rwx[i]
		}
	}
	return string(mode)
}

var iconsByExt = map[string]string{}

func init() {
	groups := map[string][]string{
		"code":     {"c", "h", "cpp", "cc", "cxx", "java", "py", "js", "ts", "go", "rs", "rb"},
		"markdown": {"md", "markdown"},
		"config":   {"json", "xml", "yaml", "yml", "toml", "conf", "cfg", "ini"},
		"image":    {"png", "jpg", "jpeg", "gif", "svg", "webp"},
	}
	for icon, exts := range groups {
		for _, ext := range exts {
			iconsByExt[ext] = icon
		}
	}
}

// fileIcon picks the icon class for a file name.
func fileIcon(name string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
	if icon, ok := iconsByExt[ext]; ok {
		return icon
	}
	return "file"
}
