// Package canvas maintains multi-file code workspaces parsed out of generated
// code blobs, with snapshot-based undo history and HTML preview synthesis.
package canvas

import (
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// File is one named virtual file inside a canvas session.
type File struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Path     string `json:"path"`
	Content  string `json:"content"`
	Language string `json:"language"`
}

// markerPattern matches comment-style filename annotations that delimit files
// inside a combined code blob, e.g. "// filename: App.jsx" or "# path: main.py".
var markerPattern = regexp.MustCompile(`(?m)^[ \t]*(?://|#|<!--)[ \t]*(?:filename|path):[ \t]*([^\s>]+)[ \t]*(?:-->)?[ \t]*$`)

var defaultFileNames = map[string]string{
	"html":       "index.html",
	"htm":        "index.html",
	"css":        "styles.css",
	"scss":       "styles.scss",
	"javascript": "app.js",
	"js":         "app.js",
	"jsx":        "App.jsx",
	"tsx":        "App.tsx",
	"typescript": "index.ts",
	"ts":         "index.ts",
	"python":     "main.py",
	"py":         "main.py",
	"json":       "data.json",
	"sql":        "query.sql",
	"bash":       "script.sh",
	"sh":         "script.sh",
}

var extLanguages = map[string]string{
	".html": "html",
	".htm":  "html",
	".css":  "css",
	".scss": "scss",
	".js":   "javascript",
	".mjs":  "javascript",
	".jsx":  "jsx",
	".ts":   "typescript",
	".tsx":  "tsx",
	".py":   "python",
	".json": "json",
	".sql":  "sql",
	".sh":   "bash",
	".md":   "markdown",
}

// ParseFiles splits a raw code blob into virtual files on inline filename
// markers. A blob without markers becomes a single file named from the
// language hint.
func ParseFiles(raw, languageHint string) []File {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	markers := markerPattern.FindAllStringSubmatchIndex(raw, -1)
	if len(markers) == 0 {
		content := strings.Trim(raw, "\n")
		if strings.TrimSpace(content) == "" {
			return nil
		}
		name := defaultFileName(languageHint)
		return []File{newFile(name, content, languageHint)}
	}

	var files []File
	for i, m := range markers {
		name := raw[m[2]:m[3]]
		bodyStart := m[1]
		bodyEnd := len(raw)
		if i+1 < len(markers) {
			bodyEnd = markers[i+1][0]
		}
		content := strings.Trim(raw[bodyStart:bodyEnd], "\n")
		files = append(files, newFile(name, content, ""))
	}
	return files
}

func newFile(name, content, languageHint string) File {
	lang := languageForName(name)
	if lang == "" {
		lang = strings.ToLower(languageHint)
	}
	return File{
		ID:       uuid.NewString(),
		Name:     path.Base(name),
		Path:     name,
		Content:  content,
		Language: lang,
	}
}

func defaultFileName(languageHint string) string {
	if name, ok := defaultFileNames[strings.ToLower(languageHint)]; ok {
		return name
	}
	return "code.txt"
}

func languageForName(name string) string {
	return extLanguages[strings.ToLower(path.Ext(name))]
}
