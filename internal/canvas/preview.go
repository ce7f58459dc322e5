package canvas

import (
	"fmt"
	"html"
	"strings"
)

const previewShell = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
</head>
<body>
%s</body>
</html>`

// RenderPreview synthesizes a standalone HTML document from the session's
// file set. CSS files are inlined into a <style> block and plain JS files
// into a <script> block. JSX/TSX files cannot be executed without a build
// step, so they surface as an inline banner instead of breaking the preview.
func (s *Session) RenderPreview() string {
	s.mu.Lock()
	files := cloneFiles(s.files)
	activeID := s.activeID
	s.mu.Unlock()

	var htmlFile *File
	var cssParts, jsParts, unsupported []string
	for i := range files {
		f := &files[i]
		switch f.Language {
		case "html":
			if htmlFile == nil {
				htmlFile = f
			}
		case "css", "scss":
			cssParts = append(cssParts, f.Content)
		case "javascript":
			jsParts = append(jsParts, f.Content)
		case "jsx", "tsx", "typescript":
			unsupported = append(unsupported, f.Name)
		}
	}

	doc := ""
	if htmlFile != nil {
		doc = htmlFile.Content
	} else if len(cssParts) == 0 && len(jsParts) == 0 && len(unsupported) == 0 {
		// No recognizable entry point: show the active file as inline markup.
		for i := range files {
			if files[i].ID == activeID {
				doc = fmt.Sprintf(previewShell, files[i].Content+"\n")
				break
			}
		}
		return doc
	} else {
		doc = fmt.Sprintf(previewShell, "")
	}

	if len(cssParts) > 0 {
		style := "<style>\n" + strings.Join(cssParts, "\n") + "\n</style>"
		doc = injectBefore(doc, "</head>", style)
	}
	if len(unsupported) > 0 {
		banner := fmt.Sprintf(
			`<div style="background:#fde68a;color:#78350f;padding:8px 12px;font-family:sans-serif;font-size:13px">Preview for %s is not available: JSX/TSX requires a build step.</div>`,
			html.EscapeString(strings.Join(unsupported, ", ")))
		doc = injectAfter(doc, "<body>", banner)
	}
	if len(jsParts) > 0 {
		script := "<script>\n" + strings.Join(jsParts, "\n") + "\n</script>"
		doc = injectBefore(doc, "</body>", script)
	}
	return doc
}

func injectBefore(doc, tag, fragment string) string {
	if i := strings.Index(doc, tag); i >= 0 {
		return doc[:i] + fragment + "\n" + doc[i:]
	}
	return doc + "\n" + fragment
}

func injectAfter(doc, tag, fragment string) string {
	if i := strings.Index(doc, tag); i >= 0 {
		end := i + len(tag)
		return doc[:end] + "\n" + fragment + doc[end:]
	}
	return fragment + "\n" + doc
}
