package tools

import (
	"archive/zip"
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
)

const docContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const docRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

// GenerateDocx writes text into a minimal .docx (one paragraph per input
// line) under dir and returns the file path.
func GenerateDocx(text, fileName, dir string) (string, error) {
	if fileName == "" {
		fileName = "output.docx"
	}
	if !strings.HasSuffix(fileName, ".docx") {
		fileName += ".docx"
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, fileName)

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := zip.NewWriter(f)
	parts := map[string]string{
		"[Content_Types].xml": docContentTypes,
		"_rels/.rels":         docRels,
		"word/document.xml":   buildDocumentXML(text),
	}
	for name, content := range parts {
		part, err := w.Create(name)
		if err != nil {
			return "", err
		}
		if _, err := part.Write([]byte(content)); err != nil {
			return "", err
		}
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	return path, nil
}

func buildDocumentXML(text string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	b.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, line := range strings.Split(text, "\n") {
		b.WriteString(`<w:p><w:r><w:t xml:space="preserve">`)
		_ = xml.EscapeText(&b, []byte(line))
		b.WriteString(`</w:t></w:r></w:p>`)
	}
	b.WriteString(`</w:body></w:document>`)
	return b.String()
}
