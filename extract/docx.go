package extract

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// docxText reads the main document part of an OOXML word processing file.
// A .docx file is a zip archive whose word/document.xml entry holds the
// text runs (w:t elements) grouped into paragraphs (w:p elements).
func docxText(r io.ReaderAt, size int64) (text string, err error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("extract: failed to open DOCX archive: %w", err)
	}
	var document *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			document = f
			break
		}
	}
	if document == nil {
		return "", fmt.Errorf("extract: DOCX archive has no word/document.xml")
	}
	rc, err := document.Open()
	if err != nil {
		return "", fmt.Errorf("extract: failed to open DOCX document part: %w", err)
	}
	defer rc.Close()
	return docxPartText(rc)
}

func docxPartText(r io.Reader) (text string, err error) {
	var sb strings.Builder
	dec := xml.NewDecoder(r)
	var inTextRun bool
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("extract: failed to parse DOCX document: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inTextRun = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inTextRun = false
			case "p":
				sb.WriteString("\n")
			}
		case xml.CharData:
			if inTextRun {
				sb.Write(t)
			}
		}
	}
	return strings.TrimSpace(sb.String()), nil
}
