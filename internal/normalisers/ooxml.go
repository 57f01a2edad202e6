package normalisers

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PetersQuinn/executive-insights/internal/core/domain"
)

// ReadZipPart returns the bytes of an Office Open XML package part, or nil
// when the part is absent.
func ReadZipPart(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: opening %s: %v", domain.ErrInvalidInput, name, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", domain.ErrInvalidInput, name, err)
		}
		return data, nil
	}
	return nil, nil
}

// CoreTitle reads dc:title from a docProps/core.xml part.
func CoreTitle(data []byte) string {
	var core struct {
		Title string `xml:"title"`
	}
	if err := xml.Unmarshal(data, &core); err != nil {
		return ""
	}
	return strings.TrimSpace(core.Title)
}

// PackageTitle returns the dc:title of an Office package, or "".
func PackageTitle(reader *zip.Reader) string {
	core, err := ReadZipPart(reader, "docProps/core.xml")
	if err != nil || core == nil {
		return ""
	}
	return CoreTitle(core)
}

// ExtractText walks a WordprocessingML or DrawingML part. Both use p for
// paragraphs, t for text runs and tbl/tr/tc for tables: every paragraph
// outside a table becomes one line and every table row becomes one line
// with cells joined by " | ".
func ExtractText(data []byte) (string, error) {
	var (
		lines      []string
		para       strings.Builder
		cellParts  []string
		row        []string
		tableDepth int
		inText     bool
	)

	decoder := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tableDepth++
			case "p":
				para.Reset()
			case "t":
				inText = true
			case "tab", "br", "cr":
				para.WriteByte(' ')
			}
		case xml.CharData:
			if inText {
				para.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				text := CollapseSpaces(para.String())
				if text == "" {
					continue
				}
				if tableDepth > 0 {
					cellParts = append(cellParts, text)
				} else {
					lines = append(lines, text)
				}
			case "tc":
				row = append(row, strings.Join(cellParts, " "))
				cellParts = nil
			case "tr":
				if strings.TrimSpace(strings.Join(row, "")) != "" {
					lines = append(lines, strings.Join(row, " | "))
				}
				row = nil
			case "tbl":
				tableDepth--
			}
		}
	}

	return strings.Join(lines, "\n"), nil
}
