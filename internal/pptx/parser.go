package pptx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"doc-translator/internal/logger"
	"doc-translator/internal/types"
)

var slideNameRe = regexp.MustCompile(`^ppt/slides/slide([0-9]+)\.xml$`)

// shapeElements are the spTree children that occupy a shape slot. Shapes
// are indexed across all of them so ids stay stable even when pictures or
// connectors sit between text shapes.
var shapeElements = map[string]bool{
	"sp":           true,
	"grpSp":        true,
	"graphicFrame": true,
	"pic":          true,
	"cxnSp":        true,
	"contentPart":  true,
}

// Parse opens a deck and scans its slides for translatable paragraphs.
func Parse(data []byte) (*Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, types.NewAppError(types.ErrDocument, "cannot open PPTX archive", err)
	}

	type numberedSlide struct {
		num  int
		file *zip.File
	}
	var slideFiles []numberedSlide
	for _, f := range zr.File {
		m := slideNameRe.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		slideFiles = append(slideFiles, numberedSlide{num: n, file: f})
	}
	// Numeric order: slide10.xml comes after slide2.xml.
	sort.Slice(slideFiles, func(i, j int) bool { return slideFiles[i].num < slideFiles[j].num })

	d := &Document{data: data, zr: zr}
	for idx, sf := range slideFiles {
		content, err := readZipPart(sf.file)
		if err != nil {
			return nil, types.NewAppErrorWithDetails(types.ErrDocument,
				"cannot read slide", sf.file.Name, err)
		}
		part := slidePart{name: sf.file.Name, data: content}
		part.paras, err = scanSlide(content, idx)
		if err != nil {
			return nil, types.NewAppErrorWithDetails(types.ErrDocument,
				"cannot scan slide XML", sf.file.Name, err)
		}
		d.slides = append(d.slides, part)
	}

	logger.Debug("PPTX parsed",
		logger.Int("slides", len(d.slides)),
		logger.Int("paragraphs", countParagraphs(d.slides)))

	return d, nil
}

func readZipPart(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func countParagraphs(slides []slidePart) int {
	n := 0
	for _, s := range slides {
		n += len(s.paras)
	}
	return n
}

// scanSlide walks one slide's XML and returns its translatable paragraphs
// with the byte ranges needed to rewrite their runs. Paragraph indexes count
// every <a:p> so ids stay aligned with the document even when empty
// paragraphs are skipped.
func scanSlide(data []byte, slideIdx int) ([]paragraph, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var (
		paras []paragraph
		stack []string

		spTreeDepth = -1
		shapeCount  int
		shapeIdx    = -1
		shapeKind   string

		inTable bool
		rowIdx  = -1
		colIdx  = -1
		paraIdx = -1

		cur     *paragraph
		curText strings.Builder

		runOpen   bool
		runDone   bool
		inRunText bool
		tStart    int64
		runText   strings.Builder
	)

	parent := func() string {
		if len(stack) == 0 {
			return ""
		}
		return stack[len(stack)-1]
	}

	for {
		start := dec.InputOffset()
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			local := t.Name.Local
			switch {
			case local == "spTree" && spTreeDepth < 0:
				spTreeDepth = len(stack)

			case spTreeDepth >= 0 && len(stack) == spTreeDepth+1 && shapeElements[local]:
				shapeIdx = shapeCount
				shapeCount++
				shapeKind = local
				inTable = false
				rowIdx, colIdx, paraIdx = -1, -1, -1

			case local == "tbl" && shapeKind == "graphicFrame":
				inTable = true
				rowIdx = -1

			case local == "tr" && inTable:
				rowIdx++
				colIdx = -1

			case local == "tc" && inTable:
				colIdx++
				paraIdx = -1

			case local == "txBody" && shapeKind == "sp" && !inTable:
				paraIdx = -1

			case local == "p" && parent() == "txBody":
				paraIdx++
				var id string
				switch {
				case inTable && rowIdx >= 0 && colIdx >= 0:
					id = fmt.Sprintf("s%d_sh%d_r%dc%d_p%d", slideIdx, shapeIdx, rowIdx, colIdx, paraIdx)
				case shapeKind == "sp" && shapeIdx >= 0:
					id = fmt.Sprintf("s%d_sh%d_p%d", slideIdx, shapeIdx, paraIdx)
				}
				if id != "" {
					cur = &paragraph{id: id}
					curText.Reset()
				}

			case local == "r" && parent() == "p" && cur != nil:
				runOpen = true
				runDone = false

			case local == "t" && parent() == "r" && runOpen && !runDone:
				tStart = start
				inRunText = true
				runText.Reset()

			case local == "br" && parent() == "p" && cur != nil:
				curText.WriteString(" ")
			}
			stack = append(stack, local)

		case xml.CharData:
			if inRunText {
				runText.Write(t)
			}

		case xml.EndElement:
			local := t.Name.Local
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			switch {
			case local == "t" && inRunText:
				cur.runs = append(cur.runs, runSpan{
					start: tStart,
					end:   dec.InputOffset(),
					text:  runText.String(),
				})
				curText.WriteString(runText.String())
				inRunText = false
				runDone = true

			case local == "r" && runOpen:
				runOpen = false

			case local == "p" && cur != nil && parent() == "txBody":
				if text := strings.TrimSpace(curText.String()); text != "" && len(cur.runs) > 0 {
					cur.text = text
					paras = append(paras, *cur)
				}
				cur = nil
			}
		}
	}

	return paras, nil
}
