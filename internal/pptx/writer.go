package pptx

import (
	"archive/zip"
	"bytes"
	"sort"
	"strings"

	"doc-translator/internal/logger"
	"doc-translator/internal/types"
)

// xmlTextEscaper handles the characters that cannot appear raw in XML
// element content.
var xmlTextEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

type edit struct {
	start int64
	end   int64
	repl  string
}

// Rewrite splices the translations into their slides and rebuilds the
// archive. The first run of a translated paragraph carries the whole new
// text with its formatting intact; the other runs are emptied so no stale
// fragment survives. Every part without a translated paragraph is copied
// through with its original compressed bytes.
func (d *Document) Rewrite(translations map[string]string) ([]byte, error) {
	rewritten := make(map[string][]byte)
	stamped := 0
	for _, s := range d.slides {
		edits, n := slideEdits(s, translations)
		if len(edits) == 0 {
			continue
		}
		rewritten[s.name] = applyEdits(s.data, edits)
		stamped += n
	}
	if len(rewritten) == 0 {
		return d.data, nil
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range d.zr.File {
		if content, ok := rewritten[f.Name]; ok {
			w, err := zw.CreateHeader(&zip.FileHeader{
				Name:     f.Name,
				Method:   f.Method,
				Modified: f.Modified,
			})
			if err == nil {
				_, err = w.Write(content)
			}
			if err != nil {
				zw.Close()
				return nil, types.NewAppErrorWithDetails(types.ErrDocument,
					"cannot write slide", f.Name, err)
			}
			continue
		}
		if err := zw.Copy(f); err != nil {
			zw.Close()
			return nil, types.NewAppErrorWithDetails(types.ErrDocument,
				"cannot copy archive part", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, types.NewAppError(types.ErrDocument, "cannot finalize PPTX archive", err)
	}

	logger.Info("PPTX rewritten",
		logger.Int("slides", len(rewritten)),
		logger.Int("paragraphs", stamped))

	return buf.Bytes(), nil
}

// slideEdits builds the splices for one slide and reports how many
// paragraphs they cover.
func slideEdits(s slidePart, translations map[string]string) ([]edit, int) {
	var edits []edit
	n := 0
	for _, p := range s.paras {
		translated, ok := translations[p.id]
		if !ok || strings.TrimSpace(translated) == "" || len(p.runs) == 0 {
			continue
		}
		n++
		first := p.runs[0]
		name := tagName(s.data, first)
		edits = append(edits, edit{
			start: first.start,
			end:   first.end,
			repl:  "<" + name + ">" + xmlTextEscaper.Replace(translated) + "</" + name + ">",
		})
		for _, r := range p.runs[1:] {
			edits = append(edits, edit{
				start: r.start,
				end:   r.end,
				repl:  "<" + tagName(s.data, r) + "/>",
			})
		}
	}
	return edits, n
}

// tagName reads the qualified tag name out of a run's original bytes, so
// replacements keep whatever namespace prefix the slide uses.
func tagName(data []byte, r runSpan) string {
	raw := data[r.start:r.end]
	i := 1
	for i < len(raw) && raw[i] != '>' && raw[i] != ' ' && raw[i] != '/' {
		i++
	}
	return string(raw[1:i])
}

// applyEdits splices right to left so earlier offsets stay valid.
func applyEdits(data []byte, edits []edit) []byte {
	sort.Slice(edits, func(i, j int) bool { return edits[i].start > edits[j].start })
	out := make([]byte, len(data))
	copy(out, data)
	for _, e := range edits {
		next := make([]byte, 0, len(out)+len(e.repl))
		next = append(next, out[:e.start]...)
		next = append(next, e.repl...)
		next = append(next, out[e.end:]...)
		out = next
	}
	return out
}
