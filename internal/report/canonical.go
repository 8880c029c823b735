package report

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"sort"
)

const contentTypesPart = "[Content_Types].xml"

// contentTypeEntry matches a single Default or Override element of [Content_Types].xml.
var contentTypeEntry = regexp.MustCompile(`<(Default|Override)\s[^>]*?(?:/>|></(?:Default|Override)>)`)

// canonicalize rewrites an xlsx archive so that identical workbooks produce identical
// bytes: parts are stored in name order and the content type entries are sorted.
func canonicalize(data []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}

	files := make([]*zip.File, len(zr.File))
	copy(files, zr.File)
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	var out bytes.Buffer
	zw := zip.NewWriter(&out)
	for _, file := range files {
		body, err := readPart(file)
		if err != nil {
			return nil, err
		}
		if file.Name == contentTypesPart {
			body = sortContentTypes(body)
		}

		w, err := zw.CreateHeader(&zip.FileHeader{Name: file.Name, Method: zip.Deflate})
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", file.Name, err)
		}
		if _, err := w.Write(body); err != nil {
			return nil, fmt.Errorf("write %s: %w", file.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}
	return out.Bytes(), nil
}

func readPart(file *zip.File) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", file.Name, err)
	}
	defer func() { _ = rc.Close() }()

	body, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file.Name, err)
	}
	return body, nil
}

// sortContentTypes orders the Default elements among themselves and the Override
// elements among themselves, leaving everything else in place.
func sortContentTypes(body []byte) []byte {
	locs := contentTypeEntry.FindAllSubmatchIndex(body, -1)
	if len(locs) < 2 {
		return body
	}

	groups := make(map[string][][]byte)
	for _, loc := range locs {
		kind := string(body[loc[2]:loc[3]])
		groups[kind] = append(groups[kind], body[loc[0]:loc[1]])
	}
	for _, elems := range groups {
		sort.Slice(elems, func(i, j int) bool { return bytes.Compare(elems[i], elems[j]) < 0 })
	}

	var out bytes.Buffer
	next := make(map[string]int)
	last := 0
	for _, loc := range locs {
		kind := string(body[loc[2]:loc[3]])
		out.Write(body[last:loc[0]])
		out.Write(groups[kind][next[kind]])
		next[kind]++
		last = loc[1]
	}
	out.Write(body[last:])
	return out.Bytes()
}
