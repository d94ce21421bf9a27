// Package capture imports screen captures from PDF documents into the
// screenshot library. Test teams commonly deliver localized UI walkthroughs
// as one PDF per language, one page per screen; this package extracts the
// page images so the validation engine can consume them as ordinary
// screenshot files.
package capture

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/nitya2202/ocr-string-validation-tool/internal/utils"
)

// Page holds one image extracted from a PDF capture. Number is the 1-based
// PDF page, Index the 1-based position of the image within that page.
type Page struct {
	Number int
	Index  int
	Image  image.Image
}

// ExtractPages pulls the embedded page images out of a PDF capture. The page
// range uses the form "1-5,8"; an empty range selects every page. Pages are
// returned sorted by page number, then by image index within the page.
func ExtractPages(pdfPath, pageRange string) ([]Page, error) {
	pages, err := parsePageRange(pageRange)
	if err != nil {
		return nil, fmt.Errorf("invalid page range %q: %w", pageRange, err)
	}

	tempDir, err := os.MkdirTemp("", "ocrval-import-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(tempDir) }()

	var selected []string
	for _, p := range pages {
		selected = append(selected, strconv.Itoa(p))
	}

	if err := api.ExtractImagesFile(pdfPath, tempDir, selected, nil); err != nil {
		return nil, fmt.Errorf("failed to extract images from %s: %w", pdfPath, err)
	}

	extracted, err := collectPages(tempDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read extracted images: %w", err)
	}
	return extracted, nil
}

// ImportScreenshots extracts the page images of a PDF capture and saves them
// as PNG files under destDir. Single-image pages are named
// <prefix><page>.png with a zero-padded page number; when a page carries
// several images the image index is appended. The written paths are returned
// in page order.
func ImportScreenshots(pdfPath, destDir, prefix, pageRange string) ([]string, error) {
	pages, err := ExtractPages(pdfPath, pageRange)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("no page images found in %s", pdfPath)
	}

	if err := os.MkdirAll(destDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create screenshot directory: %w", err)
	}

	perPage := make(map[int]int)
	for _, p := range pages {
		perPage[p.Number]++
	}

	written := make([]string, 0, len(pages))
	for _, p := range pages {
		name := pageFileName(prefix, p, perPage[p.Number])
		path := filepath.Join(destDir, name)
		if err := utils.SaveImage(p.Image, path); err != nil {
			return nil, fmt.Errorf("failed to save %s: %w", name, err)
		}
		written = append(written, path)
	}
	return written, nil
}

// pageFileName builds the screenshot filename for an extracted page. The
// image index is only appended when the page carries more than one image.
func pageFileName(prefix string, p Page, imagesOnPage int) string {
	if imagesOnPage > 1 {
		return fmt.Sprintf("%s%03d_%d.png", prefix, p.Number, p.Index)
	}
	return fmt.Sprintf("%s%03d.png", prefix, p.Number)
}

// collectPages walks an extraction directory and decodes every image whose
// name follows pdfcpu's page_<num>_... scheme. Files with unrecognized names
// or undecodable contents are skipped.
func collectPages(dir string) ([]Page, error) {
	var pages []Page

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		number, index, err := parseExtractedName(info.Name())
		if err != nil {
			return nil
		}

		img, err := loadPageImage(path)
		if err != nil {
			return nil
		}

		pages = append(pages, Page{Number: number, Index: index, Image: img})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(pages, func(i, j int) bool {
		if pages[i].Number != pages[j].Number {
			return pages[i].Number < pages[j].Number
		}
		return pages[i].Index < pages[j].Index
	})
	return pages, nil
}

// loadPageImage decodes an extracted image file. The blank imports above
// register the decoders pdfcpu may emit: PNG, JPEG, TIFF and WebP.
func loadPageImage(path string) (image.Image, error) {
	file, err := os.Open(path) //nolint:gosec // G304: path comes from our own temp extraction dir
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	img, _, err := image.Decode(file)
	return img, err
}

// parseExtractedName pulls the page number and image index out of a pdfcpu
// extract filename such as page_3_image_1.png. The index defaults to 1 when
// the name carries no trailing number.
func parseExtractedName(name string) (int, int, error) {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	parts := strings.Split(base, "_")
	if len(parts) < 2 || parts[0] != "page" {
		return 0, 0, fmt.Errorf("unrecognized extract name %q", name)
	}

	number, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid page number in %q", name)
	}

	index := 1
	if len(parts) > 2 {
		if n, err := strconv.Atoi(parts[len(parts)-1]); err == nil {
			index = n
		}
	}
	return number, index, nil
}

// parsePageRange parses a selection like "1-5" or "1,3,8-10" into the page
// numbers it covers. An empty spec selects all pages and returns nil.
func parsePageRange(spec string) ([]int, error) {
	if spec == "" {
		return nil, nil
	}

	var pages []int
	for _, token := range strings.Split(spec, ",") {
		token = strings.TrimSpace(token)

		first, last, isRange := strings.Cut(token, "-")
		if !isRange {
			page, err := strconv.Atoi(token)
			if err != nil {
				return nil, fmt.Errorf("invalid page number %q", token)
			}
			pages = append(pages, page)
			continue
		}

		start, err := strconv.Atoi(strings.TrimSpace(first))
		if err != nil {
			return nil, fmt.Errorf("invalid range start %q", first)
		}
		end, err := strconv.Atoi(strings.TrimSpace(last))
		if err != nil {
			return nil, fmt.Errorf("invalid range end %q", last)
		}
		if start > end {
			return nil, fmt.Errorf("page range %q runs backwards", token)
		}
		for p := start; p <= end; p++ {
			pages = append(pages, p)
		}
	}
	return pages, nil
}
