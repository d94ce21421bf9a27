// ocrval validates localized UI screenshots: it crops annotated string
// regions out of captured screens, runs OCR on the crops and compares the
// recognized text against the expected translations.
package main

import (
	"github.com/nitya2202/ocr-string-validation-tool/cmd/ocrval/cmd"
)

func main() {
	cmd.Execute()
}
