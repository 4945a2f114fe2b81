// Package clipboard moves CF_HTML payloads between the converter and the
// platform clipboard. The codec is pure; the provider shells out to whatever
// clipboard tool the platform offers.
package clipboard

import (
	"fmt"
	"strconv"
	"strings"
)

// CF_HTML requires a small ASCII header recording byte offsets into the
// payload:
//
//	Version:0.9
//	StartHTML:NNNNNNNNN
//	EndHTML:NNNNNNNNN
//	StartFragment:NNNNNNNNN
//	EndFragment:NNNNNNNNN
//	<html><body><!--StartFragment-->...CONTENT...<!--EndFragment--></body></html>
//
// All offsets are UTF-8 byte positions from the start of the blob.
const cfHTMLHeader = "Version:0.9\r\n" +
	"StartHTML:%09d\r\n" +
	"EndHTML:%09d\r\n" +
	"StartFragment:%09d\r\n" +
	"EndFragment:%09d\r\n"

const (
	cfHTMLOpen  = "<html><body><!--StartFragment-->"
	cfHTMLClose = "<!--EndFragment--></body></html>"
)

// EncodeCFHTML wraps an HTML fragment in a properly-headered CF_HTML blob.
// Offsets are fixed-width (9 digits), so the header length is known before
// the offsets are.
func EncodeCFHTML(fragment string) []byte {
	headerLen := len(fmt.Sprintf(cfHTMLHeader, 0, 0, 0, 0))

	sh := headerLen
	sf := sh + len(cfHTMLOpen)
	ef := sf + len(fragment)
	eh := ef + len(cfHTMLClose)

	var buf strings.Builder
	fmt.Fprintf(&buf, cfHTMLHeader, sh, eh, sf, ef)
	buf.WriteString(cfHTMLOpen)
	buf.WriteString(fragment)
	buf.WriteString(cfHTMLClose)
	return []byte(buf.String())
}

// DecodeCFHTML extracts the HTML document from a CF_HTML blob. It prefers
// locating the <html> tag directly and falls back to the StartHTML offset;
// a blob with neither is returned unchanged (some producers omit the header
// entirely).
func DecodeCFHTML(blob string) string {
	lower := strings.ToLower(blob)
	if idx := strings.Index(lower, "<html"); idx >= 0 {
		return blob[idx:]
	}
	for _, line := range strings.Split(blob, "\n") {
		if rest, ok := strings.CutPrefix(line, "StartHTML:"); ok {
			if off, err := strconv.Atoi(strings.TrimSpace(rest)); err == nil && off >= 0 && off <= len(blob) {
				return blob[off:]
			}
			break
		}
	}
	return blob
}
