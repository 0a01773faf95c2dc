// Package report renders dispatch results as one preview line per request.
package report

import (
	"bufio"
	"fmt"
	"io"

	"github.com/Sternrassler/burst-fetch/pkg/dispatch"
)

// PreviewLength is the number of body characters shown per line.
const PreviewLength = 100

// Preview returns the first n characters (code points) of body.
func Preview(body string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range body {
		if count == n {
			return body[:i]
		}
		count++
	}
	return body
}

// Line formats a single result line. index is zero-based and printed 1-based.
func Line(index int, url, body string) string {
	return fmt.Sprintf("Response %d from %s: %s", index+1, url, Preview(body, PreviewLength))
}

// Write prints one line per result in submission order. If any task failed it
// writes nothing and returns the joined task failures.
func Write(w io.Writer, url string, results dispatch.Results) error {
	if err := results.Err(); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	for _, r := range results {
		if _, err := fmt.Fprintln(bw, Line(r.Index, url, r.Body)); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
