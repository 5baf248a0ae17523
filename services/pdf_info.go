package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// pdfInfoTimeout defines how long we wait for the pdfinfo command to run.
const pdfInfoTimeout = 15 * time.Second

// CountPDFPages uses the external 'pdfinfo' command-line tool to read the
// page count of a PDF.
//
// Requires 'pdfinfo' (part of the poppler-utils package) to be installed
// and accessible in the system's PATH. Callers treat a failure as
// best-effort metadata: the record is stored with a zero page count.
func CountPDFPages(data []byte) (int, error) {
	// pdfinfo wants a file on disk, so stage the bytes in a temp file.
	tmp, err := os.CreateTemp("", "dpp-*.pdf")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file for pdfinfo: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return 0, fmt.Errorf("failed to stage PDF for pdfinfo: %w", err)
	}
	tmp.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pdfInfoTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "pdfinfo", tmp.Name())

	var outbuf bytes.Buffer
	var errbuf bytes.Buffer
	cmd.Stdout = &outbuf
	cmd.Stderr = &errbuf

	err = cmd.Run()

	if ctx.Err() == context.DeadlineExceeded {
		return 0, fmt.Errorf("pdfinfo command timed out after %v", pdfInfoTimeout)
	}
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return 0, errors.New("pdfinfo command not found: please ensure poppler-utils is installed and in the system PATH")
		}
		return 0, fmt.Errorf("pdfinfo execution failed: %w, stderr: %s", err, errbuf.String())
	}

	return parsePDFInfoPages(outbuf.String())
}

// parsePDFInfoPages pulls the "Pages:" line out of pdfinfo's output.
func parsePDFInfoPages(output string) (int, error) {
	for _, line := range strings.Split(output, "\n") {
		if !strings.HasPrefix(line, "Pages:") {
			continue
		}
		pages, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "Pages:")))
		if err != nil {
			return 0, fmt.Errorf("pdfinfo reported a non-numeric page count: %q", line)
		}
		return pages, nil
	}
	return 0, errors.New("pdfinfo output did not contain a Pages line")
}
