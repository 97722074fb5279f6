package dirauditor

import (
	"fmt"
	"os"
	"syscall"

	"github.com/google/vectorio"
)

// maxIovecs bounds the iovecs passed to a single writev call.
// 1024 is the Linux IOV_MAX and the conservative default per golang/go#58623.
const maxIovecs = 1024

// writeLines writes all lines to file using vectored writes, chunked to
// respect IOV_MAX. A short write is completed with ordinary writes.
func writeLines(file *os.File, lines [][]byte) error {
	iovecs := make([]syscall.Iovec, 0, len(lines))
	for _, line := range lines {
		if len(line) == 0 {
			continue
		}
		iovec := syscall.Iovec{Base: &line[0]}
		iovec.SetLen(len(line))
		iovecs = append(iovecs, iovec)
	}

	written := 0
	for offset := 0; offset < len(iovecs); offset += maxIovecs {
		end := min(offset+maxIovecs, len(iovecs))
		chunk := iovecs[offset:end]

		expected := 0
		for _, iovec := range chunk {
			expected += int(iovec.Len)
		}

		nw, err := vectorio.WritevRaw(uintptr(file.Fd()), chunk)
		if err != nil {
			return fmt.Errorf("writev failed after %d bytes: %w", written, err)
		}
		if nw < expected {
			if IsDebugEnabled(DebugStore) {
				VerboseLog(3, "writeLines: short writev %d/%d bytes, completing", nw, expected)
			}
			if err := completeShortWrite(file, lines, offset, end, nw); err != nil {
				return err
			}
		}
		written += expected
	}

	return nil
}

// completeShortWrite writes the part of the non-empty lines in [from, to)
// that a writev call left unwritten
func completeShortWrite(file *os.File, lines [][]byte, from, to, done int) error {
	index := 0
	for _, line := range lines {
		if len(line) == 0 {
			continue
		}
		if index >= from && index < to {
			if done >= len(line) {
				done -= len(line)
			} else {
				if _, err := file.Write(line[done:]); err != nil {
					return fmt.Errorf("failed to complete short write: %w", err)
				}
				done = 0
			}
		}
		index++
	}
	return nil
}
