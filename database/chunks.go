// database/chunks.go
package database

import (
	"fmt"
	"log"
)

// The backend accepts insert requests of bounded size. Collections above
// singleCallMax rows are split into ordered chunks of at most chunkSize
// rows each; anything at or below the threshold goes out as one call.
const (
	singleCallMax = 1500
	chunkSize     = 1000
)

// InsertChunked delivers rows through the given insert function, splitting
// oversized collections into sequential chunks. Chunks preserve the input
// order and content exactly; a failed chunk stops delivery immediately
// (already-delivered chunks are not rolled back) and the error names the
// chunk that failed.
func InsertChunked[T any](rows []T, insert func([]T) error) error {
	if len(rows) <= singleCallMax {
		return insert(rows)
	}

	total := (len(rows) + chunkSize - 1) / chunkSize
	log.Printf("Store: %d rows exceed the single-call limit; delivering in %d chunks of up to %d rows.\n",
		len(rows), total, chunkSize)

	for i := 0; i < total; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := insert(rows[start:end]); err != nil {
			return fmt.Errorf("failed inserting chunk %d of %d (%d rows): %w", i+1, total, end-start, err)
		}
	}
	return nil
}
