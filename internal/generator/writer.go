package generator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// WriteLogs serializes the dataset into batch_log.json and stream_log.json
// under the provided directory, one JSON object per line. The batch log
// starts with the parameter line consumed by the replayer.
func WriteLogs(dataset Dataset, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	batchPath := filepath.Join(dir, "batch_log.json")
	if err := writeLines(batchPath, dataset.Params, dataset.Batch); err != nil {
		return err
	}

	streamPath := filepath.Join(dir, "stream_log.json")
	if err := writeLines(streamPath, nil, dataset.Stream); err != nil {
		return err
	}

	return nil
}

func writeLines(path string, header any, records []Record) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	if header != nil {
		if err := encoder.Encode(header); err != nil {
			return fmt.Errorf("encode header for %s: %w", path, err)
		}
	}
	for _, record := range records {
		if err := encoder.Encode(record); err != nil {
			return fmt.Errorf("encode record for %s: %w", path, err)
		}
	}
	return nil
}
