package local

import (
	"bufio"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/nemanja-m/parmr/pkg/core"
)

const (
	DefaultBufferSize = 1024 * 1024 // 1MB
)

type Line struct {
	Filename string
	Number   int
	Text     string
}

// FindFiles expands glob patterns (with ** support) into regular files.
// Files matched by more than one pattern are returned once, in first-match
// order.
func FindFiles(patterns ...string) ([]string, error) {
	var files []string
	seen := make(map[string]struct{})
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		for _, name := range matches {
			if _, dup := seen[name]; dup {
				continue
			}
			info, err := os.Lstat(name)
			if err != nil {
				continue
			}
			if info.Mode().IsRegular() {
				seen[name] = struct{}{}
				files = append(files, name)
			}
		}
	}
	return files, nil
}

func ReadLines(filePath string, bufferSize ...int) ([]Line, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if len(bufferSize) == 0 {
		bufferSize = []int{DefaultBufferSize}
	}
	buffer := make([]byte, bufferSize[0])

	scanner := bufio.NewScanner(file)
	scanner.Buffer(buffer, bufferSize[0])

	var lines []Line
	for i := 1; scanner.Scan(); i++ {
		lines = append(lines, Line{
			Filename: filePath,
			Number:   i,
			Text:     scanner.Text(),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return lines, nil
}

// ReadRecords reads "key value" lines. Whitespace after the first separator
// is trimmed from the value.
func ReadRecords(filePath string) ([]core.KeyValue, error) {
	lines, err := ReadLines(filePath)
	if err != nil {
		return nil, err
	}

	records := make([]core.KeyValue, 0, len(lines))
	for _, line := range lines {
		key, value, found := strings.Cut(line.Text, " ")
		if !found {
			return nil, fmt.Errorf("malformed record at %s:%d", line.Filename, line.Number)
		}
		records = append(records, core.KeyValue{Key: key, Value: strings.TrimSpace(value)})
	}
	return records, nil
}

func WriteRecords(filePath string, records iter.Seq[core.KeyValue]) error {
	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for record := range records {
		if _, err := fmt.Fprintf(writer, "%s %s\n", record.Key, record.Value); err != nil {
			return err
		}
	}
	if err := writer.Flush(); err != nil {
		return err
	}
	return file.Close()
}

// WritePartitions writes each partition to dir/part-NNNN.txt, creating dir
// if needed.
func WritePartitions(dir string, partitions map[int][]core.KeyValue) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	for part, records := range partitions {
		path := filepath.Join(dir, fmt.Sprintf("part-%04d.txt", part))
		if err := WriteRecords(path, slices.Values(records)); err != nil {
			return err
		}
	}
	return nil
}
