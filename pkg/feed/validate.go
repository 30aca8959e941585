package feed

import (
	"bytes"
	"fmt"

	"github.com/mmcdole/gofeed"
)

// Validate parses serialized feed data back and checks the entry count survived
func Validate(data []byte, wantEntries int) error {
	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to parse generated feed: %w", err)
	}

	if len(parsed.Items) != wantEntries {
		return fmt.Errorf("generated feed has %d items, expected %d", len(parsed.Items), wantEntries)
	}

	return nil
}
