package lake

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/terraincognita07/integra/internal/models"
)

const fileExtension = ".enc"

// AuditSink receives one entry per lake access. Implementations must be
// safe for concurrent use.
type AuditSink interface {
	WriteEntry(action string, category string, records int, detail map[string]any) error
}

// Store is the append-only encrypted record lake. One record per file,
// grouped into one directory per category. Records are never updated in
// place; corrections are new records.
type Store struct {
	root      string
	recipient string
	identity  string
	audit     AuditSink
}

// NewStore wires a lake rooted at root. audit may be nil to disable the
// access trail (tests).
func NewStore(root string, recipient string, identity string, audit AuditSink) *Store {
	return &Store{root: root, recipient: recipient, identity: identity, audit: audit}
}

// Append encrypts and stores a single record under a category.
func (s *Store) Append(category string, record models.Record) error {
	encrypted, err := EncryptRecord(record, s.recipient)
	if err != nil {
		return err
	}

	destDir := filepath.Join(s.root, category)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create category directory: %w", err)
	}

	stamp := time.Now().UTC().Format("20060102T150405")
	destFile := filepath.Join(destDir, fmt.Sprintf("%s_%s_0%s", stamp, category, fileExtension))
	// Same-second appends collide on the generated name; probe an
	// incrementing suffix until an unused one is found. Assumes a single
	// writer, per the storage model.
	index := 0
	for {
		if _, err := os.Stat(destFile); os.IsNotExist(err) {
			break
		}
		index++
		destFile = filepath.Join(destDir, fmt.Sprintf("%s_%s_%d%s", stamp, category, index, fileExtension))
	}

	if err := os.WriteFile(destFile, encrypted, 0o600); err != nil {
		return fmt.Errorf("write record: %w", err)
	}

	return s.writeAudit(models.AuditActionCollect, category, 1, nil)
}

// Query decrypts every record in a category and returns those matching all
// filter key-value pairs exactly. Iteration order follows the generated
// filename timestamps. Files that fail to decrypt are skipped with a logged
// error so one corrupt file cannot poison an evaluation.
func (s *Store) Query(category string, filters map[string]string) ([]models.Record, error) {
	detail := map[string]any{}
	if len(filters) > 0 {
		detail["filters"] = filters
	}
	if err := s.writeAudit(models.AuditActionQuery, category, 0, detail); err != nil {
		return nil, err
	}

	categoryDir := filepath.Join(s.root, category)
	entries, err := os.ReadDir(categoryDir)
	if os.IsNotExist(err) {
		return []models.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read category directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExtension) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	results := make([]models.Record, 0, len(names))
	for _, name := range names {
		path := filepath.Join(categoryDir, name)
		ciphertext, err := os.ReadFile(path)
		if err != nil {
			log.Printf("lake: read %s failed: %v", path, err)
			continue
		}
		record, err := DecryptRecord(ciphertext, s.identity)
		if err != nil {
			log.Printf("lake: decrypt %s failed: %v", path, err)
			continue
		}
		if !matchesFilters(record, filters) {
			continue
		}
		results = append(results, record)
	}

	return results, nil
}

func matchesFilters(record models.Record, filters map[string]string) bool {
	for key, want := range filters {
		if record.String(key) != want {
			return false
		}
	}
	return true
}

func (s *Store) writeAudit(action string, category string, records int, detail map[string]any) error {
	if s.audit == nil {
		return nil
	}
	if err := s.audit.WriteEntry(action, category, records, detail); err != nil {
		return fmt.Errorf("write audit entry: %w", err)
	}
	return nil
}
