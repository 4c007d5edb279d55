package prompt

import (
	"encoding/json"
	"time"
)

// ExportVersion is written into every export document.
const ExportVersion = "1.0"

const exportFileLayout = "2006-01-02_15-04-05"

// ExportDocument is the versioned envelope produced by export and consumed by import.
type ExportDocument struct {
	Version    string    `json:"version"`
	ExportDate time.Time `json:"exportDate"`
	Prompts    []Prompt  `json:"prompts"`
}

// ExportFile is an export document together with the file name it is delivered under.
type ExportFile struct {
	Name     string
	Document ExportDocument
}

// NewExportFile wraps prompts into an export taken at the instant now.
// The file name uses local wall-clock time of that instant.
func NewExportFile(prompts []Prompt, now time.Time) ExportFile {
	if prompts == nil {
		prompts = []Prompt{}
	}
	return ExportFile{
		Name: ExportFileName(now),
		Document: ExportDocument{
			Version:    ExportVersion,
			ExportDate: now,
			Prompts:    prompts,
		},
	}
}

// ExportFileName returns prompts-export-<YYYY-MM-DD_HH-mm-ss>.json for t.
func ExportFileName(t time.Time) string {
	return "prompts-export-" + t.Local().Format(exportFileLayout) + ".json"
}

// Marshal encodes the document as indented JSON.
func (f ExportFile) Marshal() ([]byte, error) {
	return json.MarshalIndent(f.Document, "", "  ")
}

// ImportSummary counts what an import did to the collection.
type ImportSummary struct {
	Added     int `json:"added"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
}
