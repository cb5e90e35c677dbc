package plan

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Plan describes one NACHA file: its header identity and the batches it holds.
type Plan struct {
	File    FileSpec    `yaml:"file"`
	Batches []BatchSpec `yaml:"batches"`

	// directory that relative batch sources are resolved against
	baseDir string
}

type FileSpec struct {
	DestinationID   string     `yaml:"destination_id"`
	DestinationName string     `yaml:"destination_name"`
	OriginID        string     `yaml:"origin_id"`
	OriginName      string     `yaml:"origin_name"`
	ReferenceCode   string     `yaml:"reference_code"`
	FileIDModifier  string     `yaml:"file_id_modifier"`
	Priority        string     `yaml:"priority"`
	CreatedAt       *time.Time `yaml:"created_at"`
	BatchStride     int        `yaml:"batch_stride"`
}

type BatchSpec struct {
	CompanyName       string    `yaml:"company_name"`
	CompanyID         string    `yaml:"company_id"`
	DiscretionaryData string    `yaml:"discretionary_data"`
	InstitutionID     string    `yaml:"institution_id"`
	ServiceClassCode  int       `yaml:"service_class_code"`
	SECCode           string    `yaml:"sec_code"`
	EntryDescription  string    `yaml:"entry_description"`
	DescriptiveDate   time.Time `yaml:"descriptive_date"`
	EffectiveDate     time.Time `yaml:"effective_date"`
	BatchNumber       int       `yaml:"batch_number"`
	// Source is a CSV or spreadsheet of payments appended after Entries.
	Source  string      `yaml:"source"`
	Entries []EntrySpec `yaml:"entries"`
}

type EntrySpec struct {
	Name              string `yaml:"name"`
	ID                string `yaml:"id"`
	Account           string `yaml:"account"`
	Routing           string `yaml:"routing"`
	CheckDigit        string `yaml:"check_digit"`
	Amount            string `yaml:"amount"`
	AccountType       string `yaml:"account_type"`
	TransactionType   string `yaml:"transaction_type"`
	TransactionCode   int    `yaml:"transaction_code"`
	TraceNumber       int    `yaml:"trace_number"`
	DiscretionaryData string `yaml:"discretionary_data"`
	AddendaIndicator  int    `yaml:"addenda_indicator"`
}

func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}

	p, err := Parse(data)
	if err != nil {
		return nil, err
	}
	p.baseDir = filepath.Dir(path)
	return p, nil
}

// Parse decodes a plan. Relative sources resolve against the working directory.
func Parse(data []byte) (*Plan, error) {
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	if len(p.Batches) == 0 {
		return nil, fmt.Errorf("plan has no batches")
	}
	return &p, nil
}

func (p *Plan) sourcePath(source string) string {
	if filepath.IsAbs(source) || p.baseDir == "" {
		return source
	}
	return filepath.Join(p.baseDir, source)
}

func (p *Plan) Print(w io.Writer) {
	fmt.Fprintf(w, "Origin: %s (%s) -> %s (%s)\n", p.File.OriginName, p.File.OriginID, p.File.DestinationName, p.File.DestinationID)
	for i, b := range p.Batches {
		fmt.Fprintf(w, "[%d] company=%s desc=%s effective=%s entries=%d source=%s\n",
			i+1, b.CompanyName, b.EntryDescription, b.EffectiveDate.Format("2006-01-02"), len(b.Entries), b.Source)
	}
}
