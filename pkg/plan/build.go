package plan

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/yurifrl/achu/pkg/config"
	"github.com/yurifrl/achu/pkg/models"
	"github.com/yurifrl/achu/pkg/nacha"
	"github.com/yurifrl/achu/pkg/parser"
)

// BuildOptions carries what a plan cannot say about itself.
type BuildOptions struct {
	// Now stamps the file header when the plan has no created_at.
	Now time.Time
	// Defaults fill file header fields the plan leaves empty.
	Defaults config.FileDefaults
	// Parser reads batch sources. Required only when a batch has one.
	Parser *parser.Parser
}

// Build turns the plan into a nacha file. Entries are added in plan order:
// inline entries first, then the rows of the batch source.
func (p *Plan) Build(opts BuildOptions) (*nacha.File, error) {
	created := opts.Now
	if p.File.CreatedAt != nil {
		created = *p.File.CreatedAt
	}
	if created.IsZero() {
		return nil, fmt.Errorf("plan has no creation time")
	}

	file := nacha.NewFile(nacha.FileConfig{
		Priority:        p.File.Priority,
		DestinationID:   firstNonEmpty(p.File.DestinationID, opts.Defaults.DestinationID),
		DestinationName: firstNonEmpty(p.File.DestinationName, opts.Defaults.DestinationName),
		OriginID:        firstNonEmpty(p.File.OriginID, opts.Defaults.OriginID),
		OriginName:      firstNonEmpty(p.File.OriginName, opts.Defaults.OriginName),
		ReferenceCode:   firstNonEmpty(p.File.ReferenceCode, opts.Defaults.ReferenceCode),
		FileIDModifier:  firstNonEmpty(p.File.FileIDModifier, opts.Defaults.FileIDModifier),
		CreatedAt:       created,
	}, nacha.WithNumbering(nacha.Sequential{BatchStride: p.File.BatchStride}))

	for i, spec := range p.Batches {
		batch := file.AddBatch(nacha.BatchConfig{
			ServiceClassCode:         spec.ServiceClassCode,
			CompanyName:              spec.CompanyName,
			CompanyDiscretionaryData: spec.DiscretionaryData,
			CompanyID:                spec.CompanyID,
			SECCode:                  spec.SECCode,
			EntryDescription:         spec.EntryDescription,
			DescriptiveDate:          spec.DescriptiveDate,
			EffectiveDate:            spec.EffectiveDate,
			InstitutionID:            institutionID(spec.InstitutionID),
			InstitutionCheckDigit:    institutionCheckDigit(spec.InstitutionID),
			BatchNumber:              spec.BatchNumber,
		})

		for j, e := range spec.Entries {
			cfg, err := e.entryConfig()
			if err != nil {
				return nil, fmt.Errorf("batch %d entry %d: %w", i+1, j+1, err)
			}
			if _, err := batch.AddEntry(cfg); err != nil {
				return nil, fmt.Errorf("batch %d entry %d: %w", i+1, j+1, err)
			}
		}

		if spec.Source == "" {
			continue
		}
		payments, err := p.readSource(spec.Source, opts.Parser)
		if err != nil {
			return nil, fmt.Errorf("batch %d: %w", i+1, err)
		}
		for _, pay := range payments {
			if _, err := batch.AddEntry(pay.EntryConfig()); err != nil {
				return nil, fmt.Errorf("batch %d %s line %d: %w", i+1, spec.Source, pay.LineNumber(), err)
			}
		}
	}
	return file, nil
}

func (p *Plan) readSource(source string, prs *parser.Parser) ([]*models.Payment, error) {
	if prs == nil {
		return nil, fmt.Errorf("no parser configured for source %s", source)
	}
	path := p.sourcePath(source)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read source %s: %w", path, err)
	}
	payments, err := prs.ProcessBytes(data, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("failed to process source %s: %w", path, err)
	}
	return payments, nil
}

func (e EntrySpec) entryConfig() (nacha.EntryConfig, error) {
	amount := e.Amount
	if amount == "" {
		amount = "0"
	}
	payment, err := models.NewPayment(e.Name).
		SetID(e.ID).
		SetAccount(e.Account).
		SetRouting(e.Routing).
		SetCheckDigit(e.CheckDigit).
		SetAmount(amount).
		SetAccountType(e.AccountType).
		SetTransactionType(e.TransactionType).
		SetTransactionCode(e.TransactionCode).
		Build()
	if err != nil {
		return nacha.EntryConfig{}, err
	}
	cfg := payment.EntryConfig()
	cfg.TraceNumber = e.TraceNumber
	cfg.DiscretionaryData = e.DiscretionaryData
	cfg.AddendaIndicator = e.AddendaIndicator
	return cfg, nil
}

// institutionID accepts a full routing number and keeps the first eight digits.
func institutionID(routing string) string {
	if len(routing) == 9 {
		return routing[:8]
	}
	return routing
}

func institutionCheckDigit(routing string) int {
	if len(routing) == 9 && routing[8] >= '0' && routing[8] <= '9' {
		return int(routing[8] - '0')
	}
	return 0
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
