package service

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/yurifrl/achu/pkg/config"
	"github.com/yurifrl/achu/pkg/executors"
	"github.com/yurifrl/achu/pkg/parser"
	"github.com/yurifrl/achu/pkg/plan"
)

// Processor renders every plan found in a directory.
type Processor struct {
	config   *config.Config
	logger   *log.Logger
	parser   *parser.Parser
	executor *executors.Executor
}

func NewProcessor(config *config.Config, logger *log.Logger) *Processor {
	return &Processor{
		config:   config,
		logger:   logger,
		parser:   parser.New(logger),
		executor: executors.New(logger, config, nil),
	}
}

// ProcessDirectory renders each *.yaml or *.yml plan in dir to <name>.ach.
// Plans that fail are logged and skipped. It returns the written paths.
func (p *Processor) ProcessDirectory(dir string, now time.Time) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("error reading directory: %w", err)
	}

	var written []string
	for _, entry := range entries {
		out, err := p.processEntry(dir, entry, now)
		if err != nil {
			p.logger.Error("failed to process entry", "file", entry.Name(), "error", err)
			continue
		}
		if out != "" {
			written = append(written, out)
		}
	}
	return written, nil
}

func (p *Processor) processEntry(dir string, entry os.DirEntry, now time.Time) (string, error) {
	if entry.IsDir() {
		return "", nil
	}

	fileName := strings.ToLower(entry.Name())
	if !strings.HasSuffix(fileName, ".yaml") && !strings.HasSuffix(fileName, ".yml") {
		return "", nil
	}

	inputPath := filepath.Join(dir, entry.Name())
	outFile := p.determineOutputPath(inputPath, entry.Name())
	p.logger.Info("processing plan", "path", inputPath)

	pl, err := plan.Load(inputPath)
	if err != nil {
		return "", err
	}
	f, err := pl.Build(plan.BuildOptions{Now: now, Defaults: p.config.File, Parser: p.parser})
	if err != nil {
		return "", fmt.Errorf("error building file: %w", err)
	}
	if err := p.executor.Apply(f, outFile); err != nil {
		return "", err
	}

	p.logger.Info("processed plan successfully", "input", inputPath, "output", outFile)
	return outFile, nil
}

func (p *Processor) determineOutputPath(inputPath, fileName string) string {
	ext := filepath.Ext(fileName)
	baseName := strings.TrimSuffix(fileName, ext)
	if p.config.GetOutputPath() != "" {
		return filepath.Join(p.config.GetOutputPath(), baseName+".ach")
	}
	return strings.TrimSuffix(inputPath, ext) + ".ach"
}
