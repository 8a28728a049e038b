package types

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"text2phenotype.com/itn/logger"
)

const DefaultLanguage = "en"

// Configuration selects and tunes one classify grammar.
type Configuration struct {
	Name     string `yaml:"-" json:"name"`
	FilePath string `yaml:"-" json:"file_path"`

	Language         string             `yaml:"language" json:"language"`
	Direction        string             `yaml:"direction" json:"direction"`
	CacheDir         string             `yaml:"cache_dir" json:"cache_dir,omitempty"`
	OverwriteCache   bool               `yaml:"overwrite_cache" json:"overwrite_cache"`
	ExcludedClasses  map[string]bool    `yaml:"excluded_classes" json:"excluded_classes,omitempty"`
	ClassWeights     map[string]float64 `yaml:"class_weights" json:"class_weights,omitempty"`
	ExtraSpaceWeight float64            `yaml:"extra_space_weight" json:"extra_space_weight,omitempty"`
	WhitelistFile    string             `yaml:"whitelist_file" json:"whitelist_file,omitempty"`
}

// ParseConfiguration reads one YAML document. A relative whitelist_file is
// resolved against baseDir.
func ParseConfiguration(buf []byte, baseDir string) (Configuration, error) {
	var cfg Configuration
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return cfg, err
	}
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	if cfg.WhitelistFile != "" && !filepath.IsAbs(cfg.WhitelistFile) && baseDir != "" {
		cfg.WhitelistFile = filepath.Join(baseDir, cfg.WhitelistFile)
	}
	return cfg, nil
}

func LoadConfiguration(path string) (Configuration, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return Configuration{}, err
	}
	cfg, err := ParseConfiguration(buf, filepath.Dir(path))
	if err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	cfg.FilePath = path
	return cfg, nil
}

// LoadConfigurations loads every *.yaml file of dirPath. Files that fail to
// parse are logged and skipped.
func LoadConfigurations(dirPath string) ([]Configuration, error) {
	itnLogger := logger.NewLogger("LoadConfigurations")

	files, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, err
	}

	var wg sync.WaitGroup
	configChan := make(chan Configuration, len(files))
	for _, f := range files {
		// Skip dirs and non-yaml files
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".yaml") {
			continue
		}

		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			cfg, err := LoadConfiguration(filepath.Join(dirPath, name))
			if err != nil {
				itnLogger.Error().Caller().Err(err).Msg("Skipping configuration")
				return
			}
			configChan <- cfg
		}(f.Name())
	}

	go func() {
		wg.Wait()
		close(configChan)
	}()

	configs := make([]Configuration, 0, len(files))
	for cfg := range configChan {
		configs = append(configs, cfg)
	}
	sort.Slice(configs, func(i, j int) bool {
		return configs[i].Name < configs[j].Name
	})
	return configs, nil
}
