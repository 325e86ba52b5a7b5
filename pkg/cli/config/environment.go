package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
	"gopkg.in/ini.v1"

	"github.com/labkey/pushdist/pkg/domain/model"
	"github.com/labkey/pushdist/pkg/domain/types"
)

const (
	defaultEnvironment  = "prod"
	defaultTeamCityURL  = "https://teamcity.labkey.org"
	defaultBucketRegion = "us-east-1"
	defaultTemplateDir  = "/templates"
	configFileName      = "pushdist.cfg"
)

// Environment holds the location of the environment config file and the
// section to read from it
type Environment struct {
	ConfigPath  string
	Name        string
	TemplateDir string
}

// Flags returns CLI flags for environment configuration
func (c *Environment) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "Environment config file (INI, or TOML when the name ends in .toml)",
			Value:       defaultConfigPath(),
			Destination: &c.ConfigPath,
			Sources:     cli.EnvVars("PUSHDIST_CONFIG"),
		},
		&cli.StringFlag{
			Name:        "environment",
			Aliases:     []string{"e"},
			Usage:       "Environment to use for configuration (section of the config file)",
			Value:       defaultEnvironment,
			Destination: &c.Name,
			Sources:     cli.EnvVars("PUSHDIST_ENV"),
		},
		&cli.StringFlag{
			Name:        "template-dir",
			Usage:       "Directory holding wiki and message templates (overrides TemplateDirectoryPath)",
			Destination: &c.TemplateDir,
			Sources:     cli.EnvVars("PUSHDIST_TEMPLATE_DIR"),
		},
	}
}

// defaultConfigPath places the config file next to the executable
func defaultConfigPath() string {
	exe, err := os.Executable()
	if err != nil {
		return configFileName
	}
	return filepath.Join(filepath.Dir(exe), configFileName)
}

// environmentSection mirrors the keys of one config file section
type environmentSection struct {
	LabkeyServerUrl       string `toml:"LabkeyServerUrl"`
	ContextPath           string `toml:"ContextPath"`
	BuildInfoRoot         string `toml:"BuildInfoRoot"`
	OpsDirPath            string `toml:"OpsDirPath"`
	IssuesListPath        string `toml:"IssuesListPath"`
	CacheDirectoryPath    string `toml:"CacheDirectoryPath"`
	UseSsl                bool   `toml:"UseSsl"`
	S3Bucket              string `toml:"S3Bucket"`
	S3Region              string `toml:"S3Region"`
	S3CredentialFilePath  string `toml:"S3CredentialFilePath"`
	TeamCityUrl           string `toml:"TeamCityUrl"`
	TemplateDirectoryPath string `toml:"TemplateDirectoryPath"`
}

// Load reads the configured section and resolves it into a model.Environment.
// Relative paths in the file are resolved against the config file directory.
func (c *Environment) Load() (*model.Environment, error) {
	name := c.Name
	if name == "" {
		name = defaultEnvironment
	}

	var (
		sec *environmentSection
		err error
	)
	if strings.EqualFold(filepath.Ext(c.ConfigPath), ".toml") {
		sec, err = loadTOMLSection(c.ConfigPath, name)
	} else {
		sec, err = loadINISection(c.ConfigPath, name)
	}
	if err != nil {
		return nil, err
	}

	if sec.LabkeyServerUrl == "" {
		return nil, goerr.New("LabkeyServerUrl is not set", goerr.V("environment", name), goerr.V("path", c.ConfigPath))
	}
	if sec.CacheDirectoryPath == "" {
		return nil, goerr.New("CacheDirectoryPath is not set", goerr.V("environment", name), goerr.V("path", c.ConfigPath))
	}

	baseDir := filepath.Dir(c.ConfigPath)
	env := &model.Environment{
		Name:           name,
		ServerHost:     sec.LabkeyServerUrl,
		ContextPath:    sec.ContextPath,
		BuildInfoRoot:  sec.BuildInfoRoot,
		OpsDirPath:     sec.OpsDirPath,
		IssuesListPath: sec.IssuesListPath,
		CacheDir:       filepath.Join(baseDir, sec.CacheDirectoryPath),
		UseSSL:         sec.UseSsl,
		Bucket:         sec.S3Bucket,
		BucketRegion:   sec.S3Region,
		TeamCityURL:    strings.TrimRight(sec.TeamCityUrl, "/"),
	}
	if env.BuildInfoRoot == "/" {
		env.BuildInfoRoot = ""
	}
	if sec.S3CredentialFilePath != "" {
		env.CredentialFile = filepath.Join(baseDir, sec.S3CredentialFilePath)
	}
	if env.BucketRegion == "" {
		env.BucketRegion = defaultBucketRegion
	}
	if env.TeamCityURL == "" {
		env.TeamCityURL = defaultTeamCityURL
	}

	switch {
	case c.TemplateDir != "":
		env.TemplateDir = c.TemplateDir
	case sec.TemplateDirectoryPath != "":
		env.TemplateDir = filepath.Join(baseDir, sec.TemplateDirectoryPath)
	default:
		env.TemplateDir = filepath.Join(baseDir, defaultTemplateDir)
	}

	return env, nil
}

func loadINISection(path, name string) (*environmentSection, error) {
	// Keys are case-insensitive and section names case-sensitive, as in configparser.
	f, err := ini.LoadSources(ini.LoadOptions{InsensitiveKeys: true}, path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V("path", path))
	}

	s, err := f.GetSection(name)
	if err != nil {
		return nil, goerr.Wrap(types.ErrEnvironmentNotFound, "specified environment not found in config file",
			goerr.V("environment", name), goerr.V("path", path))
	}

	get := func(key string) string {
		return strings.TrimSpace(s.Key(strings.ToLower(key)).String())
	}

	return &environmentSection{
		LabkeyServerUrl:       get("LabkeyServerUrl"),
		ContextPath:           get("ContextPath"),
		BuildInfoRoot:         get("BuildInfoRoot"),
		OpsDirPath:            get("OpsDirPath"),
		IssuesListPath:        get("IssuesListPath"),
		CacheDirectoryPath:    get("CacheDirectoryPath"),
		UseSsl:                strings.EqualFold(get("UseSsl"), "true"),
		S3Bucket:              get("S3Bucket"),
		S3Region:              get("S3Region"),
		S3CredentialFilePath:  get("S3CredentialFilePath"),
		TeamCityUrl:           get("TeamCityUrl"),
		TemplateDirectoryPath: get("TemplateDirectoryPath"),
	}, nil
}

func loadTOMLSection(path, name string) (*environmentSection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V("path", path))
	}

	var sections map[string]environmentSection
	if err := toml.Unmarshal(data, &sections); err != nil {
		return nil, goerr.Wrap(err, "failed to parse config file", goerr.V("path", path))
	}

	sec, ok := sections[name]
	if !ok {
		return nil, goerr.Wrap(types.ErrEnvironmentNotFound, "specified environment not found in config file",
			goerr.V("environment", name), goerr.V("path", path))
	}
	return &sec, nil
}
