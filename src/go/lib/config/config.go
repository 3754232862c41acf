package config

import (
	"os/user"
	"strings"

	"github.com/go-ini/ini"
	log "github.com/sirupsen/logrus"
)

// Config holds the options read from Percona Toolkit configuration files.
// Files use key=value lines; a key without a value is a boolean flag.
type Config struct {
	section *ini.Section
}

func (c *Config) GetString(key string) string {
	if !c.HasKey(key) {
		return ""
	}
	return c.section.Key(key).String()
}

func (c *Config) GetBool(key string) bool {
	if !c.HasKey(key) {
		return false
	}
	v, err := c.section.Key(key).Bool()
	if err != nil {
		return false
	}
	return v
}

func (c *Config) HasKey(key string) bool {
	return c.section != nil && c.section.HasKey(key)
}

// DefaultConfigFiles returns the files read by DefaultConfig, lowest priority first.
func DefaultConfigFiles(toolName string) ([]string, error) {
	user, err := user.Current()
	if err != nil {
		return nil, err
	}

	files := []string{
		"/etc/percona-toolkit/percona-toolkit.conf",
		"/etc/percona-toolkit/${TOOLNAME}.conf",
		"${HOME}/.percona-toolkit.conf",
		"${HOME}/.${TOOLNAME}.conf",
	}

	for i := 0; i < len(files); i++ {
		files[i] = strings.Replace(files[i], "${TOOLNAME}", toolName, -1)
		files[i] = strings.Replace(files[i], "${HOME}", user.HomeDir, -1)
	}

	return files, nil
}

func DefaultConfig(toolname string) *Config {

	files, _ := DefaultConfigFiles(toolname)
	return NewConfig(files...)

}

// NewConfig reads the files in order, values in later files override earlier ones.
// Missing files are ignored.
func NewConfig(files ...string) *Config {
	sources := make([]interface{}, 0, len(files))
	for _, f := range files {
		sources = append(sources, f)
	}

	opts := ini.LoadOptions{
		Loose:               true,
		AllowBooleanKeys:    true,
		IgnoreInlineComment: true,
	}

	cfg := ini.Empty(opts)
	if len(sources) > 0 {
		var err error
		if cfg, err = ini.LoadSources(opts, sources[0], sources[1:]...); err != nil {
			log.Warnf("cannot read config files %v: %s", files, err)
			return &Config{}
		}
	}

	return &Config{section: cfg.Section(ini.DefaultSection)}
}
