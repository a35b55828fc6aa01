package config

import (
	"btget/bencode"

	"github.com/juju/errors"
	"github.com/sirupsen/logrus"
	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/logx"
)

type DatabaseConf struct {
	Driver string `json:",default=sqlite,options=sqlite|mysql"`
	DSN    string `json:",default=btget.db"`
}

type Config struct {
	LogLevel        string `json:",default=info,options=debug|info|warn|error"`
	Format          string `json:",default=text,options=text|json|yaml"`
	MaxDepth        int    `json:",default=512"`
	Strict          bool   `json:",optional"`
	Database        DatabaseConf
	Workers         int    `json:",default=4"`
	QueueSize       int    `json:",default=64"`
	BloomFilterBits uint64 `json:",default=8388608"`
	BloomFilterPath string `json:",optional"`
}

// Load reads a YAML or JSON config file. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	c := &Config{}
	var err error
	if path == "" {
		err = conf.LoadFromJsonBytes([]byte("{}"), c)
	} else {
		err = conf.Load(path, c)
	}
	if err != nil {
		return nil, errors.Annotatef(err, "load config %q", path)
	}
	return c, nil
}

func (c *Config) SetUp() error {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return errors.Trace(err)
	}
	logrus.SetLevel(level)
	logx.SetLevel(logxLevel(level))
	return nil
}

func logxLevel(level logrus.Level) uint32 {
	switch {
	case level >= logrus.DebugLevel:
		return logx.DebugLevel
	case level == logrus.InfoLevel:
		return logx.InfoLevel
	case level >= logrus.ErrorLevel:
		return logx.ErrorLevel
	}
	return logx.SevereLevel
}

func (c *Config) MustSetUp() {
	if err := c.SetUp(); err != nil {
		logrus.Fatalf("Failed to set up config. %v", err)
	}
}

// DecodeOptions translates the decoder settings into bencode options.
func (c *Config) DecodeOptions() []bencode.Option {
	return []bencode.Option{
		bencode.WithMaxDepth(c.MaxDepth),
		bencode.WithStrict(c.Strict),
	}
}
