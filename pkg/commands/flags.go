package commands

import (
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/spf13/pflag"
)

type logLevelValue struct {
	level *logger.Level
}

var _ pflag.Value = logLevelValue{}

func (v logLevelValue) String() string {
	if v.level == nil {
		return logger.LevelUndefined.String()
	}
	return v.level.String()
}

func (v logLevelValue) Set(s string) error {
	return v.level.Set(s)
}

func (v logLevelValue) Type() string {
	return "level"
}

// LogLevelVar defines a logging level flag; the current value of p is the default.
func LogLevelVar(flagSet *pflag.FlagSet, p *logger.Level, name, usage string) {
	flagSet.Var(logLevelValue{level: p}, name, usage)
}
