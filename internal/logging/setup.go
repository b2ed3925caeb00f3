package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global zerolog logger. When logstashAddr is set, log
// entries are mirrored there in addition to the console; the returned closer
// tears that mirror down and may be nil.
func Setup(level string, pretty bool, logstashAddr string) io.Closer {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	var console io.Writer = os.Stderr
	if pretty {
		console = zerolog.ConsoleWriter{Out: os.Stderr}
	}

	var closer io.Closer
	writer := console
	if logstashAddr != "" {
		if lw, err := NewLogstashWriter(logstashAddr); err == nil {
			writer = zerolog.MultiLevelWriter(console, lw)
			closer = lw
		} else {
			log.Warn().Err(err).Msg("logstash mirror disabled")
		}
	}

	log.Logger = zerolog.New(writer).With().Timestamp().Logger()
	return closer
}
