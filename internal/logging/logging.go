package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup points the global logger at w (stderr when nil). Command output goes
// to stdout, so logs never interleave with it.
func Setup(w io.Writer, verbose bool) {
	if w == nil {
		w = os.Stderr
	}
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		With().
		Timestamp().
		Logger()
}
