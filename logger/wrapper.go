package logger

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime/debug"
	"strings"

	"github.com/rs/zerolog"
)

// WrapProcess runs executable with its stderr piped through the wrapper.
// JSON log lines are forwarded to stdout; a panic trace is collected and
// reported as one fatal entry when the process exits.
func WrapProcess(executable string, arg ...string) {
	wrapLogger := NewLogger("Logs wrapper")
	defer handlePanic(wrapLogger)

	r, w, err := os.Pipe()
	if err != nil {
		wrapLogger.Fatal().Err(err).Msg("Could not create pipe for logs")
	}

	cmd := exec.Command(executable, arg...)
	cmd.Stderr = w
	cmd.Stdout = os.Stdout

	if err = cmd.Start(); err != nil {
		wrapLogger.Fatal().Err(err).Msg("Could not launch main process")
	}
	exitCodeCh := make(chan int)
	logsCh := make(chan []byte)

	go waitForCommandToExit(cmd, wrapLogger, exitCodeCh)
	go collectLogs(r, wrapLogger, logsCh)

	lines := newLineHandler(os.Stdout, wrapLogger)
	for {
		select {
		case exitCode := <-exitCodeCh:
			handleExit(exitCode, lines.panicLogs(), wrapLogger)
		case line := <-logsCh:
			lines.handle(line)
		}
	}
}

func waitForCommandToExit(cmd *exec.Cmd, wrapLogger zerolog.Logger, exitCodeCh chan<- int) {
	defer handlePanic(wrapLogger)
	err := cmd.Wait()
	if err == nil {
		exitCodeCh <- 0
		return
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		exitCodeCh <- 1
		return
	}
	exitCodeCh <- exitErr.ExitCode()
}

func collectLogs(r io.Reader, wrapLogger zerolog.Logger, logsCh chan<- []byte) {
	defer handlePanic(wrapLogger)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := make([]byte, len(scanner.Bytes()))
		copy(line, scanner.Bytes())
		logsCh <- line
	}
	if err := scanner.Err(); err != nil {
		wrapLogger.Fatal().Err(err).Msg("Error scanning piped main process's Stderr")
	}
}

func handleExit(exitCode int, panicLogs string, wrapLogger zerolog.Logger) {
	if exitCode == 0 {
		wrapLogger.Info().Msg("Exited with code 0")
		os.Exit(0)
	}
	if panicLogs == "" {
		wrapLogger.Error().Msgf("Exited with code: %d", exitCode)
		os.Exit(exitCode)
	}
	wrapLogger.WithLevel(zerolog.FatalLevel).
		Err(errors.New(panicLogs)).
		Msgf("Panicked and exited with code: %d", exitCode)
	os.Exit(exitCode)
}

// lineHandler sorts the wrapped process's stderr lines. Everything after the
// first line starting with "panic" belongs to the panic trace.
type lineHandler struct {
	out        io.Writer
	wrapLogger zerolog.Logger
	foundPanic bool
	trace      strings.Builder
}

func newLineHandler(out io.Writer, wrapLogger zerolog.Logger) *lineHandler {
	return &lineHandler{out: out, wrapLogger: wrapLogger}
}

func (h *lineHandler) handle(line []byte) {
	if !h.foundPanic && strings.HasPrefix(string(line), "panic") {
		h.foundPanic = true
	}
	switch {
	case len(line) == 0:
	case h.foundPanic:
		h.trace.Write(line)
		h.trace.WriteByte('\n')
	case isJSON(line):
		_, _ = fmt.Fprintln(h.out, string(line))
	default:
		h.wrapLogger.Error().Msgf("Got log line that is not JSON formatted: '%s'", line)
	}
}

func (h *lineHandler) panicLogs() string {
	return h.trace.String()
}

func handlePanic(wrapLogger zerolog.Logger) {
	r := recover()
	if r == nil {
		return
	}
	wrapLogger.Fatal().
		Caller().
		Str("error", fmt.Sprint(r)).
		Str("stack_trace", string(debug.Stack())).
		Msg("Program panicked and exited")
}

func isJSON(b []byte) bool {
	var js json.RawMessage
	err := json.Unmarshal(b, &js)
	return err == nil && js != nil
}
