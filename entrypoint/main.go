package main

import (
	"os"

	"github.com/alecthomas/kong"

	"text2phenotype.com/itn/logger"

	_ "text2phenotype.com/itn/grammars/en"
)

var cli struct {
	Build    BuildCmd    `cmd:"" help:"Compile grammars into the cache directory"`
	Classify ClassifyCmd `cmd:"" help:"Classify text from arguments or stdin and print the tagged document"`
	Serve    ServeCmd    `cmd:"" help:"Serve the tagging REST API"`
	Worker   WorkerCmd   `cmd:"" help:"Consume tagging tasks from RabbitMQ"`
	Wrap     WrapCmd     `cmd:"" help:"Run a command and forward its JSON logs, reporting panics"`
}

func main() {
	logger.SetupLogging()
	ctx := kong.Parse(&cli,
		kong.Name("itn"),
		kong.Description("Tokenize and classify text into semiotic classes"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	if err := ctx.Run(); err != nil {
		itnLogger := logger.NewLogger("Main")
		itnLogger.Error().Err(err).Str("command", ctx.Command()).Msg("Command failed")
		os.Exit(1)
	}
}
