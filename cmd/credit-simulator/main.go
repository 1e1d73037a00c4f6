package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/iwvelando/credit-wizard/internal/config"
	"github.com/iwvelando/credit-wizard/internal/logging"
	"github.com/iwvelando/credit-wizard/internal/simulator"
	"github.com/iwvelando/credit-wizard/pkg/constants"
	"github.com/iwvelando/credit-wizard/pkg/output"
	"github.com/iwvelando/credit-wizard/pkg/validation"
)

func main() {
	configLocation := flag.String("config", "", "path to configuration file (optional)")
	amountFlag := flag.String("amount", fmt.Sprintf("%.0f", constants.DefaultLoanAmount), "loan amount in CHF, e.g. 10'000")
	durationFlag := flag.String("duration", fmt.Sprintf("%d", constants.DefaultDurationMonths), "duration in months")
	guarantee := flag.Bool("guarantee", false, "add the payment guarantee")
	property := flag.Bool("property", false, "the applicant owns property")
	schedule := flag.Bool("schedule", false, "print the amortization schedules")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	conf := config.Default()
	if *configLocation != "" {
		loaded, err := config.LoadConfiguration(*configLocation)
		if err != nil {
			fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
			os.Exit(1)
		}
		conf = loaded
	}

	logger, err := logging.New(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	amount, err := simulator.ParseAmount(*amountFlag)
	if err != nil {
		logger.Fatal("invalid amount",
			zap.String("op", "main"),
			zap.String("amount", *amountFlag),
			zap.Error(err),
		)
	}
	duration, err := simulator.ParseDuration(*durationFlag)
	if err != nil {
		logger.Fatal("invalid duration",
			zap.String("op", "main"),
			zap.String("duration", *durationFlag),
			zap.Error(err),
		)
	}

	in := simulator.Input{
		Amount:         amount,
		DurationMonths: duration,
		HasGuarantee:   *guarantee,
		HasProperty:    *property,
	}
	result, err := simulator.Calculate(conf.Simulator.Tariff, in, time.Now())
	if err != nil {
		logger.Fatal("failed to compute simulation",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	report := output.NewReport(simulator.Snapshot{Input: in, Result: result}, *schedule)
	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(os.Stdout, report)
	case constants.OutputFormatCSV:
		if err := output.CsvFormat(os.Stdout, report); err != nil {
			logger.Fatal("failed to write csv",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	}
}
