package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/reoring/schemaguard/compat"
	"github.com/reoring/schemaguard/i18n"
	"github.com/reoring/schemaguard/registry"
	"github.com/reoring/schemaguard/suite"
	"github.com/reoring/schemaguard/validator"
)

const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
	formatText = "text"
	formatJSON = "json"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "schemaguard checks a JSON Schema repository\n\nUsage:\n  schemaguard compat [flags]   compatibility of adjacent materialized versions\n  schemaguard robust [flags]   lint, metaschema and example checks\n  schemaguard check  [flags]   both\n\nRun 'schemaguard <command> -h' for flags.")
}

type options struct {
	base          string
	contentTypes  string
	configFile    string
	logLevel      string
	format        string
	lang          string
	removedFields bool
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		usage(stderr)
		return exitUsage
	}
	sub := args[0]
	switch sub {
	case "compat", "robust", "check":
	case "-h", "--help", "help":
		usage(stdout)
		return exitOK
	default:
		usage(stderr)
		return exitUsage
	}

	fs := flag.NewFlagSet(sub, flag.ContinueOnError)
	fs.SetOutput(stderr)
	var o options
	fs.StringVar(&o.base, "base", "", "schema repository root (default from config, else \".\")")
	fs.StringVar(&o.contentTypes, "content-types", "", "comma-separated content types; the first is primary")
	fs.StringVar(&o.configFile, "config", "", "config file (default "+registry.DefaultConfigFile+" when present)")
	fs.StringVar(&o.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&o.format, "format", formatText, "report format: text or json")
	fs.StringVar(&o.lang, "lang", "en", "message language: en or ja")
	fs.BoolVar(&o.removedFields, "removed-fields-breaking", false, "treat removed schema fields as incompatible")
	if err := fs.Parse(args[1:]); err != nil {
		if err == flag.ErrHelp {
			return exitOK
		}
		return exitUsage
	}
	if o.format != formatText && o.format != formatJSON {
		fmt.Fprintf(stderr, "unknown format %q\n", o.format)
		return exitUsage
	}
	tag, err := language.Parse(o.lang)
	if err != nil {
		fmt.Fprintf(stderr, "invalid language %q: %v\n", o.lang, err)
		return exitUsage
	}
	base, _ := tag.Base()
	i18n.SetLanguage(base.String())
	defer i18n.SetTranslator(nil)

	cfg, err := registry.ReadConfig(o.configOptions())
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	logger := newLogger(cfg.Level(), stderr)
	defer func() { _ = logger.Sync() }()

	reg := registry.New(cfg, registry.WithLogger(logger))
	var roots []*suite.Group
	if sub == "compat" || sub == "check" {
		var copts []compat.Option
		if o.removedFields {
			copts = append(copts, compat.WithRemovedFieldsBreaking())
		}
		root, err := suite.DeclareCompatibility(reg, copts...)
		if err != nil {
			logger.Error("declaring compatibility checks", zap.Error(err))
			return exitFailed
		}
		roots = append(roots, root)
	}
	if sub == "robust" || sub == "check" {
		v, err := validator.New()
		if err != nil {
			logger.Error("building validator", zap.Error(err))
			return exitFailed
		}
		root, err := suite.DeclareRobustness(reg, v, validator.NewCache(validator.WithLogger(logger)))
		if err != nil {
			logger.Error("declaring robustness checks", zap.Error(err))
			return exitFailed
		}
		roots = append(roots, root)
	}

	reports := make([]*suite.Report, 0, len(roots))
	ok := true
	for _, root := range roots {
		rep := suite.Run(root, suite.WithLogger(logger))
		ok = ok && rep.OK()
		reports = append(reports, rep)
	}

	switch o.format {
	case formatJSON:
		err = writeJSON(stdout, reports)
	default:
		err = writeText(stdout, reports)
	}
	if err != nil {
		logger.Error("writing report", zap.Error(err))
		return exitFailed
	}
	if !ok {
		return exitFailed
	}
	return exitOK
}

// configOptions passes only the flags that were set so the config file and
// defaults fill the rest.
func (o options) configOptions() map[string]any {
	opts := map[string]any{}
	if o.base != "" {
		opts["schemaBasePath"] = o.base
	}
	if ct := strings.TrimSpace(o.contentTypes); ct != "" {
		opts["contentTypes"] = ct
	}
	if o.configFile != "" {
		opts["configFile"] = o.configFile
	}
	if o.logLevel != "" {
		opts["logLevel"] = o.logLevel
	}
	return opts
}
