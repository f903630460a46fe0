// Command fixcodec inspects schemas and converts values to and from their
// fixed-width binary encoding.
//
//	fixcodec -schema types.yaml check
//	fixcodec -schema types.yaml -type Bar layout
//	fixcodec -schema types.yaml -type Bar -value '{something: 16, ...}' encode
//	fixcodec -schema types.yaml -type Bar decode 0010 000100 00df 11012c 000000
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/oy3o/fixcodec"
	"github.com/oy3o/fixcodec/internal/config"
	"github.com/oy3o/fixcodec/schema"
)

const usage = `Usage: fixcodec [flags] <command> [args]

Commands:
  check    load the schema and list every type with its size
  layout   show the byte layout of -type (every type when -type is empty)
  encode   read YAML values (-value or stdin) and print their encoding as hex
  decode   read hex records (args or stdin) and print them as YAML

Flags:
`

var errUsage = errors.New("usage")

// env is what a command runs against.
type env struct {
	cfg    *config.Config
	schema *schema.Schema
	log    *zap.Logger
	value  string

	stdin  io.Reader
	stdout io.Writer
	color  bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("fixcodec", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	var (
		configFile = fs.String("config", "", "Path to a TOML config file")
		schemaFile = fs.String("schema", "", "Path to the schema document (.yaml, .yml or .toml)")
		typeRef    = fs.String("type", "", "Type to work on, e.g. Bar or [4]Bar")
		value      = fs.String("value", "", "YAML value to encode (default: stdin)")
		color      = fs.String("color", "", "Colour output: auto, always or never")
		verbose    = fs.Bool("v", false, "Verbose (debug) logging")
	)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return 2
	}

	cfg := config.Default()
	if *configFile != "" {
		var err error
		if cfg, err = config.Load(*configFile); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}
	if *schemaFile != "" {
		cfg.Schema = *schemaFile
	}
	if *typeRef != "" {
		cfg.Type = *typeRef
	}
	if *color != "" {
		cfg.Color = *color
	}
	if *verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	log, err := newLogger(cfg, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer log.Sync()
	fixcodec.SetLogger(log)
	defer fixcodec.SetLogger(nil)

	e := &env{
		cfg:    cfg,
		log:    log,
		value:  *value,
		stdin:  stdin,
		stdout: stdout,
		color:  useColor(cfg.Color, stdout),
	}

	if err := e.dispatch(fs.Arg(0), fs.Args()[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fs.Usage()
			return 2
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func (e *env) dispatch(cmd string, args []string) error {
	var handler func([]string) error
	switch cmd {
	case "check":
		handler = e.check
	case "layout":
		handler = e.layout
	case "encode":
		handler = e.encode
	case "decode":
		handler = e.decode
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}

	if e.cfg.Schema == "" {
		return errors.New("no schema given (-schema or schema in the config file)")
	}
	doc, err := schema.LoadFile(e.cfg.Schema)
	if err != nil {
		return err
	}
	if e.schema, err = schema.Build(doc); err != nil {
		return err
	}
	e.log.Debug("schema loaded", zap.String("path", e.cfg.Schema), zap.Int("types", len(e.schema.Names())))

	return handler(args)
}

// target resolves the configured type.
func (e *env) target() (fixcodec.Type, error) {
	if e.cfg.Type == "" {
		return nil, errors.New("no type given (-type or type in the config file)")
	}
	return e.schema.Resolve(e.cfg.Type)
}

func newLogger(cfg *config.Config, stderr io.Writer) (*zap.Logger, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	enc := zap.NewDevelopmentEncoderConfig()
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(stderr), level)
	return zap.New(core), nil
}
