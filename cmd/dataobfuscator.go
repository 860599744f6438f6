package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/JustinTimperio/dataobfuscator/appended"
	"github.com/JustinTimperio/dataobfuscator/common"
	"github.com/JustinTimperio/dataobfuscator/framing"
	"github.com/JustinTimperio/dataobfuscator/header"
	"github.com/JustinTimperio/dataobfuscator/image"

	"github.com/dustin/go-humanize"
	"github.com/peterbourgon/ff/v3"
)

const (
	actionObfuscate   = "obfuscate"
	actionDeobfuscate = "deobfuscate"

	methodHeader = "header"
	methodAppend = "append"
	methodLSB    = "lsb"
)

func main() {
	err := run(os.Args[1:], os.Stdout)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

type options struct {
	action string
	method string
	data   string
	text   string
	input  string
	output string
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("dataobfuscator", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var opts options
	fs.StringVar(&opts.action, "action", "", "obfuscate or deobfuscate (may also be given as the first argument)")
	fs.StringVar(&opts.method, "method", "", "obfuscation method: header, append or lsb")
	fs.StringVar(&opts.data, "data", "", "file holding the data to obfuscate")
	fs.StringVar(&opts.text, "text", "", "literal data to obfuscate, instead of -data")
	fs.StringVar(&opts.input, "input", "", "carrier to hide the data in (obfuscate) or to recover it from (deobfuscate)")
	fs.StringVar(&opts.output, "output", "", "output file")
	_ = fs.String("config", "", "config file (optional)")

	// The action may also come first, before any flag.
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		opts.action = args[0]
		args = args[1:]
	}

	err := ff.Parse(fs, args,
		ff.WithEnvVarPrefix("DATAOBFUSCATOR"),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.PlainParser),
	)
	if errors.Is(err, flag.ErrHelp) {
		fs.SetOutput(stdout)
		fmt.Fprintln(stdout, "Usage of dataobfuscator: dataobfuscator [obfuscate|deobfuscate] [flags]")
		fs.PrintDefaults()
		return err
	}
	if err != nil {
		return err
	}
	if opts.action == "" && fs.NArg() > 0 {
		opts.action = fs.Arg(0)
	}

	if err := validate(&opts, stdout); err != nil {
		return err
	}

	var out []byte
	switch opts.action {
	case actionObfuscate:
		out, err = obfuscate(opts, stdout)
	case actionDeobfuscate:
		out, err = deobfuscate(opts, stdout)
	}
	if err != nil {
		return err
	}

	err = common.WriteData(opts.output, out)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, "Data written to", opts.output)

	return nil
}

// validate checks opts and fills in the default output path.
func validate(opts *options, stdout io.Writer) error {
	switch opts.method {
	case methodHeader, methodAppend, methodLSB:
	case "":
		return fmt.Errorf("Method is required! Use header, append or lsb")
	default:
		return fmt.Errorf("Invalid method %q! Use header, append or lsb", opts.method)
	}

	switch opts.action {
	case actionObfuscate:
		if opts.data == "" && opts.text == "" {
			return fmt.Errorf("Parameter -data or -text is required for the obfuscate action")
		}
		if opts.data != "" && opts.text != "" {
			return fmt.Errorf("Parameters -data and -text are mutually exclusive")
		}
		if opts.method == methodHeader && opts.input != "" {
			fmt.Fprintf(stdout, "Method 'header' does not take any input file. Input file %s will be ignored\n", opts.input)
			opts.input = ""
		}
		if opts.output == "" {
			extension := "jpg"
			if opts.method == methodLSB {
				extension = "png"
			}
			opts.output = common.DefaultObfuscatedPath(opts.data, opts.method, extension)
		}

	case actionDeobfuscate:
		if opts.input == "" {
			return fmt.Errorf("Parameter -input is required for the deobfuscate action")
		}
		if opts.output == "" {
			opts.output = common.DefaultRecoveredPath(opts.input)
		}

	case "":
		return fmt.Errorf("Action is required! Use obfuscate or deobfuscate")
	default:
		return fmt.Errorf("Invalid action %q! Use obfuscate or deobfuscate", opts.action)
	}

	return nil
}

func obfuscate(opts options, stdout io.Writer) ([]byte, error) {
	payload := []byte(opts.text)
	if opts.data != "" {
		var err error
		payload, err = common.ReadData(opts.data)
		if err != nil {
			return nil, err
		}
	}
	fmt.Fprintln(stdout, "Size of payload:", common.HumanFileSize(int64(len(payload))), "| MD5:", common.MD5Hash(payload))

	switch opts.method {
	case methodHeader:
		return header.Obfuscate(payload), nil

	case methodAppend:
		carrier, err := loadCarrier(opts.input, image.BlankSize, image.FormatJPEG)
		if err != nil {
			return nil, err
		}
		return appended.Obfuscate(payload, carrier), nil

	case methodLSB:
		carrier, err := loadCarrier(opts.input, image.BlankBigSize, image.FormatPNG)
		if err != nil {
			return nil, err
		}

		capacity, err := image.ConfigCapacity(carrier)
		if err != nil {
			return nil, err
		}
		fmt.Fprintln(stdout, "Image can hold up to", common.HumanFileSize(int64(max(0, capacity-framing.LengthPrefixBits)/8)),
			"of data |", humanize.Comma(int64(capacity)), "bits")

		return image.Obfuscate(payload, carrier, image.FormatFromPath(opts.output))
	}

	return nil, fmt.Errorf("Invalid method %q", opts.method)
}

func deobfuscate(opts options, stdout io.Writer) ([]byte, error) {
	carrier, err := common.ReadData(opts.input)
	if err != nil {
		return nil, err
	}

	var data []byte
	switch opts.method {
	case methodHeader:
		if !header.HasMagicHeader(carrier) {
			fmt.Fprintf(stdout, "Input file %s does not start with the expected header, recovered data may be corrupt\n", opts.input)
		}
		data = header.Deobfuscate(carrier)

	case methodAppend:
		data, err = appended.Deobfuscate(carrier)

	case methodLSB:
		data, err = image.Deobfuscate(carrier)

	default:
		err = fmt.Errorf("Invalid method %q", opts.method)
	}
	if err != nil {
		return nil, err
	}

	fmt.Fprintln(stdout, "Size of recovered data:", common.HumanFileSize(int64(len(data))), "| MD5:", common.MD5Hash(data))
	return data, nil
}

// loadCarrier reads the carrier at path, or generates a blank one when no
// path was given.
func loadCarrier(path string, blankSize int, blankFormat image.Format) ([]byte, error) {
	if path == "" {
		return image.BlankCarrier(blankSize, blankFormat)
	}
	return common.ReadData(path)
}
