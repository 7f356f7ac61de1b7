// Command subghzcat decodes a captured stream of sub-GHz keyfob edge
// events against one of the registered protocol codecs and prints every
// frame it manages to decode.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/limbo111111/protopirate/subghz"
)

// edgeRecord is one line of a JSON-lines edge-event capture:
// {"level":true,"duration_us":500}
type edgeRecord struct {
	Level      bool   `json:"level"`
	DurationUs uint32 `json:"duration_us"`
}

// timingOverrides is the shape of a --timing-overrides YAML file: a map
// from protocol name to the TEDelta (in microseconds) an operator wants
// to retune for a noisy capture, without recompiling.
type timingOverrides map[string]struct {
	TEDelta uint32 `yaml:"te_delta"`
}

func main() {
	var protocol = pflag.StringP("protocol", "p", "", "protocol name to decode against (see --list)")
	var inputPath = pflag.StringP("input", "i", "-", "path to a JSON-lines edge-event capture, or - for stdin")
	var overridesPath = pflag.StringP("timing-overrides", "t", "", "YAML file of per-protocol te_delta overrides")
	var listProtocols = pflag.BoolP("list", "l", false, "list registered protocol names and exit")
	var verbose = pflag.BoolP("verbose", "v", false, "enable debug logging")
	pflag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false})
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	}

	if *listProtocols {
		for _, name := range subghz.Names() {
			fmt.Println(name)
		}
		return
	}

	if *protocol == "" {
		logger.Fatal("missing required flag", "flag", "--protocol")
	}

	proto := subghz.Lookup(*protocol)
	if proto == nil {
		logger.Fatal("unknown protocol", "protocol", *protocol, "known", subghz.Names())
	}

	if *overridesPath != "" {
		if err := applyTimingOverrides(*overridesPath, logger); err != nil {
			logger.Fatal("failed to apply timing overrides", "err", err)
		}
	}

	in, err := openInput(*inputPath)
	if err != nil {
		logger.Fatal("failed to open input", "path", *inputPath, "err", err)
	}
	defer in.Close()

	dec := proto.NewDecoder()
	var count int
	dec.SetCallback(func(p subghz.Packet) {
		count++
		emitPacket(p)
	})

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var lineNum int
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec edgeRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			logger.Warn("skipping unparseable line", "line", lineNum, "err", err)
			continue
		}
		dec.Feed(rec.Level, subghz.ClampDuration(rec.DurationUs))
	}
	if err := scanner.Err(); err != nil {
		logger.Fatal("error reading input", "err", err)
	}

	logger.Info("done", "decoded", count)
}

func openInput(path string) (*os.File, error) {
	if path == "-" {
		return os.Stdin, nil
	}
	return os.Open(path)
}

func applyTimingOverrides(path string, logger *log.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var overrides timingOverrides
	if err := yaml.NewDecoder(f).Decode(&overrides); err != nil {
		return err
	}

	for name, o := range overrides {
		tp := subghz.TimingProfileFor(name)
		if tp == nil {
			logger.Warn("timing override for unknown protocol, ignored", "protocol", name)
			continue
		}
		tp.TEDelta = o.TEDelta
		logger.Debug("applied timing override", "protocol", name, "te_delta", o.TEDelta)
	}
	return nil
}

func emitPacket(p subghz.Packet) {
	out, err := yaml.Marshal(p)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to marshal packet: %v\n", err)
		return
	}
	fmt.Print("---\n", string(out))
}
