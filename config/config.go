// Package config loads lcr4500 settings from a YAML file.
//
// Example file:
//
//	device:
//	  index: 0
//	  command_delay: 20ms
//	  strict_replies: false
//	pattern:
//	  input_source: video
//	  num_patterns: 3
//	  trigger: vsync
//	  rate: 222Hz
//	  bit_depth: 7
//	  leds: [red, green, blue]
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/moffa90/go-lcr4500/controller"
	"github.com/moffa90/go-lcr4500/protocol"
	"github.com/moffa90/go-lcr4500/usb"
	"gopkg.in/yaml.v2"
	"periph.io/x/conn/v3/physic"
)

// Config is the top-level configuration file.
type Config struct {
	Device  Device  `yaml:"device"`
	Pattern Pattern `yaml:"pattern"`
}

// Device selects the USB device and tunes the controller.
type Device struct {
	Index         int           `yaml:"index"`
	CommandDelay  time.Duration `yaml:"command_delay"`
	StrictReplies bool          `yaml:"strict_replies"`
	SequenceTag   uint8         `yaml:"sequence_tag"`
}

// Pattern holds the pattern mode settings. Names are parsed with the
// protocol package's Parse functions.
type Pattern struct {
	InputSource  string   `yaml:"input_source"`
	NumPatterns  int      `yaml:"num_patterns"`
	Trigger      string   `yaml:"trigger"`
	FirstTrigger string   `yaml:"first_trigger"`
	Rate         string   `yaml:"rate"`
	Period       uint32   `yaml:"period"`
	BitDepth     int      `yaml:"bit_depth"`
	LEDs         []string `yaml:"leds"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Device: Device{
			CommandDelay: 20 * time.Millisecond,
		},
		Pattern: Pattern{
			InputSource:  "video",
			NumPatterns:  controller.MaxPatterns,
			Trigger:      "vsync",
			FirstTrigger: "internal",
			Rate:         "222Hz",
			BitDepth:     7,
			LEDs:         []string{"red", "green", "blue"},
		},
	}
}

// Load reads path on top of the defaults. Unknown keys are an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not open config file: %v", err)
	}
	return Parse(data)
}

// Parse decodes YAML data on top of the defaults.
func Parse(data []byte) (*Config, error) {
	c := Default()
	if err := yaml.UnmarshalStrict(data, c); err != nil {
		return nil, fmt.Errorf("could not parse config file: %v", err)
	}
	return c, nil
}

// USB returns the options for usb.Open.
func (d Device) USB() usb.Options {
	opts := usb.DefaultOptions()
	opts.Index = d.Index
	return opts
}

// Options returns the controller options for d.
func (d Device) Options() []controller.Option {
	return []controller.Option{
		controller.WithCommandDelay(d.CommandDelay),
		controller.WithStrictReplies(d.StrictReplies),
		controller.WithSequenceTag(d.SequenceTag),
	}
}

// Options converts p to controller.PatternModeOptions.
func (p Pattern) Options() (controller.PatternModeOptions, error) {
	opts := controller.DefaultPatternModeOptions()

	source, err := protocol.ParseInputSource(p.InputSource)
	if err != nil {
		return opts, err
	}
	trigger, err := protocol.ParseTriggerMode(p.Trigger)
	if err != nil {
		return opts, err
	}
	first, err := protocol.ParseTriggerType(p.FirstTrigger)
	if err != nil {
		return opts, err
	}
	leds, err := ParseLEDs(p.LEDs)
	if err != nil {
		return opts, err
	}
	if p.BitDepth < 0 || p.BitDepth > 0xFF || !protocol.BitDepth(p.BitDepth).Valid() {
		return opts, &protocol.EncodingError{Field: "bit depth", Value: uint64(p.BitDepth), Reason: "must be one of 1, 2, 4, 7, 8"}
	}

	opts.InputSource = source
	opts.NumPatterns = p.NumPatterns
	opts.Trigger = trigger
	opts.FirstTrigger = first
	opts.BitDepth = protocol.BitDepth(p.BitDepth)
	opts.LEDs = leds
	opts.Period = p.Period

	if p.Period == 0 {
		var rate physic.Frequency
		if err := rate.Set(p.Rate); err != nil {
			return opts, fmt.Errorf("rate %q: %w", p.Rate, err)
		}
		opts.Rate = rate
	}

	return opts, nil
}

var ledNames = map[string]byte{
	"red":   protocol.LEDRed,
	"green": protocol.LEDGreen,
	"blue":  protocol.LEDBlue,
	"all":   protocol.LEDAll,
}

// ParseLEDs combines LED names ("red", "green", "blue" or "all") into a mask.
// Each element may itself be a comma-separated list.
func ParseLEDs(names []string) (byte, error) {
	var mask byte
	for _, name := range names {
		for _, part := range strings.Split(name, ",") {
			part = strings.ToLower(strings.TrimSpace(part))
			if part == "" {
				continue
			}
			led, ok := ledNames[part]
			if !ok {
				return 0, &protocol.EncodingError{Field: "led select", Name: part, Reason: "unrecognized name"}
			}
			mask |= led
		}
	}
	return mask, nil
}
