package main

import (
	"reflect"
	"testing"

	"github.com/moffa90/go-lcr4500/config"
	"github.com/spf13/cobra"
	"periph.io/x/conn/v3/physic"
)

func TestFrequencyValue(t *testing.T) {
	var f physic.Frequency
	v := &frequencyValue{&f}

	if err := v.Set("120Hz"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if f != 120*physic.Hertz {
		t.Errorf("frequency = %s, want 120Hz", f)
	}
	if v.String() != "120Hz" {
		t.Errorf("String() = %q, want %q", v.String(), "120Hz")
	}
	if v.Type() != "frequency" {
		t.Errorf("Type() = %q", v.Type())
	}
	if err := v.Set("fast"); err == nil {
		t.Error("Set() should reject a malformed frequency")
	}
}

func TestPatternFlags(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		modify func(p *config.Pattern)
	}{
		{
			name:   "no flags keep the config",
			args:   nil,
			modify: func(p *config.Pattern) {},
		},
		{
			name: "rate",
			args: []string{"--rate", "60Hz"},
			modify: func(p *config.Pattern) {
				p.Rate = "60Hz"
			},
		},
		{
			name: "fps",
			args: []string{"--fps", "222"},
			modify: func(p *config.Pattern) {
				p.Period = 4504
			},
		},
		{
			name: "period and depth",
			args: []string{"--period", "10000", "--bit-depth", "8"},
			modify: func(p *config.Pattern) {
				p.Period = 10000
				p.BitDepth = 8
			},
		},
		{
			name: "source, trigger, patterns and leds",
			args: []string{"--source", "flash", "--trigger", "vsync", "--patterns", "1", "--leds", "red,blue"},
			modify: func(p *config.Pattern) {
				p.InputSource = "flash"
				p.Trigger = "vsync"
				p.NumPatterns = 1
				p.LEDs = []string{"red", "blue"}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cobra.Command{Use: "pattern"}
			f := &patternFlags{}
			f.register(cmd)
			if err := cmd.ParseFlags(tt.args); err != nil {
				t.Fatalf("ParseFlags() error: %v", err)
			}

			got := config.Default().Pattern
			f.apply(cmd, &got)

			want := config.Default().Pattern
			tt.modify(&want)
			if !reflect.DeepEqual(got, want) {
				t.Errorf("pattern = %+v, want %+v", got, want)
			}
		})
	}
}

func TestPatternFlagsCheck(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"no fps", nil, false},
		{"fps", []string{"--fps", "222"}, false},
		{"largest fps", []string{"--fps", "1000000"}, false},
		{"zero fps", []string{"--fps", "0"}, true},
		{"fps above one per microsecond", []string{"--fps", "1000001"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cobra.Command{Use: "pattern"}
			f := &patternFlags{}
			f.register(cmd)
			if err := cmd.ParseFlags(tt.args); err != nil {
				t.Fatalf("ParseFlags() error: %v", err)
			}

			err := f.check(cmd)
			if (err != nil) != tt.wantErr {
				t.Errorf("check() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
